// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads transfo configuration and turns it into run Options.

	            +-------------+
	            |   Config    |
	            |  (targets)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Parses config files into targets of file mappings
- Layers defaults, global options and target options into Options
- Holds the stage factory types shared by the run engine

🔄 Flow:
1. Load picks a parser by file extension (.transforc tries YAML then HCL)
2. Validate rejects bad modes, strip modes, globs and empty targets
3. Resolve produces one Options value per selected target

📝 Notes:
Options carries Go callbacks (stage factories, process functions) that no
file format can express; programmatic callers set those before a run.
*/
package config
