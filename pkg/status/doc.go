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
Package status counts what a run did and reports it.

	            +-------------+
	            |    Tally    |
	            |  (counters) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-------+
	|  Summary  |           | Prometheus |
	|  (line)   |           | (textfile) |
	+-----------+           +------------+

🎯 Purpose:
- Counts directories made, files written, concatenations and lazy skips
- Mirrors the counters into prometheus when a registerer is given
- Formats the end of run summary line and per-file events

⚡ Concurrency:
Tally is safe for concurrent use by every task of a run.
*/
package status
