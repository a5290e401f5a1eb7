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
Package workspace holds the filesystem state shared by the tasks of one run.

🎯 Purpose:
- DirCache creates each destination directory at most once per run
- Locks lets one writer at a time touch a destination
- WriteFile replaces a destination atomically (temp file + rename)

⚡ Concurrency:
DirCache and Locks are safe for concurrent use. Both are scoped to a single
run and never shared between runs.
*/
package workspace
