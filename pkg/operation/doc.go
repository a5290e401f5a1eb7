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
Package operation runs planned file groups: single-source copies and multi-source concatenations.

	+-------------+      +-------------+      +-------------+
	|   Planner   | ---> | Copy queue  | ---> | Concat queue|
	|  (groups)   |      | (+staging)  |      |  (merges)   |
	+-------------+      +------+------+      +------+------+
	                            |                    |
	                     +------+--------------------+------+
	                     |  run: DirCache, Locks, Tally     |
	                     +----------------------------------+

🎯 Purpose:
- Copies each single-source group through the stage pipeline
- Stages every concat source once into the cache, keyed by identity
- Merges staged sources into concat destinations once the copy queue drains

🔄 Flow:
1. Plan groups from file pairs, warning about missing sources
2. Run copy and staging tasks on a pool bounded by Concurrency
3. Wait for the copy queue to drain
4. Run concat tasks on a second pool, each awaiting its staged sources
5. Report a status.Summary

⚡ Concurrency:
Each task is a small state machine. The only shared state is the run's
DirCache, Locks and Tally. The first task failure cancels tasks that have not
started; tasks already running finish on their own. Nothing is rolled back.
*/
package operation
