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

package operation

// 🚦 State is a step of a copy or concat task
type State int

const (
	StatePending State = iota
	StateAwaitStaging
	StateStatSource
	StateStatAll
	StateCheckLazy
	StateReconcileType
	StateEnsureDirectory
	StateWrite
	StateMerge
	StateDone
	StateSkipped
	StateFailed
)

var stateNames = map[State]string{
	StatePending:         "pending",
	StateAwaitStaging:    "await-staging",
	StateStatSource:      "stat-source",
	StateStatAll:         "stat-all",
	StateCheckLazy:       "check-lazy",
	StateReconcileType:   "reconcile-type",
	StateEnsureDirectory: "ensure-directory",
	StateWrite:           "write",
	StateMerge:           "merge",
	StateDone:            "done",
	StateSkipped:         "skipped",
	StateFailed:          "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the task is finished
func (s State) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}
