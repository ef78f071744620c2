// Copyright 2025 The Loomgraph Authors
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

package tools

// ApprovalPolicy controls which tool names require human approval
// before the executor will run them.
type ApprovalPolicy int

const (
	ApprovalNone ApprovalPolicy = iota
	ApprovalDestructiveOnly
	ApprovalAlways
)

// destructiveToolNames are the tools whose names mark them as
// potentially data-destroying: file deletion, file move (can overwrite
// a destination), directory removal, and shell execution (which may run
// a destructive command). This list is named and documented rather than
// inferred from a naming convention — new destructive tools must be
// added here explicitly.
var destructiveToolNames = map[string]bool{
	"delete_file": true,
	"move_file":   true,
	"remove_dir":  true,
	"run_command": true,
}

// ApprovalSet derives the set of tool names requiring approval for a
// given policy over the tools a ToolSpec list names.
func ApprovalSet(policy ApprovalPolicy, specs []ToolSpec) map[string]bool {
	set := make(map[string]bool)
	switch policy {
	case ApprovalNone:
		// empty set
	case ApprovalDestructiveOnly:
		for _, spec := range specs {
			if destructiveToolNames[spec.Name] {
				set[spec.Name] = true
			}
		}
	case ApprovalAlways:
		for _, spec := range specs {
			set[spec.Name] = true
		}
	}
	return set
}
