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

// Package filetool provides read/write/list/delete/move tools scoped to
// a canonicalized working folder, so a run can never touch a path
// outside the folder it was given.
package filetool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loomgraph/runtime/pkg/tools"
)

// Source is a tools.ToolSource exposing read_file, write_file,
// list_dir, delete_file, move_file, and remove_dir under one working
// folder.
type Source struct {
	workingDir string
}

// New canonicalizes workingDir and returns a Source scoped to it.
func New(workingDir string) (*Source, error) {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("filetool: resolve working dir: %w", err)
	}
	return &Source{workingDir: abs}, nil
}

var _ tools.ToolSource = (*Source)(nil)

func (s *Source) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute paths not allowed, use relative paths")
	}
	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("directory traversal not allowed (..)")
	}
	full := filepath.Join(s.workingDir, cleaned)
	if !strings.HasPrefix(full, s.workingDir) {
		return "", fmt.Errorf("path escapes working directory")
	}
	return full, nil
}

func (s *Source) ListTools(context.Context) ([]tools.ToolSpec, error) {
	return toolSpecs()
}

func (s *Source) SetCallContext(*tools.CallContext) {}

func (s *Source) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (s *Source) CallToolWithContext(_ context.Context, name, argumentsJSON string, _ *tools.CallContext) (tools.CallContent, error) {
	switch name {
	case "read_file":
		return s.readFile(argumentsJSON)
	case "write_file":
		return s.writeFile(argumentsJSON)
	case "list_dir":
		return s.listDir(argumentsJSON)
	case "delete_file":
		return s.deleteFile(argumentsJSON)
	case "move_file":
		return s.moveFile(argumentsJSON)
	case "remove_dir":
		return s.removeDir(argumentsJSON)
	default:
		return tools.CallContent{}, &tools.NotFoundError{Tool: name}
	}
}

type readFileArgs struct {
	Path string `json:"path" jsonschema:"required,description=File path relative to the working folder"`
}

func (s *Source) readFile(argumentsJSON string) (tools.CallContent, error) {
	var args readFileArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "read_file", Reason: err.Error()}
	}
	full, err := s.resolve(args.Path)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "read_file", Reason: err.Error()}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "read_file", Err: err}
	}
	return tools.CallContent{Text: string(data)}, nil
}

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=File path relative to the working folder"`
	Content string `json:"content" jsonschema:"required,description=Content to write"`
}

func (s *Source) writeFile(argumentsJSON string) (tools.CallContent, error) {
	var args writeFileArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "write_file", Reason: err.Error()}
	}
	full, err := s.resolve(args.Path)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "write_file", Reason: err.Error()}
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "write_file", Err: err}
	}
	if err := os.WriteFile(full, []byte(args.Content), 0o644); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "write_file", Err: err}
	}
	return tools.CallContent{Text: fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path)}, nil
}

type listDirArgs struct {
	Path string `json:"path,omitempty" jsonschema:"description=Directory path relative to the working folder, default is the folder root"`
}

func (s *Source) listDir(argumentsJSON string) (tools.CallContent, error) {
	var args listDirArgs
	if argumentsJSON != "" {
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return tools.CallContent{}, &tools.InvalidInputError{Tool: "list_dir", Reason: err.Error()}
		}
	}
	full, err := s.resolve(args.Path)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "list_dir", Reason: err.Error()}
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "list_dir", Err: err}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name()+"/")
		} else {
			names = append(names, e.Name())
		}
	}
	return tools.CallContent{Text: strings.Join(names, "\n")}, nil
}

type deleteFileArgs struct {
	Path string `json:"path" jsonschema:"required,description=File path relative to the working folder"`
}

func (s *Source) deleteFile(argumentsJSON string) (tools.CallContent, error) {
	var args deleteFileArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "delete_file", Reason: err.Error()}
	}
	full, err := s.resolve(args.Path)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "delete_file", Reason: err.Error()}
	}
	if err := os.Remove(full); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "delete_file", Err: err}
	}
	return tools.CallContent{Text: fmt.Sprintf("deleted %s", args.Path)}, nil
}

type moveFileArgs struct {
	From string `json:"from" jsonschema:"required,description=Source path relative to the working folder"`
	To   string `json:"to" jsonschema:"required,description=Destination path relative to the working folder"`
}

func (s *Source) moveFile(argumentsJSON string) (tools.CallContent, error) {
	var args moveFileArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "move_file", Reason: err.Error()}
	}
	fromFull, err := s.resolve(args.From)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "move_file", Reason: err.Error()}
	}
	toFull, err := s.resolve(args.To)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "move_file", Reason: err.Error()}
	}
	if err := os.MkdirAll(filepath.Dir(toFull), 0o755); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "move_file", Err: err}
	}
	if err := os.Rename(fromFull, toFull); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "move_file", Err: err}
	}
	return tools.CallContent{Text: fmt.Sprintf("moved %s to %s", args.From, args.To)}, nil
}

type removeDirArgs struct {
	Path string `json:"path" jsonschema:"required,description=Directory path relative to the working folder"`
}

func (s *Source) removeDir(argumentsJSON string) (tools.CallContent, error) {
	var args removeDirArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "remove_dir", Reason: err.Error()}
	}
	full, err := s.resolve(args.Path)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "remove_dir", Reason: err.Error()}
	}
	if err := os.RemoveAll(full); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "remove_dir", Err: err}
	}
	return tools.CallContent{Text: fmt.Sprintf("removed %s", args.Path)}, nil
}

func toolSpecs() ([]tools.ToolSpec, error) {
	readSchema, err := tools.GenerateSchema[readFileArgs]()
	if err != nil {
		return nil, err
	}
	writeSchema, err := tools.GenerateSchema[writeFileArgs]()
	if err != nil {
		return nil, err
	}
	listSchema, err := tools.GenerateSchema[listDirArgs]()
	if err != nil {
		return nil, err
	}
	deleteSchema, err := tools.GenerateSchema[deleteFileArgs]()
	if err != nil {
		return nil, err
	}
	moveSchema, err := tools.GenerateSchema[moveFileArgs]()
	if err != nil {
		return nil, err
	}
	removeDirSchema, err := tools.GenerateSchema[removeDirArgs]()
	if err != nil {
		return nil, err
	}
	return []tools.ToolSpec{
		{Name: "read_file", Description: "Read a file's contents.", InputSchema: readSchema},
		{Name: "write_file", Description: "Create or overwrite a file with content.", InputSchema: writeSchema},
		{Name: "list_dir", Description: "List files and directories under a path.", InputSchema: listSchema},
		{Name: "delete_file", Description: "Delete a single file.", InputSchema: deleteSchema},
		{Name: "move_file", Description: "Move or rename a file.", InputSchema: moveSchema},
		{Name: "remove_dir", Description: "Recursively remove a directory.", InputSchema: removeDirSchema},
	}, nil
}
