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

package filetool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenReadFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if _, err := src.CallTool(ctx, "write_file", `{"path":"a.txt","content":"hello"}`); err != nil {
		t.Fatalf("write_file error = %v", err)
	}
	got, err := src.CallTool(ctx, "read_file", `{"path":"a.txt"}`)
	if err != nil {
		t.Fatalf("read_file error = %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("read_file content = %q, want hello", got.Text)
	}
}

func TestResolveRejectsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	src, _ := New(dir)
	_, err := src.CallTool(context.Background(), "read_file", `{"path":"/etc/passwd"}`)
	if err == nil {
		t.Fatal("expected error for absolute path, got nil")
	}
}

func TestResolveRejectsDirectoryTraversal(t *testing.T) {
	dir := t.TempDir()
	src, _ := New(dir)
	_, err := src.CallTool(context.Background(), "read_file", `{"path":"../outside.txt"}`)
	if err == nil {
		t.Fatal("expected error for directory traversal, got nil")
	}
}

func TestDeleteFileRemovesIt(t *testing.T) {
	dir := t.TempDir()
	src, _ := New(dir)
	ctx := context.Background()
	_, _ = src.CallTool(ctx, "write_file", `{"path":"a.txt","content":"x"}`)
	if _, err := src.CallTool(ctx, "delete_file", `{"path":"a.txt"}`); err != nil {
		t.Fatalf("delete_file error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Errorf("expected a.txt to be gone, stat err = %v", err)
	}
}

func TestMoveFileRelocatesContent(t *testing.T) {
	dir := t.TempDir()
	src, _ := New(dir)
	ctx := context.Background()
	_, _ = src.CallTool(ctx, "write_file", `{"path":"a.txt","content":"x"}`)
	if _, err := src.CallTool(ctx, "move_file", `{"from":"a.txt","to":"sub/b.txt"}`); err != nil {
		t.Fatalf("move_file error = %v", err)
	}
	got, err := src.CallTool(ctx, "read_file", `{"path":"sub/b.txt"}`)
	if err != nil {
		t.Fatalf("read_file error = %v", err)
	}
	if got.Text != "x" {
		t.Errorf("content after move = %q, want x", got.Text)
	}
}

func TestListToolsReturnsAllSixTools(t *testing.T) {
	dir := t.TempDir()
	src, _ := New(dir)
	specs, err := src.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(specs) != 6 {
		t.Errorf("len(specs) = %d, want 6", len(specs))
	}
}
