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

// Package sqlite is the durable checkpoint.Store backend: checkpoints
// survive process restarts in a local sqlite file, which is what lets
// RecoveryManager resume runs interrupted by a crash rather than only
// ones suspended mid-process by an approval interrupt.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loomgraph/runtime/pkg/checkpoint"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/utils"
)

const createCheckpointsSchemaSQL = `
CREATE TABLE IF NOT EXISTS checkpoints (
    thread_id     TEXT NOT NULL,
    checkpoint_ns TEXT NOT NULL,
    checkpoint_id TEXT NOT NULL,
    parent_id     TEXT,
    next_node     TEXT,
    created_at    TIMESTAMP NOT NULL,
    payload       BLOB NOT NULL,
    metadata_json TEXT,
    PRIMARY KEY (thread_id, checkpoint_ns, checkpoint_id)
)`

const createCheckpointsIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_checkpoints_thread
ON checkpoints(thread_id, checkpoint_ns, created_at)`

// Store is a sqlite-backed checkpoint.Store.
type Store struct {
	db *sql.DB
}

var _ checkpoint.Store = (*Store)(nil)

// Open opens (creating if needed) a sqlite database at path and
// initializes the checkpoints schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := utils.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("checkpoint/sqlite: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint/sqlite: open %q: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range []string{createCheckpointsSchemaSQL, createCheckpointsIndexSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("checkpoint/sqlite: init schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Put(ctx context.Context, cp state.Checkpoint) error {
	metaJSON, err := marshalMetadata(cp.Metadata)
	if err != nil {
		return &checkpoint.StoreError{Op: "put", ThreadID: cp.ThreadID, Err: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints
			(thread_id, checkpoint_ns, checkpoint_id, parent_id, next_node, created_at, payload, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ThreadID, cp.CheckpointNS, cp.CheckpointID, cp.ParentID, cp.NextNode, cp.CreatedAt, cp.Payload, metaJSON)
	if err != nil {
		return &checkpoint.StoreError{Op: "put", ThreadID: cp.ThreadID, Err: err}
	}
	return nil
}

func (s *Store) GetLatest(ctx context.Context, threadID, checkpointNS string) (*state.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT checkpoint_id, parent_id, next_node, created_at, payload, metadata_json
		FROM checkpoints
		WHERE thread_id = ? AND checkpoint_ns = ?
		ORDER BY created_at DESC LIMIT 1`, threadID, checkpointNS)
	return scanCheckpoint(row, threadID, checkpointNS)
}

func (s *Store) GetTuple(ctx context.Context, threadID, checkpointNS, checkpointID string) (*state.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT checkpoint_id, parent_id, next_node, created_at, payload, metadata_json
		FROM checkpoints
		WHERE thread_id = ? AND checkpoint_ns = ? AND checkpoint_id = ?`, threadID, checkpointNS, checkpointID)
	return scanCheckpoint(row, threadID, checkpointNS)
}

func (s *Store) List(ctx context.Context, threadID, checkpointNS string) ([]state.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT checkpoint_id, parent_id, next_node, created_at, payload, metadata_json
		FROM checkpoints
		WHERE thread_id = ? AND checkpoint_ns = ?
		ORDER BY created_at ASC`, threadID, checkpointNS)
	if err != nil {
		return nil, &checkpoint.StoreError{Op: "list", ThreadID: threadID, Err: err}
	}
	defer rows.Close()

	var out []state.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpointRow(rows, threadID, checkpointNS)
		if err != nil {
			return nil, &checkpoint.StoreError{Op: "list", ThreadID: threadID, Err: err}
		}
		out = append(out, *cp)
	}
	return out, rows.Err()
}

func (s *Store) ListThreads(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT thread_id FROM checkpoints ORDER BY thread_id`)
	if err != nil {
		return nil, &checkpoint.StoreError{Op: "list_threads", Err: err}
	}
	defer rows.Close()

	var threads []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &checkpoint.StoreError{Op: "list_threads", Err: err}
		}
		threads = append(threads, id)
	}
	return threads, rows.Err()
}

func (s *Store) Delete(ctx context.Context, threadID, checkpointNS string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM checkpoints WHERE thread_id = ? AND checkpoint_ns = ?`, threadID, checkpointNS)
	if err != nil {
		return &checkpoint.StoreError{Op: "delete", ThreadID: threadID, Err: err}
	}
	return nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows for scanCheckpoint.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner, threadID, checkpointNS string) (*state.Checkpoint, error) {
	cp, err := scanCheckpointRow(row, threadID, checkpointNS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &checkpoint.StoreError{Op: "get", ThreadID: threadID, Err: err}
	}
	return cp, nil
}

func scanCheckpointRow(row rowScanner, threadID, checkpointNS string) (*state.Checkpoint, error) {
	var cp state.Checkpoint
	var parentID, nextNode, metaJSON sql.NullString
	if err := row.Scan(&cp.CheckpointID, &parentID, &nextNode, &cp.CreatedAt, &cp.Payload, &metaJSON); err != nil {
		return nil, err
	}
	cp.ThreadID = threadID
	cp.CheckpointNS = checkpointNS
	cp.ParentID = parentID.String
	cp.NextNode = nextNode.String
	meta, err := unmarshalMetadata(metaJSON.String)
	if err != nil {
		return nil, err
	}
	cp.Metadata = meta
	return &cp, nil
}
