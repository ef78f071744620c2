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

// Package qdrantstore is the embedder-backed semantic long-term memory
// backend: it stores each item as a point in a Qdrant collection keyed
// by its embedding, and falls back to substring matching on the stored
// value whenever no embedder or query text is supplied.
package qdrantstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/loomgraph/runtime/pkg/memory"
	"github.com/loomgraph/runtime/pkg/state"
)

const listSearchLimit = 1000

// Config configures a Store.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Embedder   memory.Embedder // optional; nil disables semantic ranking
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "loomgraph_memory"
	}
}

// Store is a Qdrant-backed memory.Store.
type Store struct {
	client     *qdrant.Client
	collection string
	embedder   memory.Embedder
	dimension  int
}

var _ memory.Store = (*Store)(nil)

// Open connects to a Qdrant instance and returns a Store over cfg.Collection.
func Open(cfg Config) (*Store, error) {
	cfg.setDefaults()
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("memory/qdrantstore: connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	dim := 1
	if cfg.Embedder != nil {
		dim = cfg.Embedder.Dimension()
	}
	return &Store{client: client, collection: cfg.Collection, embedder: cfg.Embedder, dimension: dim}, nil
}

func pointID(namespace state.Namespace, key string) string {
	return fmt.Sprintf("%s:%s", strings.Join(namespace, "\x1f"), key)
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: collection exists check: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("memory/qdrantstore: create collection: %w", err)
	}
	return nil
}

func (s *Store) embedOrZero(ctx context.Context, text string) []float32 {
	if s.embedder != nil {
		vecs, err := s.embedder.Embed(ctx, []string{text})
		if err == nil && len(vecs) == 1 {
			return vecs[0]
		}
		slog.Warn("memory/qdrantstore: embed failed, falling back to zero vector", "error", err)
	}
	return make([]float32, s.dimension)
}

func (s *Store) Put(ctx context.Context, namespace state.Namespace, key string, value map[string]any) error {
	serialized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: marshal value: %w", err)
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	vector := s.embedOrZero(ctx, string(serialized))

	nsVal, err := qdrant.NewValue(strings.Join(namespace, "\x1f"))
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: encode namespace: %w", err)
	}
	keyVal, err := qdrant.NewValue(key)
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: encode key: %w", err)
	}
	valueVal, err := qdrant.NewValue(string(serialized))
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: encode value: %w", err)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(namespace, key)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: map[string]*qdrant.Value{
			"namespace": nsVal,
			"key":       keyVal,
			"value":     valueVal,
		},
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: upsert: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, namespace state.Namespace, key string) (*state.Item, error) {
	results, err := s.search(ctx, namespace, key, "", 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0].Item, nil
}

func (s *Store) Delete(ctx context.Context, namespace state.Namespace, key string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{qdrant.NewID(pointID(namespace, key))}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("memory/qdrantstore: delete: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, namespace state.Namespace) ([]string, error) {
	results, err := s.search(ctx, namespace, "", "", listSearchLimit)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Item.Key)
	}
	return keys, nil
}

// Search performs semantic ranking when both an embedder and a query
// text are present; otherwise it lists the namespace and falls back to
// substring matching, per the lexical-fallback clause of the contract.
func (s *Store) Search(ctx context.Context, namespace state.Namespace, opts memory.SearchOptions) ([]memory.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if s.embedder != nil && opts.Query != "" {
		return s.search(ctx, namespace, "", opts.Query, limit)
	}

	all, err := s.search(ctx, namespace, "", "", listSearchLimit)
	if err != nil {
		return nil, err
	}
	var matched []memory.SearchResult
	for _, r := range all {
		if !matchesFilter(r.Item.Value, opts.Filter) {
			continue
		}
		if opts.Query != "" {
			serialized, err := json.Marshal(r.Item.Value)
			if err != nil || !strings.Contains(strings.ToLower(string(serialized)), strings.ToLower(opts.Query)) {
				continue
			}
		}
		matched = append(matched, r)
	}
	if opts.Offset > 0 && opts.Offset < len(matched) {
		matched = matched[opts.Offset:]
	} else if opts.Offset >= len(matched) {
		matched = nil
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesFilter(value map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := value[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// search runs a qdrant vector search scoped to namespace (and, if key is
// non-empty, to that exact item), embedding queryText when given, else
// using a zero vector purely for filter-scoped retrieval.
func (s *Store) search(ctx context.Context, namespace state.Namespace, key, queryText string, limit int) ([]memory.SearchResult, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	vector := s.embedOrZero(ctx, queryText)

	filter := &qdrant.Filter{Must: []*qdrant.Condition{matchCondition("namespace", strings.Join(namespace, "\x1f"))}}
	if key != "" {
		filter.Must = append(filter.Must, matchCondition("key", key))
	}

	searchRequest := &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	}
	pointsClient := s.client.GetPointsClient()
	searchResult, err := pointsClient.Search(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("memory/qdrantstore: search: %w", err)
	}
	return convertScoredPoints(namespace, searchResult.Result), nil
}

func matchCondition(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func convertScoredPoints(namespace state.Namespace, points []*qdrant.ScoredPoint) []memory.SearchResult {
	results := make([]memory.SearchResult, 0, len(points))
	for _, p := range points {
		key := ""
		if k, ok := p.Payload["key"]; ok {
			key = k.GetStringValue()
		}
		var value map[string]any
		if v, ok := p.Payload["value"]; ok {
			_ = json.Unmarshal([]byte(v.GetStringValue()), &value)
		}
		results = append(results, memory.SearchResult{
			Item:  state.Item{Namespace: namespace, Key: key, Value: value},
			Score: float64(p.Score),
		})
	}
	return results
}

func (s *Store) Batch(ctx context.Context, ops []memory.StoreOp) ([]memory.StoreOpResult, error) {
	results := make([]memory.StoreOpResult, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case memory.OpPut:
			results[i] = memory.StoreOpResult{Err: s.Put(ctx, op.Namespace, op.Key, op.Value)}
		case memory.OpDelete:
			results[i] = memory.StoreOpResult{Err: s.Delete(ctx, op.Namespace, op.Key)}
		}
	}
	return results, nil
}
