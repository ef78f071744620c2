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

// Package compress implements the ReAct context-compression subgraph:
// a Prune step that drops stale tool-result content and a Compact step
// that summarizes older messages via an LLM once the context window is
// estimated to be close to overflowing.
package compress

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/loomgraph/runtime/pkg/state"
)

// charsPerToken is the heuristic fallback ratio used when a tiktoken
// encoding cannot be loaded for the configured model.
const charsPerToken = 4

var (
	encodingCache   = make(map[string]*tiktoken.Tiktoken)
	encodingCacheMu sync.RWMutex
)

// TokenEstimator counts tokens in message content, preferring an exact
// tiktoken encoding for the configured model and falling back to a
// chars-per-token heuristic when no encoding is available (e.g. an
// unrecognized model name, or the tiktoken-go BPE file fetch fails).
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenEstimator returns an estimator tuned for model. model may be
// empty, in which case the estimator always falls back to the
// heuristic.
func NewTokenEstimator(model string) *TokenEstimator {
	if model == "" {
		return &TokenEstimator{}
	}

	encodingCacheMu.RLock()
	cached, ok := encodingCache[model]
	encodingCacheMu.RUnlock()
	if ok {
		return &TokenEstimator{encoding: cached}
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return &TokenEstimator{}
	}

	encodingCacheMu.Lock()
	encodingCache[model] = encoding
	encodingCacheMu.Unlock()

	return &TokenEstimator{encoding: encoding}
}

// Count estimates the token count of a single string.
func (e *TokenEstimator) Count(text string) int {
	if e.encoding == nil {
		return len(text) / charsPerToken
	}
	return len(e.encoding.Encode(text, nil, nil))
}

// CountMessages estimates the token count of a full message slice.
func (e *TokenEstimator) CountMessages(messages []state.Message) int {
	total := 0
	for _, m := range messages {
		total += e.Count(m.Content)
	}
	return total
}
