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

package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/llm/openai"
	"github.com/loomgraph/runtime/pkg/tools"
)

func TestBuildRequiresAnLLMClientOrOpenAIConfig(t *testing.T) {
	_, err := Build(context.Background(), BuildConfig{})
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "llm client", buildErr.Component)
}

func TestBuildRejectsOpenAIConfigWithoutAPIKey(t *testing.T) {
	_, err := Build(context.Background(), BuildConfig{
		LLM: LLMConfig{OpenAI: &openai.Config{}},
	})
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "llm client", buildErr.Component)
}

func TestBuildDefaultsToReactWithInMemoryStores(t *testing.T) {
	o, err := Build(context.Background(), BuildConfig{
		LLM: LLMConfig{Client: mock.WithNoToolCalls("hi there")},
	})
	require.NoError(t, err)
	assert.Equal(t, AgentReact, o.Kind())
}

func TestBuildAssemblesSystemPromptWithPersonaAndApprovalText(t *testing.T) {
	o, err := Build(context.Background(), BuildConfig{
		Persona: "You are Orin, a focused research assistant.",
		Tools: ToolsConfig{
			WorkingFolder:  t.TempDir(),
			EnableCommand:  true,
			ApprovalPolicy: tools.ApprovalAlways,
		},
		LLM: LLMConfig{Client: mock.WithNoToolCalls("hi there")},
	})
	require.NoError(t, err)
	assert.Contains(t, o.systemPrompt, "You are Orin")
	assert.Contains(t, o.systemPrompt, "working folder is")
	assert.Contains(t, o.systemPrompt, "require human approval")
	assert.Contains(t, o.systemPrompt, "run_command")
}

func TestBuildWithoutPersonaUsesBasePrompt(t *testing.T) {
	o, err := Build(context.Background(), BuildConfig{
		LLM: LLMConfig{Client: mock.WithNoToolCalls("hi there")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(o.systemPrompt, baseReactSystemPrompt))
}

func TestBuildEachAgentKind(t *testing.T) {
	for _, kind := range []AgentKind{AgentReact, AgentDup, AgentTot, AgentGot} {
		t.Run(string(kind), func(t *testing.T) {
			o, err := Build(context.Background(), BuildConfig{
				Kind: kind,
				LLM:  LLMConfig{Client: mock.WithNoToolCalls("hi there")},
			})
			require.NoError(t, err)
			assert.Equal(t, kind, o.Kind())
		})
	}
}

func TestInvokeReactRoundTripWithNoToolCalls(t *testing.T) {
	o, err := Build(context.Background(), BuildConfig{
		LLM: LLMConfig{Client: mock.WithNoToolCalls("the answer is 4")},
	})
	require.NoError(t, err)

	result, err := o.Invoke(context.Background(), "what is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "the answer is 4", result.Reply)
}

func TestInvokeDupTotGotSmoke(t *testing.T) {
	for _, kind := range []AgentKind{AgentDup, AgentTot, AgentGot} {
		t.Run(string(kind), func(t *testing.T) {
			o, err := Build(context.Background(), BuildConfig{
				Kind: kind,
				LLM:  LLMConfig{Client: mock.WithNoToolCalls("done")},
			})
			require.NoError(t, err)

			result, err := o.Invoke(context.Background(), "do the thing")
			require.NoError(t, err)
			assert.NotEmpty(t, result.Reply)
		})
	}
}

func TestInvokeResumesFromCheckpointOnSecondTurn(t *testing.T) {
	threadID := "thread-resume-1"
	o, err := Build(context.Background(), BuildConfig{
		ThreadID:   threadID,
		LLM:        LLMConfig{Client: mock.WithNoToolCalls("ack")},
		Checkpoint: CheckpointConfig{Enabled: true},
	})
	require.NoError(t, err)

	_, err = o.Invoke(context.Background(), "first message")
	require.NoError(t, err)

	payload, err := latestCheckpointPayload(context.Background(), o.runInput())
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Contains(t, string(payload), "first message")

	_, err = o.Invoke(context.Background(), "second message")
	require.NoError(t, err)

	payload, err = latestCheckpointPayload(context.Background(), o.runInput())
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Contains(t, string(payload), "first message")
	assert.Contains(t, string(payload), "second message")
}
