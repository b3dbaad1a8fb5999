package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (f *fakeInvoker) Invoke(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestIsWarmupEvent(t *testing.T) {
	tests := []struct {
		name            string
		event           string
		wantOK          bool
		wantConcurrency int
	}{
		{name: "warmup without concurrency", event: `{"source":"warmup"}`, wantOK: true},
		{name: "warmup with concurrency", event: `{"source":"warmup","concurrency":3}`, wantOK: true, wantConcurrency: 3},
		{name: "negative concurrency", event: `{"source":"warmup","concurrency":-2}`, wantOK: true},
		{name: "other source", event: `{"source":"aws.events"}`},
		{name: "translation request", event: `{"inputText":"hello","targetLanguage":"hindi"}`},
		{name: "not an object", event: `"warmup"`},
		{name: "invalid json", event: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warmup, ok := IsWarmupEvent(json.RawMessage(tt.event))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, warmup)
				assert.Equal(t, tt.wantConcurrency, warmup.Concurrency)
			}
		})
	}
}

func TestHandleWarmup_FansOut(t *testing.T) {
	inv := &fakeInvoker{}

	out, err := HandleWarmup(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 4}, inv)
	require.NoError(t, err)

	resp := out.(map[string]interface{})
	assert.Equal(t, 200, resp["statusCode"])
	assert.Equal(t, WarmupResponse{Status: "warm", InstancesWarmed: 5}, resp["body"])

	require.Len(t, inv.payloads, 4)
	for _, p := range inv.payloads {
		child, ok := IsWarmupEvent(p)
		require.True(t, ok)
		assert.Zero(t, child.Concurrency)
	}
}

func TestHandleWarmup_NoFanOut(t *testing.T) {
	inv := &fakeInvoker{}

	out, err := HandleWarmup(context.Background(), &WarmupEvent{Source: WarmupSource}, inv)
	require.NoError(t, err)

	assert.Empty(t, inv.payloads)
	assert.Equal(t, WarmupResponse{Status: "warm", InstancesWarmed: 1}, out.(map[string]interface{})["body"])
}

func TestHandleWarmup_InvokeFailure(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("AccessDeniedException")}

	out, err := HandleWarmup(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 2}, inv)
	require.NoError(t, err)

	assert.Len(t, inv.payloads, 2)
	assert.Equal(t, WarmupResponse{Status: "warm", InstancesWarmed: 1}, out.(map[string]interface{})["body"])
}

func TestHandleRequest_WarmupShortCircuits(t *testing.T) {
	out, err := handleRequest(context.Background(), json.RawMessage(`{"source":"warmup"}`))
	require.NoError(t, err)
	assert.Equal(t, "warm", out.(map[string]interface{})["body"].(WarmupResponse).Status)
}

func TestHandleRequest_InvalidPayload(t *testing.T) {
	_, err := handleRequest(context.Background(), json.RawMessage(`[1,2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request payload")
}
