package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		adapter string
		keys    Keys
		want    string
		wantErr bool
	}{
		{name: "empty is mock", adapter: "", want: "mock"},
		{name: "mock", adapter: "mock", want: "mock"},
		{name: "anthropic", adapter: "anthropic", keys: Keys{Anthropic: "sk-test"}, want: "anthropic"},
		{name: "openai", adapter: "openai", keys: Keys{OpenAI: "sk-test"}, want: "openai"},
		{name: "anthropic without key", adapter: "anthropic", wantErr: true},
		{name: "openai without key", adapter: "openai", wantErr: true},
		{name: "google without key", adapter: "google", wantErr: true},
		{name: "unknown", adapter: "llama", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.adapter, tt.keys)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Name())
			assert.NotEmpty(t, a.DefaultModel())
		})
	}
}

func TestMockAdapter(t *testing.T) {
	m := NewMockAdapterWithResponses(map[string]string{"ping": "pong"}, "")

	got, err := m.Generate(context.Background(), "", "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", got)

	got, err = m.Generate(context.Background(), "", "review this")
	require.NoError(t, err)
	assert.Equal(t, "mock response:\nreview this", got)

	assert.Equal(t, []string{"ping", "review this"}, m.Prompts())
}

func TestMockAdapter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockAdapter().Generate(ctx, "", "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache(t *testing.T) {
	mock := NewMockAdapter()
	c := NewCache(Keys{}, mock)

	a, err := c.Adapter("")
	require.NoError(t, err)
	assert.Same(t, mock, a)

	_, err = c.Adapter("anthropic")
	require.Error(t, err)

	assert.Equal(t, []string{"mock"}, c.Loaded())
}
