package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"llmanim/internal/gateway/config"
)

func TestNewWithConfigFake(t *testing.T) {
	cfg := &config.Config{
		Port: ":0",
		Env:  "local",
		LLM:  config.LLMConfig{Provider: "fake", MaxAttempts: 1},
	}
	a, err := NewWithConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewWithConfigUnknownProvider(t *testing.T) {
	cfg := &config.Config{Port: ":0", LLM: config.LLMConfig{Provider: "carrier-pigeon"}}
	_, err := NewWithConfig(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
