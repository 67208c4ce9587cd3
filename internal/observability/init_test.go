package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pulith/internal/observability"
)

func TestInit_DefaultConfig_ReturnsUsableProviders(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	_, span := providers.Tracer.Start(context.Background(), "test-span")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_DebugTraceAlwaysSamples(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.DebugTrace = true

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	defer func() { _ = providers.Shutdown(context.Background()) }()

	assert.NotNil(t, providers.Tracer)
}
