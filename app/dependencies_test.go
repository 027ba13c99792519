package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		Backends: config.BackendsConfig{
			SLM: config.SLMConfig{
				Endpoint: "http://localhost:8001/generate",
				Model:    "phi-3-mini",
			},
			Gemini: config.GeminiConfig{
				APIKey:     "test-key",
				FlashModel: "gemini-2.5-flash",
				ProModel:   "gemini-2.5-pro",
			},
		},
		Routing: config.RoutingConfig{
			LightMaxWords:    15,
			StandardMaxWords: 50,
			CallTimeout:      8 * time.Second,
		},
		Observability: config.ObservabilityConfig{LogLevel: "info"},
	}
}

func TestNewDependenciesAllTiers(t *testing.T) {
	deps, err := NewDependencies(testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 3, deps.Backends.Count())
	assert.True(t, deps.Backends.Has(models.TierLight))
	assert.True(t, deps.Backends.Has(models.TierStandard))
	assert.True(t, deps.Backends.Has(models.TierPremium))
	assert.NotNil(t, deps.Engine)

	standard, err := deps.Backends.Get(models.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", standard.Name())

	premium, err := deps.Backends.Get(models.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", premium.Name())
}

func TestNewDependenciesWithoutGeminiKey(t *testing.T) {
	cfg := testConfig()
	cfg.Backends.Gemini.APIKey = ""

	deps, err := NewDependencies(cfg, zap.NewNop())
	require.NoError(t, err)

	// Only the light tier is registered; hosted dispatch will report
	// unconfigured at call time.
	assert.Equal(t, 1, deps.Backends.Count())
	assert.True(t, deps.Backends.Has(models.TierLight))
	assert.False(t, deps.Backends.Has(models.TierStandard))
	assert.False(t, deps.Backends.Has(models.TierPremium))
}

func TestNewDependenciesWithoutSLMEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Backends.SLM.Endpoint = ""

	deps, err := NewDependencies(cfg, zap.NewNop())
	require.NoError(t, err)

	// The light tier is registered even without an endpoint; it reports
	// unconfigured per call so routing can fall back.
	assert.True(t, deps.Backends.Has(models.TierLight))
	assert.Equal(t, 3, deps.Backends.Count())
}
