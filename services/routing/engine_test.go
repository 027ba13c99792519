package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/services"
	"github.com/velox-ai/agents/services/backends"
)

// mockBackend is a scriptable backend for engine tests. When blockUntilDone
// is set it parks on the call context until the engine's deadline fires.
type mockBackend struct {
	name           string
	tier           models.Tier
	result         *backends.GenerateResult
	err            error
	blockUntilDone bool
	calls          int
	lastRequest    *backends.GenerateRequest
}

func (m *mockBackend) Name() string      { return m.name }
func (m *mockBackend) Tier() models.Tier { return m.tier }

func (m *mockBackend) Generate(ctx context.Context, req *backends.GenerateRequest) (*backends.GenerateResult, error) {
	m.calls++
	m.lastRequest = req
	if m.blockUntilDone {
		<-ctx.Done()
		return nil, backends.NewBackendError(m.name, m.tier, backends.ClassifyCallError(ctx.Err()), ctx.Err())
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newTestEngine(t *testing.T, timeout time.Duration, mocks ...*mockBackend) *Engine {
	t.Helper()

	registry := backends.NewRegistry()
	for _, m := range mocks {
		require.NoError(t, registry.Register(m))
	}

	cfg := config.RoutingConfig{
		LightMaxWords:    15,
		StandardMaxWords: 50,
		CallTimeout:      timeout,
	}
	return NewEngine(registry, cfg, zap.NewNop())
}

func okBackend(tier models.Tier, model string) *mockBackend {
	return &mockBackend{
		name:   model,
		tier:   tier,
		result: &backends.GenerateResult{Text: "reply from " + model, Model: model},
	}
}

func failingBackend(tier models.Tier, model string, reason backends.FailureReason) *mockBackend {
	return &mockBackend{
		name: model,
		tier: tier,
		err:  backends.NewBackendError(model, tier, reason, errors.New("boom")),
	}
}

func TestRouteDirectSuccessPerTier(t *testing.T) {
	tests := []struct {
		name      string
		wordCount int
		tier      models.Tier
		model     string
	}{
		{name: "short utterance goes light", wordCount: 5, tier: models.TierLight, model: "phi-3-mini"},
		{name: "medium utterance goes standard", wordCount: 30, tier: models.TierStandard, model: "gemini-2.5-flash"},
		{name: "long utterance goes premium", wordCount: 80, tier: models.TierPremium, model: "gemini-2.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			light := okBackend(models.TierLight, "phi-3-mini")
			standard := okBackend(models.TierStandard, "gemini-2.5-flash")
			premium := okBackend(models.TierPremium, "gemini-2.5-pro")
			engine := newTestEngine(t, time.Second, light, standard, premium)

			resp, err := engine.Route(context.Background(), models.Request{
				Utterance: utteranceOfWords(tt.wordCount),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.tier, resp.Tier)
			assert.Equal(t, tt.model, resp.Model)
			assert.Equal(t, "reply from "+tt.model, resp.Text)

			// Exactly one backend is touched on the direct path.
			totalCalls := light.calls + standard.calls + premium.calls
			assert.Equal(t, 1, totalCalls)
		})
	}
}

func TestRouteLightFailureFallsBackToStandard(t *testing.T) {
	light := failingBackend(models.TierLight, "phi-3-mini", backends.ReasonUpstream)
	standard := okBackend(models.TierStandard, "gemini-2.5-flash")
	premium := okBackend(models.TierPremium, "gemini-2.5-pro")
	engine := newTestEngine(t, time.Second, light, standard, premium)

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(5),
	})
	require.NoError(t, err)

	// The response is tagged with the tier that actually produced it.
	assert.Equal(t, models.TierStandard, resp.Tier)
	assert.Equal(t, "gemini-2.5-flash", resp.Model)
	assert.Equal(t, 1, light.calls)
	assert.Equal(t, 1, standard.calls)
	assert.Equal(t, 0, premium.calls)
}

func TestRouteLightUnconfiguredFallsBack(t *testing.T) {
	// No light backend registered at all: the miss is an unconfigured
	// failure and still triggers the fallback path.
	standard := okBackend(models.TierStandard, "gemini-2.5-flash")
	engine := newTestEngine(t, time.Second, standard)

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(3),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierStandard, resp.Tier)
	assert.Equal(t, 1, standard.calls)
}

func TestRouteStandardFailureIsTerminal(t *testing.T) {
	light := okBackend(models.TierLight, "phi-3-mini")
	standard := failingBackend(models.TierStandard, "gemini-2.5-flash", backends.ReasonUpstream)
	premium := okBackend(models.TierPremium, "gemini-2.5-pro")
	engine := newTestEngine(t, time.Second, light, standard, premium)

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(30),
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, services.IsExternalError(err))

	// No other tier is attempted after a standard failure.
	assert.Equal(t, 0, light.calls)
	assert.Equal(t, 1, standard.calls)
	assert.Equal(t, 0, premium.calls)

	details := services.GetErrorDetails(err)
	assert.Equal(t, "standard", details["tier"])
	assert.Equal(t, "upstream_error", details["reason"])
}

func TestRoutePremiumFailureIsTerminal(t *testing.T) {
	premium := failingBackend(models.TierPremium, "gemini-2.5-pro", backends.ReasonTimeout)
	standard := okBackend(models.TierStandard, "gemini-2.5-flash")
	engine := newTestEngine(t, time.Second, standard, premium)

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(80),
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 1, premium.calls)
	assert.Equal(t, 0, standard.calls)

	details := services.GetErrorDetails(err)
	assert.Equal(t, "premium", details["tier"])
	assert.Equal(t, "timeout", details["reason"])
}

func TestRouteFallbackFailureIsTerminal(t *testing.T) {
	// Light fails, fallback lands on standard, standard also fails. The
	// second failure surfaces; premium is never consulted.
	light := failingBackend(models.TierLight, "phi-3-mini", backends.ReasonTransport)
	standard := failingBackend(models.TierStandard, "gemini-2.5-flash", backends.ReasonUpstream)
	premium := okBackend(models.TierPremium, "gemini-2.5-pro")
	engine := newTestEngine(t, time.Second, light, standard, premium)

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(5),
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 1, light.calls)
	assert.Equal(t, 1, standard.calls)
	assert.Equal(t, 0, premium.calls)
}

func TestRouteFallbackReclassifiesToPremium(t *testing.T) {
	// Thresholds tightened so a light-eligible utterance reclassifies past
	// standard when the light branch is removed.
	registry := backends.NewRegistry()
	light := failingBackend(models.TierLight, "phi-3-mini", backends.ReasonUpstream)
	premium := okBackend(models.TierPremium, "gemini-2.5-pro")
	standard := okBackend(models.TierStandard, "gemini-2.5-flash")
	require.NoError(t, registry.Register(light))
	require.NoError(t, registry.Register(standard))
	require.NoError(t, registry.Register(premium))

	engine := NewEngine(registry, config.RoutingConfig{
		LightMaxWords:    15,
		StandardMaxWords: 10,
		CallTimeout:      time.Second,
	}, zap.NewNop())

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(12),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, resp.Tier)
	assert.Equal(t, 0, standard.calls)
}

func TestRouteTimeoutAbandonsLightAndFallsBack(t *testing.T) {
	light := &mockBackend{name: "phi-3-mini", tier: models.TierLight, blockUntilDone: true}
	standard := okBackend(models.TierStandard, "gemini-2.5-flash")
	engine := newTestEngine(t, 50*time.Millisecond, light, standard)

	start := time.Now()
	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(5),
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, models.TierStandard, resp.Tier)
	assert.Equal(t, 1, light.calls)
	// The stalled call is abandoned at the deadline, not waited out.
	assert.Less(t, elapsed, time.Second)
}

func TestRoutePassesComposedInstruction(t *testing.T) {
	light := okBackend(models.TierLight, "phi-3-mini")
	engine := newTestEngine(t, time.Second, light)

	_, err := engine.Route(context.Background(), models.Request{
		Utterance: "hi there",
		Context:   "store hours are 9 to 5",
	})
	require.NoError(t, err)

	require.NotNil(t, light.lastRequest)
	assert.Contains(t, light.lastRequest.Instruction, "KNOWLEDGE BASE")
	assert.Contains(t, light.lastRequest.Instruction, "store hours are 9 to 5")
	assert.Equal(t, "hi there", light.lastRequest.Utterance)
}

func TestRouteNoBackendsAtAllIsTerminal(t *testing.T) {
	engine := newTestEngine(t, time.Second)

	resp, err := engine.Route(context.Background(), models.Request{
		Utterance: utteranceOfWords(30),
	})
	require.Error(t, err)
	assert.Nil(t, resp)

	details := services.GetErrorDetails(err)
	assert.Equal(t, "unconfigured", details["reason"])
}
