package routing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/observability"
	"github.com/velox-ai/agents/services"
	"github.com/velox-ai/agents/services/backends"
	"github.com/velox-ai/agents/services/prompt"
)

const tracerName = "github.com/velox-ai/agents/services/routing"

// Engine routes one request to one backend tier and applies the single
// permitted fallback. It holds no cross-request mutable state: arbitrarily
// many Route calls may run concurrently without coordination, and within
// one call backend dispatch is strictly sequential.
type Engine struct {
	registry    *backends.Registry
	classifier  *Classifier
	callTimeout time.Duration
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewEngine creates a routing engine. The registry and configuration are
// read-only for the process lifetime.
func NewEngine(registry *backends.Registry, cfg config.RoutingConfig, logger *zap.Logger) *Engine {
	return &Engine{
		registry:    registry,
		classifier:  NewClassifier(cfg),
		callTimeout: cfg.CallTimeout,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// Route classifies the request, dispatches to the candidate tier, and
// returns the reply tagged with the tier that actually produced it.
//
// Only the light tier is fallback-eligible: any light failure, including
// unconfigured, re-applies the standard/premium thresholds and dispatches
// once more. A standard or premium failure is terminal and surfaces to the
// caller; no further tier is attempted.
func (e *Engine) Route(ctx context.Context, req models.Request) (*models.RoutedResponse, error) {
	ctx, span := e.tracer.Start(ctx, "routing.Route")
	defer span.End()

	instruction := prompt.Compose(req.Context)
	wordCount := WordCount(req.Utterance)
	candidate := e.classifier.Classify(req.Utterance)

	log := e.logger.With(
		zap.String("conversation_id", req.ConversationID),
		zap.String("call_id", req.CallID),
		zap.String("agent_id", req.AgentID),
		zap.Int("word_count", wordCount),
		zap.String("candidate_tier", candidate.String()),
	)
	span.SetAttributes(
		attribute.Int("routing.word_count", wordCount),
		attribute.String("routing.candidate_tier", candidate.String()),
	)

	genReq := &backends.GenerateRequest{
		Instruction: instruction,
		Context:     req.Context,
		Utterance:   req.Utterance,
	}

	tier := candidate
	fallbackReason := ""

	if candidate == models.TierLight {
		result, err := e.dispatch(ctx, models.TierLight, genReq)
		if err == nil {
			log.Info("routing decision",
				zap.String("final_tier", models.TierLight.String()),
				zap.String("model", result.Model),
				zap.Bool("fallback", false))
			observability.RoutingDecisions.WithLabelValues(candidate.String(), models.TierLight.String()).Inc()
			span.SetAttributes(attribute.String("routing.final_tier", models.TierLight.String()))
			return &models.RoutedResponse{Text: result.Text, Tier: models.TierLight, Model: result.Model}, nil
		}

		// The light failure is recovered here and only logged; the caller
		// never sees it.
		reason := backends.ReasonOf(err)
		fallbackReason = string(reason)
		tier = e.classifier.Reclassify(wordCount)
		log.Warn("light tier failed, falling back",
			zap.String("reason", fallbackReason),
			zap.String("fallback_tier", tier.String()),
			zap.Error(err))
		observability.RoutingFallbacks.WithLabelValues(fallbackReason).Inc()
		span.SetAttributes(attribute.String("routing.fallback_reason", fallbackReason))
	}

	result, err := e.dispatch(ctx, tier, genReq)
	if err != nil {
		reason := backends.ReasonOf(err)
		log.Error("routing failed",
			zap.String("final_tier", tier.String()),
			zap.String("reason", string(reason)),
			zap.Error(err))
		observability.RoutingFailures.WithLabelValues(tier.String(), string(reason)).Inc()
		return nil, services.NewDomainError(services.ErrorTypeExternal, "terminal routing failure", err).
			WithDetail("tier", tier.String()).
			WithDetail("reason", string(reason))
	}

	log.Info("routing decision",
		zap.String("final_tier", tier.String()),
		zap.String("model", result.Model),
		zap.Bool("fallback", fallbackReason != ""),
		zap.String("fallback_reason", fallbackReason))
	observability.RoutingDecisions.WithLabelValues(candidate.String(), tier.String()).Inc()
	span.SetAttributes(attribute.String("routing.final_tier", tier.String()))

	return &models.RoutedResponse{Text: result.Text, Tier: tier, Model: result.Model}, nil
}

// dispatch performs one bounded backend invocation. A tier with no
// registered backend is an unconfigured outcome, indistinguishable from an
// adapter that reported the same at call time.
func (e *Engine) dispatch(ctx context.Context, tier models.Tier, req *backends.GenerateRequest) (*backends.GenerateResult, error) {
	backend, err := e.registry.Get(tier)
	if err != nil {
		return nil, backends.NewBackendError("", tier, backends.ReasonUnconfigured, err)
	}

	// The deadline races the network call; on expiry the context cancels
	// the in-flight request so nothing completes in the background.
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	start := time.Now()
	result, err := backend.Generate(callCtx, req)
	observability.BackendCallDuration.WithLabelValues(tier.String(), backend.Name()).
		Observe(time.Since(start).Seconds())

	return result, err
}

// Classifier exposes the engine's classifier for readiness reporting.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}
