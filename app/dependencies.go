// Package app wires the application's dependencies in one place.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/services/backends"
	"github.com/velox-ai/agents/services/backends/gemini"
	"github.com/velox-ai/agents/services/backends/slm"
	"github.com/velox-ai/agents/services/routing"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Backends *backends.Registry
	Engine   *routing.Engine
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initBackends(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize backends: %w", err)
	}

	deps.Engine = routing.NewEngine(deps.Backends, cfg.Routing, logger)

	logger.Info("all dependencies initialized",
		zap.Int("backend_count", deps.Backends.Count()))
	return deps, nil
}

// initBackends constructs one backend per configured tier.
func (d *Dependencies) initBackends(cfg *config.Config) error {
	registry := backends.NewRegistry()

	// The light tier is always registered; an empty endpoint makes it
	// report unconfigured at call time, which triggers fallback.
	slmClient := slm.NewClient(cfg.Backends.SLM)
	if err := registry.Register(slmClient); err != nil {
		return err
	}
	if cfg.Backends.SLM.Endpoint == "" {
		d.Logger.Warn("SLM endpoint not set, light tier will always fall back")
	} else {
		d.Logger.Info("registered light tier backend",
			zap.String("model", cfg.Backends.SLM.Model),
			zap.String("endpoint", cfg.Backends.SLM.Endpoint))
	}

	// Hosted tiers require a credential at construction time. Without one
	// they stay unregistered and dispatch reports unconfigured.
	client, err := gemini.NewClient(cfg.Backends.Gemini)
	if err != nil {
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			d.Logger.Warn("gemini credential missing, standard and premium tiers unconfigured")
			d.Backends = registry
			return nil
		}
		return err
	}

	if err := registry.Register(client.Backend(models.TierStandard, cfg.Backends.Gemini.FlashModel)); err != nil {
		return err
	}
	if err := registry.Register(client.Backend(models.TierPremium, cfg.Backends.Gemini.ProModel)); err != nil {
		return err
	}
	d.Logger.Info("registered hosted tier backends",
		zap.String("standard_model", cfg.Backends.Gemini.FlashModel),
		zap.String("premium_model", cfg.Backends.Gemini.ProModel))

	d.Backends = registry
	return nil
}
