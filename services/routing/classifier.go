// Package routing contains the tier classifier and the routing engine: the
// policy that picks a backend tier for each turn, enforces per-call
// timeouts, and degrades to a hosted tier when the local model fails.
package routing

import (
	"strings"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
)

// Classifier maps request features to a candidate tier. The only feature
// today is the utterance word count; thresholds come from configuration.
type Classifier struct {
	lightMaxWords    int
	standardMaxWords int
}

// NewClassifier creates a classifier from routing configuration
func NewClassifier(cfg config.RoutingConfig) *Classifier {
	return &Classifier{
		lightMaxWords:    cfg.LightMaxWords,
		standardMaxWords: cfg.StandardMaxWords,
	}
}

// WordCount splits on whitespace. Empty and whitespace-only utterances
// count zero words, which classifies as light.
func WordCount(utterance string) int {
	return len(strings.Fields(utterance))
}

// Classify is total and deterministic: every non-negative word count maps
// to exactly one tier. Boundary counts resolve to the higher tier.
func (c *Classifier) Classify(utterance string) models.Tier {
	return c.classifyCount(WordCount(utterance))
}

func (c *Classifier) classifyCount(wordCount int) models.Tier {
	switch {
	case wordCount < c.lightMaxWords:
		return models.TierLight
	case wordCount < c.standardMaxWords:
		return models.TierStandard
	default:
		return models.TierPremium
	}
}

// Reclassify recomputes the dispatch decision as if the light branch did
// not exist. Used after a light-tier failure: the thresholds are re-applied
// rather than falling unconditionally to standard, so a threshold
// reordering cannot strand a request on the wrong tier.
func (c *Classifier) Reclassify(wordCount int) models.Tier {
	if wordCount < c.standardMaxWords {
		return models.TierStandard
	}
	return models.TierPremium
}
