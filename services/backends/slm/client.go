// Package slm implements the light-tier backend: a locally reachable
// small-model sidecar spoken to over plain HTTP.
package slm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/services/backends"
)

// Client calls the small-model sidecar's /generate endpoint. An empty
// endpoint is a valid configuration: every call then reports unconfigured
// immediately, without any network attempt, and the routing engine falls
// back to a hosted tier.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient creates a light-tier client. Construction never fails: an
// absent endpoint is a per-call unconfigured outcome, not a startup error,
// because the sidecar is optional by design.
func NewClient(cfg config.SLMConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		// Per-call deadlines come from the request context; no client-level
		// timeout competes with them.
		httpClient: &http.Client{},
	}
}

// Name returns the model identifier
func (c *Client) Name() string {
	return c.model
}

// Tier returns the tier this backend serves
func (c *Client) Tier() models.Tier {
	return models.TierLight
}

// generateRequest mirrors the sidecar's wire format.
type generateRequest struct {
	System  string `json:"system"`
	Context string `json:"context"`
	Message string `json:"message"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate submits the prompt to the sidecar and returns the completion.
func (c *Client) Generate(ctx context.Context, req *backends.GenerateRequest) (*backends.GenerateResult, error) {
	if c.endpoint == "" {
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ReasonUnconfigured,
			fmt.Errorf("no SLM endpoint configured"))
	}

	body, err := json.Marshal(generateRequest{
		System:  req.Instruction,
		Context: req.Context,
		Message: req.Utterance,
	})
	if err != nil {
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ReasonTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ReasonTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Deadline expiry cancels the request context, which abandons the
		// in-flight call rather than leaving it to finish in the background.
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ClassifyCallError(err), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ClassifyCallError(err), err)
	}

	if httpResp.StatusCode != http.StatusOK {
		berr := backends.NewBackendError(c.model, models.TierLight, backends.ReasonUpstream,
			fmt.Errorf("sidecar returned status %d: %s", httpResp.StatusCode, respBody))
		berr.StatusCode = httpResp.StatusCode
		return nil, berr
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ReasonUpstream, err)
	}
	if out.Response == "" {
		// An empty completion is an upstream failure, never a success.
		return nil, backends.NewBackendError(c.model, models.TierLight, backends.ReasonUpstream,
			fmt.Errorf("sidecar returned an empty response"))
	}

	return &backends.GenerateResult{Text: out.Response, Model: c.model}, nil
}
