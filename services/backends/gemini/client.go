// Package gemini implements the hosted standard and premium tier backends
// on the Generative Language API. One Client is shared by both tiers; each
// tier is a ModelBackend bound to its model name.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/velox-ai/agents/config"
	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/services/backends"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// ErrMissingAPIKey is returned at construction when no credential is set.
// Credential absence is detected here, never mid-call.
var ErrMissingAPIKey = fmt.Errorf("gemini API key is not configured")

// Client holds the shared credential and HTTP transport for all hosted
// tiers. Immutable after construction, safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini client. A missing API key fails construction
// so the unconfigured state surfaces at startup.
func NewClient(cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		// Deadlines come from the request context set by the routing engine.
		httpClient: &http.Client{},
	}, nil
}

// Backend binds the client to one tier and model name.
func (c *Client) Backend(tier models.Tier, model string) *ModelBackend {
	return &ModelBackend{client: c, tier: tier, model: model}
}

// ModelBackend is one hosted tier: a model name on the shared client.
type ModelBackend struct {
	client *Client
	tier   models.Tier
	model  string
}

// Name returns the model identifier
func (b *ModelBackend) Name() string {
	return b.model
}

// Tier returns the tier this backend serves
func (b *ModelBackend) Tier() models.Tier {
	return b.tier
}

// Gemini generateContent wire types

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateContentRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate submits the prompt to the hosted model and returns the
// completion text.
func (b *ModelBackend) Generate(ctx context.Context, req *backends.GenerateRequest) (*backends.GenerateResult, error) {
	apiReq := generateContentRequest{
		SystemInstruction: &content{Parts: []contentPart{{Text: req.Instruction}}},
		Contents: []content{
			{Role: "user", Parts: []contentPart{{Text: req.Utterance}}},
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, backends.NewBackendError(b.model, b.tier, backends.ReasonTransport, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", b.client.baseURL, b.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, backends.NewBackendError(b.model, b.tier, backends.ReasonTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", b.client.apiKey)

	httpResp, err := b.client.httpClient.Do(httpReq)
	if err != nil {
		return nil, backends.NewBackendError(b.model, b.tier, backends.ClassifyCallError(err), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, backends.NewBackendError(b.model, b.tier, backends.ClassifyCallError(err), err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, b.upstreamError(httpResp.StatusCode, respBody)
	}

	var apiResp generateContentResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, backends.NewBackendError(b.model, b.tier, backends.ReasonUpstream, err)
	}

	text := extractText(&apiResp)
	if text == "" {
		return nil, backends.NewBackendError(b.model, b.tier, backends.ReasonUpstream,
			fmt.Errorf("model returned no candidates"))
	}

	return &backends.GenerateResult{Text: text, Model: b.model}, nil
}

// upstreamError converts a non-2xx reply into a typed upstream failure.
func (b *ModelBackend) upstreamError(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	cause := fmt.Errorf("gemini returned status %d", statusCode)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		cause = fmt.Errorf("gemini returned status %d: %s", statusCode, apiErr.Error.Message)
	}

	berr := backends.NewBackendError(b.model, b.tier, backends.ReasonUpstream, cause)
	berr.StatusCode = statusCode
	return berr
}

func extractText(resp *generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}
