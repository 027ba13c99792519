package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/velox-ai/agents/middleware"
	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/utils"
)

// GenerateRequest represents an inbound generation request from the
// orchestrator. Correlation identifiers are optional and opaque.
type GenerateRequest struct {
	UserMessage    string `json:"user_message" validate:"required"`
	Context        string `json:"context,omitempty"`
	AgentID        string `json:"agent_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	CallSID        string `json:"call_sid,omitempty"`
}

// GenerateResponse represents the generated reply with routing provenance
type GenerateResponse struct {
	Response  string `json:"response"`
	ModelUsed string `json:"model_used"`
	Tier      string `json:"tier"`
}

// Router defines the routing engine interface consumed by the handler
type Router interface {
	Route(ctx context.Context, req models.Request) (*models.RoutedResponse, error)
}

// GenerateHandler handles generation HTTP requests
type GenerateHandler struct {
	engine Router
	logger *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(engine Router, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		engine: engine,
		logger: logger,
	}
}

// HandleGenerate handles POST /v1/generate
// Thin handler: validation and transport mapping only, routing lives in the engine
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var genReq GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&genReq); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&genReq); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	// Whitespace-only messages pass the required tag but are still empty.
	if strings.TrimSpace(genReq.UserMessage) == "" {
		_ = utils.WriteBadRequest(w, "user_message must not be empty", nil)
		return
	}

	h.logger.Debug("routing generation request",
		zap.String("request_id", requestID),
		zap.String("agent_id", genReq.AgentID),
		zap.String("conversation_id", genReq.ConversationID))

	result, err := h.engine.Route(ctx, models.Request{
		Utterance:      genReq.UserMessage,
		Context:        genReq.Context,
		ConversationID: genReq.ConversationID,
		CallID:         genReq.CallSID,
		AgentID:        genReq.AgentID,
	})
	if err != nil {
		h.logger.Error("failed to route generation request",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	response := GenerateResponse{
		Response:  result.Text,
		ModelUsed: result.Model,
		Tier:      result.Tier.String(),
	}

	if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
