package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/haulstack/supportbot/internal/bot"
	"github.com/haulstack/supportbot/pkg/models"
)

// EditMessageRequest carries the new content of an edited message.
type EditMessageRequest struct {
	Content string `json:"content"`
}

// APIResponse is the envelope every route answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// handleMessage runs one inbound message through the bot and returns the
// reply. Quota rejections and generation failures are successful responses
// carrying the user-facing text; only malformed or duplicate deliveries
// fail.
func (g *Gateway) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.InboundMessage
	if err := g.parseRequestBody(w, r, &msg); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid_request", "request body is not a valid message", err.Error())
		return
	}

	reply, err := g.handler.HandleMessage(r.Context(), msg)
	switch {
	case errors.Is(err, bot.ErrInFlight):
		g.writeError(w, http.StatusConflict, "in_flight", "this message is already being processed", "")
	case err != nil:
		g.writeError(w, http.StatusBadRequest, "invalid_message", err.Error(), "")
	default:
		g.writeSuccess(w, reply)
	}
}

// handleEdit regenerates the reply for an edited message. Edits the bot is
// not tracking are acknowledged with 204 and no body.
func (g *Gateway) handleEdit(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["id"]

	var req EditMessageRequest
	if err := g.parseRequestBody(w, r, &req); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid_request", "request body is not a valid edit", err.Error())
		return
	}

	reply, err := g.handler.HandleEdit(r.Context(), messageID, req.Content)
	switch {
	case errors.Is(err, bot.ErrInFlight):
		g.writeError(w, http.StatusConflict, "in_flight", "this message is already being processed", "")
	case err != nil:
		g.writeError(w, http.StatusBadRequest, "invalid_edit", err.Error(), "")
	case reply == nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		g.writeSuccess(w, reply)
	}
}

// handleStats serves the bot's service counters.
func (g *Gateway) handleStats(w http.ResponseWriter, r *http.Request) {
	g.writeSuccess(w, g.handler.Stats())
}

// handleMetrics serves the gateway's own request counters.
func (g *Gateway) handleMetrics(w http.ResponseWriter, r *http.Request) {
	g.writeSuccess(w, g.metrics.Snapshot())
}

func (g *Gateway) parseRequestBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, g.config.MaxRequestSize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		g.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (g *Gateway) writeSuccess(w http.ResponseWriter, data interface{}) {
	g.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (g *Gateway) writeError(w http.ResponseWriter, status int, code, message, details string) {
	g.writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
