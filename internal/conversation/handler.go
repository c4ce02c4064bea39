package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

// Handler exposes the conversation engine over HTTP.
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("conversation: engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// ChatRequest is the POST /chat payload. SessionID is optional; omitting it
// starts a new session.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the POST /chat reply.
type ChatResponse struct {
	Message   string   `json:"message"`
	SessionID string   `json:"session_id"`
	Sources   []string `json:"sources"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.Respond(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			writeJSONError(w, http.StatusBadRequest, "message is required")
			return
		}
		h.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Message:   result.Message,
		SessionID: result.SessionID,
		Sources:   sources,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
