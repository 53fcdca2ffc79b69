package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danivela/ai-todo-be/internal/apperr"
	"github.com/danivela/ai-todo-be/internal/services"
)

// AIHandler handles the text-generation convenience endpoints.
type AIHandler struct {
	service services.AIServiceProvider
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(service services.AIServiceProvider) *AIHandler {
	return &AIHandler{service: service}
}

// GenerateTasks suggests tasks for a topic.
func (h *AIHandler) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	topic := strings.TrimSpace(payload.Topic)
	if topic == "" {
		writeError(w, apperr.Validation("topic", "is required"))
		return
	}

	suggestions, err := h.service.GenerateTasks(r.Context(), topic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"suggestions": suggestions})
}

// SummarizeFeedback condenses free-form feedback text.
func (h *AIHandler) SummarizeFeedback(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeError(w, apperr.Validation("text", "is required"))
		return
	}

	summary, err := h.service.SummarizeFeedback(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
