package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/registry"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// Previewer synthesizes commentary for a single event text
type Previewer interface {
	Preview(ctx context.Context, text, schema, teamCode string) (*models.CommentaryRecord, error)
}

// CommentaryRequest is the body of POST /v1/commentary
type CommentaryRequest struct {
	Text     string `json:"text"`
	Schema   string `json:"schema,omitempty"`
	TeamCode string `json:"team_code,omitempty"`
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	previewer Previewer
	service   string
	logger    *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(previewer Previewer, service string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		previewer: previewer,
		service:   service,
		logger:    logger,
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
	})
}

// Commentary synthesizes one event
func (h *Handler) Commentary(w http.ResponseWriter, r *http.Request) {
	var req CommentaryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	record, err := h.previewer.Preview(r.Context(), req.Text, req.Schema, req.TeamCode)
	switch {
	case errors.Is(err, registry.ErrUnknownSchema):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, contracts.ErrMalformedRow):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.logger.Error("preview failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
