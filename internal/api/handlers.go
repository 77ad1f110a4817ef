package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ghost.confess/config"
	"ghost.confess/internal/confession"
	"ghost.confess/internal/metrics"
	"ghost.confess/internal/responder"
	"ghost.confess/internal/store"
)

type Handler struct {
	service   *confession.Service
	agg       *metrics.Aggregator
	responder responder.Responder
	config    *config.Config
	log       zerolog.Logger
}

func NewHandler(svc *confession.Service, agg *metrics.Aggregator, resp responder.Responder, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		service:   svc,
		agg:       agg,
		responder: resp,
		config:    cfg,
		log:       log,
	}
}

type ConfessRequest struct {
	SessionID  string `json:"sessionId"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Timestamp  string `json:"timestamp,omitempty"`
}

type ConfessResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type FetchResponse struct {
	Ciphertext string    `json:"ciphertext"`
	Nonce      string    `json:"nonce"`
	Timestamp  time.Time `json:"timestamp"`
}

type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

type RespondRequest struct {
	ConfessionID string `json:"confessionId"`
	SessionID    string `json:"sessionId"`
}

type RespondResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) CreateConfession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.config.Confessions.MaxPayloadBytes))

	var req ConfessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var ts time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			h.error(w, http.StatusBadRequest, "timestamp must be ISO8601")
			return
		}
		ts = parsed
	}

	id, err := h.service.Create(r.Context(), req.SessionID, req.Ciphertext, req.Nonce, ts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.json(w, http.StatusOK, ConfessResponse{
		ID:      id,
		Message: "Confession encrypted and stored securely",
	})
}

func (h *Handler) FetchConfession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.service.Fetch(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.json(w, http.StatusOK, FetchResponse{
		Ciphertext: result.Ciphertext,
		Nonce:      result.Nonce,
		Timestamp:  result.Timestamp,
	})
}

func (h *Handler) DeleteConfession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if !deleted {
		h.error(w, http.StatusNotFound, "confession not found")
		return
	}

	h.json(w, http.StatusOK, DeleteResponse{
		Deleted: true,
		Message: "Confession permanently deleted",
	})
}

// AIRespond always answers 200: the responder degrades to its fallback
// message on any upstream failure.
func (h *Handler) AIRespond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.responder.Respond(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("responder upstream failed, using fallback")
	}

	h.json(w, http.StatusOK, RespondResponse{Response: reply})
}

func (h *Handler) Sentiment(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, h.agg.Aggregate())
}

func (h *Handler) CrisisAlert(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, h.agg.CrisisLevel())
}

func (h *Handler) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) error(w http.ResponseWriter, status int, message string) {
	h.json(w, status, ErrorResponse{Error: message})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, confession.ErrInvalidInput):
		h.error(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, store.ErrNotFound):
		h.error(w, http.StatusNotFound, "Confession not found or already deleted")
	default:
		// Payloads never reach the log, only the failure itself.
		h.log.Error().Err(err).Msg("request failed")
		h.error(w, http.StatusInternalServerError, "Internal server error")
	}
}
