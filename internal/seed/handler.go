package seed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Maintainer is the seeder surface the HTTP layer uses.
type Maintainer interface {
	Status(ctx context.Context) (*Status, error)
	Seed(ctx context.Context) (*Result, error)
	Reset(ctx context.Context) (*Result, error)
}

var _ Maintainer = (*Seeder)(nil)

type Handler struct {
	seeder Maintainer
}

func NewHandler(seeder Maintainer) *Handler {
	return &Handler{seeder: seeder}
}

type ResultResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Result  *Result `json:"result"`
}

// Status handles GET /api/demo/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.seeder.Status(r.Context())
	if err != nil {
		respondSeedError(w, err, "status_failed")
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// Seed handles POST /api/demo/seed.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	res, err := h.seeder.Seed(r.Context())
	if err != nil {
		respondSeedError(w, err, "seed_failed")
		return
	}
	respondJSON(w, http.StatusCreated, ResultResponse{Success: true, Message: "Demo data seeded", Result: res})
}

// Reset handles POST /api/demo/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	res, err := h.seeder.Reset(r.Context())
	if err != nil {
		respondSeedError(w, err, "reset_failed")
		return
	}
	respondJSON(w, http.StatusOK, ResultResponse{Success: true, Message: "Demo data reset", Result: res})
}

func respondSeedError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrNotDemoMode):
		respondError(w, http.StatusForbidden, "not_demo_mode", err.Error())
	case errors.Is(err, ErrAlreadySeeded):
		respondError(w, http.StatusConflict, "already_seeded", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fallbackType, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	respondJSON(w, statusCode, map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
