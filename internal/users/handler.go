package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type UserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
}

// SignInGuest handles POST /api/session/guest.
func (h *Handler) SignInGuest(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.SignInGuest(r.Context())
	if err != nil {
		respondServiceError(w, err, "sign_in_failed")
		return
	}
	respondJSON(w, http.StatusOK, UserResponse{Success: true, Message: "Signed in as guest", User: u})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	u, err := h.service.Me(r.Context(), principal)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	respondJSON(w, http.StatusOK, UserResponse{Success: true, User: u})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	u, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}
	respondJSON(w, http.StatusCreated, UserResponse{Success: true, Message: "User created successfully", User: u})
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, ErrGuestDisabled):
		respondError(w, http.StatusForbidden, "guest_disabled", err.Error())
	case errors.Is(err, ErrUserExists):
		respondError(w, http.StatusConflict, "user_exists", err.Error())
	case errors.Is(err, ErrMissingID), errors.Is(err, ErrMissingEmail),
		errors.Is(err, ErrMissingName), errors.Is(err, ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
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
