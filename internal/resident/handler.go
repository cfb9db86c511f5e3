package resident

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/pagination"
)

type Handler struct {
	service       ServiceInterface
	canDeactivate func(r *http.Request) bool
}

type HandlerOption func(*Handler)

// WithDeactivationCheck makes PATCH {"isActive": false} pass the same check
// as DELETE, so a caller without delete rights cannot deactivate through
// an update.
func WithDeactivationCheck(check func(r *http.Request) bool) HandlerOption {
	return func(h *Handler) { h.canDeactivate = check }
}

func NewHandler(service ServiceInterface, opts ...HandlerOption) *Handler {
	h := &Handler{service: service}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type ResidentSuccessResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Resident *Resident `json:"resident,omitempty"`
}

func (h *Handler) CreateResident(w http.ResponseWriter, r *http.Request) {
	var req CreateResidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	res, err := h.service.CreateResident(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "creation_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ResidentSuccessResponse{
		Success:  true,
		Message:  "Resident created successfully",
		Resident: res,
	})
}

func (h *Handler) ListResidents(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	response, err := h.service.ListActiveWithPagination(r.Context(), params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) GetResident(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Resident ID is required")
		return
	}

	res, err := h.service.GetResident(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ResidentSuccessResponse{
		Success:  true,
		Message:  "Resident retrieved successfully",
		Resident: res,
	})
}

func (h *Handler) UpdateResident(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Resident ID is required")
		return
	}

	var req UpdateResidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if req.IsActive != nil && !*req.IsActive && h.canDeactivate != nil && !h.canDeactivate(r) {
		respondError(w, http.StatusForbidden, "forbidden", "Deactivating a resident requires delete permission")
		return
	}

	res, err := h.service.UpdateResident(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "update_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ResidentSuccessResponse{
		Success:  true,
		Message:  "Resident updated successfully",
		Resident: res,
	})
}

// DeleteResident performs a soft delete.
func (h *Handler) DeleteResident(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Resident ID is required")
		return
	}

	if err := h.service.DeactivateResident(r.Context(), id); err != nil {
		respondServiceError(w, err, "deletion_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Resident deactivated successfully",
	})
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrResidentNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case IsValidationError(err):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fallbackType, err.Error())
	}
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
