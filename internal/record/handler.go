package record

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type RecordResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Record  *DailyRecord `json:"record"`
}

type HistoryResponse struct {
	Success bool          `json:"success"`
	Records []DailyRecord `json:"records"`
	Days    int           `json:"days"`
}

type OverviewResponse struct {
	Success   bool       `json:"success"`
	Date      string     `json:"date"`
	Residents []DayEntry `json:"residents"`
}

// GetRecord returns the record for the day. A day without entries yields
// "record": null, not a 404.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := h.service.GetRecord(r.Context(), vars["id"], vars["date"])
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	respondJSON(w, http.StatusOK, RecordResponse{Success: true, Record: rec})
}

// ReplaceRecord saves a raw patch. Lists present in the body replace the
// stored lists.
func (h *Handler) ReplaceRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	rec, err := h.service.ReplaceLists(r.Context(), actor, vars["id"], vars["date"], patch)
	if err != nil {
		respondServiceError(w, err, "save_failed")
		return
	}
	respondJSON(w, http.StatusOK, RecordResponse{Success: true, Message: "Record saved successfully", Record: rec})
}

// AppendEntry decodes the body according to the {kind} path segment.
func (h *Handler) AppendEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	residentID, date := vars["id"], vars["date"]

	kind, err := ParseKind(vars["kind"])
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_kind", err.Error())
		return
	}

	var rec *DailyRecord
	dec := json.NewDecoder(r.Body)
	decodeFailed := func(err error) bool {
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
			return true
		}
		return false
	}

	switch kind {
	case KindVitals:
		var v Vital
		if decodeFailed(dec.Decode(&v)) {
			return
		}
		rec, err = h.service.AppendVital(r.Context(), actor, residentID, date, v)
	case KindExcretions:
		var e Excretion
		if decodeFailed(dec.Decode(&e)) {
			return
		}
		rec, err = h.service.AppendExcretion(r.Context(), actor, residentID, date, e)
	case KindMeals:
		var m Meal
		if decodeFailed(dec.Decode(&m)) {
			return
		}
		rec, err = h.service.AppendMeal(r.Context(), actor, residentID, date, m)
	case KindHydrations:
		var hy Hydration
		if decodeFailed(dec.Decode(&hy)) {
			return
		}
		rec, err = h.service.AppendHydration(r.Context(), actor, residentID, date, hy)
	}

	if err != nil {
		respondServiceError(w, err, "save_failed")
		return
	}
	respondJSON(w, http.StatusCreated, RecordResponse{Success: true, Message: "Entry recorded successfully", Record: rec})
}

func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	kind, err := ParseKind(vars["kind"])
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_kind", err.Error())
		return
	}

	rec, err := h.service.RemoveEntry(r.Context(), actor, vars["id"], vars["date"], kind, vars["entryId"])
	if err != nil {
		respondServiceError(w, err, "delete_failed")
		return
	}
	respondJSON(w, http.StatusOK, RecordResponse{Success: true, Message: "Entry removed successfully", Record: rec})
}

// History serves ?days=N. The service applies the default and the cap.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "validation_error", "days must be a positive integer")
			return
		}
		days = n
	}

	records, days, err := h.service.ResidentHistory(r.Context(), mux.Vars(r)["id"], days)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	respondJSON(w, http.StatusOK, HistoryResponse{Success: true, Records: records, Days: days})
}

func (h *Handler) DayOverview(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	entries, err := h.service.DayOverview(r.Context(), date)
	if err != nil {
		respondServiceError(w, err, "fetch_failed")
		return
	}
	respondJSON(w, http.StatusOK, OverviewResponse{Success: true, Date: date, Residents: entries})
}

// BulkAppend answers 200 when every target was written and 207 with the
// failed targets otherwise.
func (h *Handler) BulkAppend(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req BulkAppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	result, err := h.service.BulkAppend(r.Context(), actor, req)
	var bulkErr *BulkError
	switch {
	case errors.As(err, &bulkErr) && result != nil:
		respondJSON(w, http.StatusMultiStatus, map[string]interface{}{
			"success":   false,
			"error":     "partial_failure",
			"message":   bulkErr.Error(),
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		})
	case err != nil:
		respondServiceError(w, err, "bulk_failed")
	default:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Entries recorded successfully",
			"succeeded": result.Succeeded,
		})
	}
}

func actorFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := auth.FromContext(r.Context())
	if !ok || principal.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return "", false
	}
	return principal.UserID, true
}

func respondServiceError(w http.ResponseWriter, err error, fallbackType string) {
	switch {
	case errors.Is(err, ErrResidentNotFound):
		respondError(w, http.StatusNotFound, "resident_not_found", err.Error())
	case errors.Is(err, ErrEntryNotFound):
		respondError(w, http.StatusNotFound, "entry_not_found", err.Error())
	case IsValidationError(err):
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
