package resident

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/pagination"
)

// mockService implements ServiceInterface for testing
type mockService struct {
	createResidentFunc           func(ctx context.Context, req CreateResidentRequest) (*Resident, error)
	getResidentFunc              func(ctx context.Context, id string) (*Resident, error)
	listActiveFunc               func(ctx context.Context) ([]Resident, error)
	listActiveWithPaginationFunc func(ctx context.Context, params pagination.Params) (*PaginatedResidentListResponse, error)
	updateResidentFunc           func(ctx context.Context, id string, req UpdateResidentRequest) (*Resident, error)
	deactivateResidentFunc       func(ctx context.Context, id string) error
}

func (m *mockService) CreateResident(ctx context.Context, req CreateResidentRequest) (*Resident, error) {
	if m.createResidentFunc != nil {
		return m.createResidentFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) GetResident(ctx context.Context, id string) (*Resident, error) {
	if m.getResidentFunc != nil {
		return m.getResidentFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) ListActive(ctx context.Context) ([]Resident, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) ListActiveWithPagination(ctx context.Context, params pagination.Params) (*PaginatedResidentListResponse, error) {
	if m.listActiveWithPaginationFunc != nil {
		return m.listActiveWithPaginationFunc(ctx, params)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) UpdateResident(ctx context.Context, id string, req UpdateResidentRequest) (*Resident, error) {
	if m.updateResidentFunc != nil {
		return m.updateResidentFunc(ctx, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) DeactivateResident(ctx context.Context, id string) error {
	if m.deactivateResidentFunc != nil {
		return m.deactivateResidentFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestHandlerCreateResident_Success(t *testing.T) {
	handler := NewHandler(&mockService{
		createResidentFunc: func(ctx context.Context, req CreateResidentRequest) (*Resident, error) {
			return &Resident{ID: "res-1", Name: req.Name, RoomNumber: req.RoomNumber, IsActive: true}, nil
		},
	})

	body, _ := json.Marshal(validCreateRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/residents", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.CreateResident(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeBody(t, rr)
	assert.Equal(t, true, resp["success"])
	resident := resp["resident"].(map[string]interface{})
	assert.Equal(t, "res-1", resident["id"])
	assert.Equal(t, "101", resident["roomNumber"])
}

func TestHandlerCreateResident_InvalidJSON(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/residents", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	handler.CreateResident(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, rr)["error"])
}

func TestHandlerCreateResident_ValidationError(t *testing.T) {
	handler := NewHandler(&mockService{
		createResidentFunc: func(ctx context.Context, req CreateResidentRequest) (*Resident, error) {
			return nil, ErrInvalidCareLevel
		},
	})

	body, _ := json.Marshal(validCreateRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/residents", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateResident(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeBody(t, rr)["error"])
}

func TestHandlerGetResident_NotFound(t *testing.T) {
	handler := NewHandler(&mockService{
		getResidentFunc: func(ctx context.Context, id string) (*Resident, error) {
			return nil, ErrResidentNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/residents/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()
	handler.GetResident(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerGetResident_StoreFailure(t *testing.T) {
	handler := NewHandler(&mockService{
		getResidentFunc: func(ctx context.Context, id string) (*Resident, error) {
			return nil, errors.New("failed to get resident: unavailable")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/residents/r1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "r1"})
	rr := httptest.NewRecorder()
	handler.GetResident(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "fetch_failed", decodeBody(t, rr)["error"])
}

func TestHandlerListResidents_PassesPagination(t *testing.T) {
	var got pagination.Params
	handler := NewHandler(&mockService{
		listActiveWithPaginationFunc: func(ctx context.Context, params pagination.Params) (*PaginatedResidentListResponse, error) {
			got = params
			return &PaginatedResidentListResponse{
				Residents:  []Resident{{ID: "r1"}},
				Pagination: params.CalculateMeta(1),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/residents?page=2&limit=5", nil)
	rr := httptest.NewRecorder()
	handler.ListResidents(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, pagination.Params{Page: 2, Limit: 5}, got)
}

func TestHandlerUpdateResident_Success(t *testing.T) {
	handler := NewHandler(&mockService{
		updateResidentFunc: func(ctx context.Context, id string, req UpdateResidentRequest) (*Resident, error) {
			require.NotNil(t, req.CareLevel)
			return &Resident{ID: id, CareLevel: *req.CareLevel}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/residents/r1", bytes.NewBufferString(`{"careLevel":4}`))
	req = mux.SetURLVars(req, map[string]string{"id": "r1"})
	rr := httptest.NewRecorder()
	handler.UpdateResident(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resident := decodeBody(t, rr)["resident"].(map[string]interface{})
	assert.Equal(t, float64(4), resident["careLevel"])
}

func TestHandlerUpdateResident_DeactivationNeedsDeletePermission(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		allowed    bool
		wantStatus int
		wantCalled bool
	}{
		{"deactivate without delete permission", `{"isActive":false}`, false, http.StatusForbidden, false},
		{"deactivate with delete permission", `{"isActive":false}`, true, http.StatusOK, true},
		{"reactivate without delete permission", `{"isActive":true}`, false, http.StatusOK, true},
		{"other fields without delete permission", `{"careLevel":2}`, false, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewHandler(&mockService{
				updateResidentFunc: func(ctx context.Context, id string, req UpdateResidentRequest) (*Resident, error) {
					called = true
					return &Resident{ID: id}, nil
				},
			}, WithDeactivationCheck(func(*http.Request) bool { return tt.allowed }))

			req := httptest.NewRequest(http.MethodPatch, "/api/residents/r1", bytes.NewBufferString(tt.body))
			req = mux.SetURLVars(req, map[string]string{"id": "r1"})
			rr := httptest.NewRecorder()
			handler.UpdateResident(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestHandlerDeleteResident_Success(t *testing.T) {
	var deactivated string
	handler := NewHandler(&mockService{
		deactivateResidentFunc: func(ctx context.Context, id string) error {
			deactivated = id
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/residents/r1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "r1"})
	rr := httptest.NewRecorder()
	handler.DeleteResident(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "r1", deactivated)
}
