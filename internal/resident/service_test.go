package resident

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/testutil"
)

// mockRepository implements RepositoryInterface for testing
type mockRepository struct {
	listActiveFunc func(ctx context.Context) ([]Resident, error)
	getFunc        func(ctx context.Context, id string) (*Resident, error)
	createFunc     func(ctx context.Context, res Resident) (string, error)
	updateFunc     func(ctx context.Context, id string, c Changes) error
	softDeleteFunc func(ctx context.Context, id string) error
}

func (m *mockRepository) ListActive(ctx context.Context) ([]Resident, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Get(ctx context.Context, id string) (*Resident, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Create(ctx context.Context, res Resident) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	return "", errors.New("not implemented")
}

func (m *mockRepository) Update(ctx context.Context, id string, c Changes) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, c)
	}
	return errors.New("not implemented")
}

func (m *mockRepository) SoftDelete(ctx context.Context, id string) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func newTestService(repo RepositoryInterface) (*Service, *testutil.MockPublisher) {
	pub := testutil.NewMockPublisher()
	svc := NewService(repo, pub, appmode.Demo, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	return svc, pub
}

func validCreateRequest() CreateResidentRequest {
	return CreateResidentRequest{
		Name:       "Yamada Taro",
		NameKana:   "Yamada Taro",
		BirthDate:  "1938-04-12",
		Gender:     GenderMale,
		RoomNumber: "101",
		CareLevel:  3,
	}
}

func TestCreateResident_Success(t *testing.T) {
	var stored Resident
	repo := &mockRepository{
		createFunc: func(ctx context.Context, res Resident) (string, error) {
			stored = res
			return "res-1", nil
		},
		getFunc: func(ctx context.Context, id string) (*Resident, error) {
			r := stored
			r.ID = id
			return &r, nil
		},
	}
	svc, pub := newTestService(repo)

	res, err := svc.CreateResident(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "res-1", res.ID)
	assert.True(t, stored.IsActive, "new residents start active")
	assert.Equal(t, time.Date(1938, 4, 12, 0, 0, 0, 0, time.UTC), stored.BirthDate)

	pub.AssertEventCount(t, messaging.EventResidentCreated, 1)
}

func TestCreateResident_ValidationError(t *testing.T) {
	svc, pub := newTestService(&mockRepository{})

	testCases := []struct {
		name   string
		mutate func(r *CreateResidentRequest)
		want   error
	}{
		{"Missing name", func(r *CreateResidentRequest) { r.Name = " " }, ErrMissingName},
		{"Missing kana", func(r *CreateResidentRequest) { r.NameKana = "" }, ErrMissingNameKana},
		{"Missing room", func(r *CreateResidentRequest) { r.RoomNumber = "" }, ErrMissingRoomNumber},
		{"Bad birth date", func(r *CreateResidentRequest) { r.BirthDate = "12/04/1938" }, ErrInvalidBirthDate},
		{"Future birth date", func(r *CreateResidentRequest) { r.BirthDate = "2030-01-01" }, ErrInvalidBirthDate},
		{"Bad gender", func(r *CreateResidentRequest) { r.Gender = "other" }, ErrInvalidGender},
		{"Care level too high", func(r *CreateResidentRequest) { r.CareLevel = 6 }, ErrInvalidCareLevel},
		{"Care level zero", func(r *CreateResidentRequest) { r.CareLevel = 0 }, ErrInvalidCareLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := svc.CreateResident(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsValidationError(err))
		})
	}
	assert.Equal(t, 0, pub.GetEventCount())
}

func TestCreateResident_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("permission denied")
	svc, _ := newTestService(&mockRepository{
		createFunc: func(ctx context.Context, res Resident) (string, error) { return "", storeErr },
	})

	_, err := svc.CreateResident(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, storeErr)
}

func TestGetResident_NotFound(t *testing.T) {
	svc, _ := newTestService(&mockRepository{
		getFunc: func(ctx context.Context, id string) (*Resident, error) { return nil, nil },
	})

	_, err := svc.GetResident(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrResidentNotFound)
}

func TestListActiveWithPagination(t *testing.T) {
	all := make([]Resident, 25)
	for i := range all {
		all[i] = Resident{ID: string(rune('a' + i))}
	}
	svc, _ := newTestService(&mockRepository{
		listActiveFunc: func(ctx context.Context) ([]Resident, error) { return all, nil },
	})

	page, err := svc.ListActiveWithPagination(context.Background(), pagination.Params{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Residents, 10)
	assert.Equal(t, "k", page.Residents[0].ID)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)

	page, err = svc.ListActiveWithPagination(context.Background(), pagination.Params{Page: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Residents)
}

func TestUpdateResident_DeactivationEmitsDeactivatedEvent(t *testing.T) {
	active := true
	repo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*Resident, error) {
			return &Resident{ID: id, IsActive: active}, nil
		},
		updateFunc: func(ctx context.Context, id string, c Changes) error {
			require.NotNil(t, c.IsActive)
			active = *c.IsActive
			return nil
		},
	}
	svc, pub := newTestService(repo)

	inactive := false
	res, err := svc.UpdateResident(context.Background(), "res-1", UpdateResidentRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, res.IsActive)

	pub.AssertEventCount(t, messaging.EventResidentDeactivated, 1)
	pub.AssertEventNotPublished(t, messaging.EventResidentUpdated)
}

func TestUpdateResident_EmptyPatch(t *testing.T) {
	svc, _ := newTestService(&mockRepository{})
	_, err := svc.UpdateResident(context.Background(), "res-1", UpdateResidentRequest{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestDeactivateResident(t *testing.T) {
	var deleted string
	svc, pub := newTestService(&mockRepository{
		getFunc: func(ctx context.Context, id string) (*Resident, error) {
			return &Resident{ID: id, IsActive: true}, nil
		},
		softDeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	require.NoError(t, svc.DeactivateResident(context.Background(), "res-9"))
	assert.Equal(t, "res-9", deleted)
	pub.AssertEventPublished(t, messaging.EventResidentDeactivated)
}

func TestDeactivateResident_PublishFailureDoesNotFail(t *testing.T) {
	repo := &mockRepository{
		getFunc:        func(ctx context.Context, id string) (*Resident, error) { return &Resident{ID: id}, nil },
		softDeleteFunc: func(ctx context.Context, id string) error { return nil },
	}
	svc := NewService(repo, testutil.FailingPublisher{}, appmode.Demo, zap.NewNop())

	assert.NoError(t, svc.DeactivateResident(context.Background(), "res-1"))
}
