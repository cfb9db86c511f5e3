//go:build integration

package e2e

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/record"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/testutil"
)

func createResident(t *testing.T, client *testutil.HTTPTestClient, room string) string {
	t.Helper()
	resp := client.POST(t, "/api/residents", resident.CreateResidentRequest{
		Name: "Suzuki Hanako", NameKana: "スズキ ハナコ", BirthDate: "1938-07-22",
		Gender: resident.GenderFemale, RoomNumber: room, CareLevel: 2,
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created resident.ResidentSuccessResponse
	testutil.DecodeJSON(t, resp, &created)
	return created.Resident.ID
}

func TestE2E_DailyRecord_Lifecycle(t *testing.T) {
	ts := SetupE2ETest(t, appmode.Production)
	defer ts.Cleanup(t)

	admin := ts.AdminClient(t)
	staff := ts.StaffClient(t)
	residentID := createResident(t, admin, "201")
	today := time.Now().UTC().Format(record.DateLayout)
	base := "/api/residents/" + residentID + "/records/" + today

	var got record.RecordResponse
	resp := staff.GET(t, base)
	testutil.DecodeJSON(t, resp, &got)
	assert.Nil(t, got.Record, "empty day reads as null")

	resp = staff.POST(t, base+"/vitals", map[string]interface{}{
		"time": "06:00", "temperature": 36.6, "pulse": 72,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var appended record.RecordResponse
	testutil.DecodeJSON(t, resp, &appended)
	require.Len(t, appended.Record.Vitals, 1)
	assert.Equal(t, "staff-123", appended.Record.Vitals[0].RecordedBy)
	vitalID := appended.Record.Vitals[0].ID

	resp = staff.POST(t, base+"/hydrations", map[string]interface{}{
		"time": "10:00", "amount": 150, "drinkType": "green tea",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = staff.PUT(t, base, map[string]interface{}{
		"meals": []map[string]interface{}{
			{"mealType": "breakfast", "mainDishAmount": 80, "sideDishAmount": 70},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replaced record.RecordResponse
	testutil.DecodeJSON(t, resp, &replaced)
	assert.Len(t, replaced.Record.Meals, 1)
	assert.Len(t, replaced.Record.Vitals, 1, "lists absent from the body are kept")
	assert.Len(t, replaced.Record.Hydrations, 1)

	resp = staff.DELETE(t, base+"/vitals/"+vitalID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var removed record.RecordResponse
	testutil.DecodeJSON(t, resp, &removed)
	assert.Empty(t, removed.Record.Vitals)

	resp = staff.DELETE(t, base+"/vitals/"+vitalID)
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	resp.Body.Close()

	var history record.HistoryResponse
	resp = staff.GET(t, "/api/residents/"+residentID+"/records?days=3")
	testutil.DecodeJSON(t, resp, &history)
	require.Len(t, history.Records, 1)
	assert.Equal(t, today, history.Records[0].Date)

	ts.MockPublisher.AssertEventPublished(t, messaging.EventDailyRecordSaved)
}

func TestE2E_DailyRecord_ConcurrentAppendsKeepEveryEntry(t *testing.T) {
	ts := SetupE2ETest(t, appmode.Production)
	defer ts.Cleanup(t)

	admin := ts.AdminClient(t)
	staff := ts.StaffClient(t)
	residentID := createResident(t, admin, "202")
	today := time.Now().UTC().Format(record.DateLayout)
	path := "/api/residents/" + residentID + "/records/" + today + "/hydrations"

	const writers = 10
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := staff.POST(t, path, map[string]interface{}{"time": "14:00", "amount": 100})
			resp.Body.Close()
		}()
	}
	wg.Wait()

	var got record.RecordResponse
	resp := staff.GET(t, "/api/residents/"+residentID+"/records/"+today)
	testutil.DecodeJSON(t, resp, &got)
	assert.Len(t, got.Record.Hydrations, writers)
}

func TestE2E_BulkAppend_PartialFailure(t *testing.T) {
	ts := SetupE2ETest(t, appmode.Production)
	defer ts.Cleanup(t)

	admin := ts.AdminClient(t)
	staff := ts.StaffClient(t)
	first := createResident(t, admin, "203")
	second := createResident(t, admin, "204")
	today := time.Now().UTC().Format(record.DateLayout)

	resp := staff.POST(t, "/api/records/bulk", map[string]interface{}{
		"date":        today,
		"kind":        "meals",
		"residentIds": []string{first, second, "missing-resident"},
		"meal":        map[string]interface{}{"mealType": "lunch", "mainDishAmount": 100, "sideDishAmount": 90},
	})
	testutil.AssertStatusCode(t, resp, http.StatusMultiStatus)
	resp.Body.Close()

	var overview record.OverviewResponse
	resp = staff.GET(t, "/api/records/"+today)
	testutil.DecodeJSON(t, resp, &overview)
	require.Len(t, overview.Residents, 2)
	for _, entry := range overview.Residents {
		require.NotNil(t, entry.Record)
		assert.Len(t, entry.Record.Meals, 1)
	}
}
