package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	memlocal "github.com/roamplan/itinerary-engine/internal/adapters/memory/localstore"
	memremote "github.com/roamplan/itinerary-engine/internal/adapters/memory/remotestore"
	memqueue "github.com/roamplan/itinerary-engine/internal/adapters/memory/syncqueue"
	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/platform/clock"
	"github.com/roamplan/itinerary-engine/internal/platform/idgen"
	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
)

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, _ string) (geocoder.Place, error) {
	return geocoder.Place{}, geocoder.ErrNotFound
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := engine.NewService(
		memlocal.NewStore(),
		memremote.NewStore(),
		memqueue.NewQueue(),
		idgen.NewUUIDGenerator(),
		stubGeocoder{},
		clock.NewSystemClock(),
		log,
	)
	require.NoError(t, svc.Load(context.Background()))
	return NewServer(svc, log).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createTripViaAPI(t *testing.T, h http.Handler) domain.Trip {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/trips", map[string]any{
		"title":     "Lisbon",
		"startDate": "2025-06-01",
		"endDate":   "2025-06-03",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var trip domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
	return trip
}

func TestCreateAndGetTrip(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	trip := createTripViaAPI(t, h)
	require.Len(t, trip.Itinerary.Days, 3)
	require.Equal(t, 1, trip.Itinerary.Days[0].DayNumber)

	rec := doJSON(t, h, http.MethodGet, "/api/trips/"+string(trip.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, trip.ID, got.ID)
	require.Equal(t, "Lisbon", got.Title)
}

func TestCreateTrip_InvalidRange(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/trips", map[string]any{
		"title":     "Backwards",
		"startDate": "2025-06-03",
		"endDate":   "2025-06-01",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchTrip_NullClearsField(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)
	trip := createTripViaAPI(t, h)

	rec := doJSON(t, h, http.MethodPatch, "/api/trips/"+string(trip.ID),
		json.RawMessage(`{"description":null,"destination":"Portugal"}`), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Empty(t, got.Description)
	require.Equal(t, "Portugal", got.Destination)
	require.Equal(t, "Lisbon", got.Title, "omitted field must stay untouched")
}

func TestUnknownTripIs404(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/trips/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActiveTripDayFlow(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)
	trip := createTripViaAPI(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+string(trip.ID)+"/activate", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/active-trip/days", addDayRequest{Position: 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added addDayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	require.Len(t, added.Trip.Itinerary.Days, 4)
	require.Equal(t, 2, added.Day.DayNumber)

	rec = doJSON(t, h, http.MethodDelete,
		"/api/active-trip/days/"+string(added.Day.ID)+"?handling=delete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var removed removeDayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	require.Len(t, removed.Trip.Itinerary.Days, 3)

	rec = doJSON(t, h, http.MethodDelete,
		"/api/active-trip/days/"+string(trip.Itinerary.Days[0].ID)+"?handling=sideways", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityFlowAndUndo(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)
	trip := createTripViaAPI(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/trips/"+string(trip.ID)+"/activate", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	day := trip.Itinerary.Days[0]
	rec = doJSON(t, h, http.MethodPost,
		"/api/active-trip/days/"+string(day.ID)+"/activities",
		addActivityRequest{Description: "Tram 28", Type: "activity"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var act domain.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &act))
	require.Equal(t, "Tram 28", act.Description)

	rec = doJSON(t, h, http.MethodGet, "/api/trips/"+string(trip.ID)+"/history", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.True(t, hist.CanUndo)

	rec = doJSON(t, h, http.MethodPost, "/api/trips/"+string(trip.ID)+"/undo", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var undone domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &undone))
	require.Empty(t, undone.Itinerary.Days[0].Activities)

	rec = doJSON(t, h, http.MethodPost, "/api/trips/"+string(trip.ID)+"/redo", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/session", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/session", nil, map[string]string{
		"X-Debug-Subject": "user-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.True(t, sess.SignedIn)
	require.Equal(t, "user-1", sess.Owner)

	rec = doJSON(t, h, http.MethodDelete, "/api/session", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/session", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.False(t, sess.SignedIn)
}
