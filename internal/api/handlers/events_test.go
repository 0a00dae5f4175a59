package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slanup/server/internal/api/respond"
	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *EventsHandler {
	return NewEventsHandler(events.NewService(memory.NewEventRepository()), "test")
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var envelope respond.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	return envelope
}

const validEventJSON = `{
	"title": "Morning Yoga",
	"description": "Sunrise yoga session in the park",
	"location": "Hyde Park, London",
	"date": "2030-06-15T09:00:00Z",
	"maxParticipants": 20,
	"coordinates": {"lat": 51.5074, "lng": -0.1278}
}`

func TestEventsHandler_NilServiceAnswers500(t *testing.T) {
	var nilHandler *EventsHandler
	unwired := &EventsHandler{}

	for name, serve := range map[string]http.HandlerFunc{
		"nil handler create":   nilHandler.Create,
		"nil handler list":     nilHandler.List,
		"nil handler get":      nilHandler.Get,
		"unwired service list": unwired.List,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		w := httptest.NewRecorder()
		require.NotPanics(t, func() { serve(w, req) }, name)
		require.Equal(t, http.StatusInternalServerError, w.Code, name)

		envelope := decodeEnvelope(t, w)
		assert.False(t, envelope.Success, name)
		assert.Equal(t, "Internal server error", envelope.Message, name)
	}
}

func TestCreateEvent(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(validEventJSON))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Event created successfully", envelope.Message)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Morning Yoga", data["title"])
	assert.EqualValues(t, 20, data["maxParticipants"])
	assert.EqualValues(t, 0, data["currentParticipants"])
	assert.NotEmpty(t, data["id"])
}

func TestCreateEvent_InvalidBody(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Invalid request body", envelope.Message)
}

func TestCreateEvent_MissingFields(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(`{"title": "Only a title"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Please provide all required fields: title, description, location, and date", envelope.Message)
}

func TestCreateEvent_PastDate(t *testing.T) {
	handler := newTestHandler()

	body := `{"title": "t", "description": "d", "location": "l", "date": "2020-01-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "Event date must be in the future", envelope.Message)
}

func TestListEvents(t *testing.T) {
	handler := newTestHandler()

	for _, body := range []string{
		validEventJSON,
		`{"title": "Chess Night", "description": "Blitz games", "location": "Berlin Cafe", "date": "2030-07-01T19:00:00Z"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.Create(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.Count)
	assert.Equal(t, 2, *envelope.Count)

	items, ok := envelope.Data.([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestListEvents_TextSearch(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(validEventJSON))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/events?q=nothing+matches", nil)
	w = httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Count)
	assert.Equal(t, 0, *envelope.Count)
}

func TestListEvents_ProximityAnnotatesDistance(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(validEventJSON))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/events?lat=51.5007&lng=-0.1246&maxDistanceKm=2", nil)
	w = httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Count)
	require.Equal(t, 1, *envelope.Count)

	items := envelope.Data.([]any)
	item := items[0].(map[string]any)
	distance, ok := item["distanceKm"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 0.78, distance, 0.1)
}

func TestListEvents_InvalidFilter(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?lat=51.5", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
}

func TestGetEvent(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(validEventJSON))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeEnvelope(t, w).Data.(map[string]any)
	id := created["id"].(string)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/events/"+id, nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	handler.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, id, data["id"])
}

func TestGetEvent_NotFound(t *testing.T) {
	handler := newTestHandler()

	// Well-formed ID that does not exist, and a malformed ID: both are 404.
	for _, id := range []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV", "674f1c2e9b3a"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.Get(w, req)

		require.Equal(t, http.StatusNotFound, w.Code, id)
		envelope := decodeEnvelope(t, w)
		assert.False(t, envelope.Success)
		assert.Equal(t, "Event not found", envelope.Message)
	}
}
