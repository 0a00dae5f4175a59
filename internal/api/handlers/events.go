package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slanup/server/internal/api/respond"
	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", nil, "")
		return
	}

	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), input)
	if err != nil {
		var validationErr events.ValidationError
		if errors.As(err, &validationErr) {
			respond.Error(w, r, http.StatusBadRequest, validationMessage(validationErr), err, h.Env)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "Error creating event", err, h.Env)
		return
	}

	metrics.EventsCreatedTotal.WithLabelValues(h.Service.Backend()).Inc()
	respond.Data(w, http.StatusCreated, event, respond.WithMessage("Event created successfully"))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", nil, "")
		return
	}

	filters, query, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error(), err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), filters, query)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Error fetching events", err, h.Env)
		return
	}

	recordListMetrics(filters, query)
	respond.Data(w, http.StatusOK, items, respond.WithCount(len(items)))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", nil, "")
		return
	}

	event, err := h.Service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, "Event not found", err, h.Env)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "Error fetching event", err, h.Env)
		return
	}

	respond.Data(w, http.StatusOK, event)
}

// validationMessage keeps the user-facing wording stable per validation code.
func validationMessage(err events.ValidationError) string {
	switch err.Code {
	case events.CodeMissingField:
		return "Please provide all required fields: title, description, location, and date"
	case events.CodeInvalidDate:
		return "Invalid date format"
	case events.CodeDateNotFuture:
		return "Event date must be in the future"
	default:
		return err.Error()
	}
}

func recordListMetrics(filters events.Filters, query events.Query) {
	active := false
	if filters.Location != "" {
		metrics.EventsListQueriesTotal.WithLabelValues("location").Inc()
		active = true
	}
	if filters.Date != nil {
		metrics.EventsListQueriesTotal.WithLabelValues("date").Inc()
		active = true
	}
	if query.Text != "" {
		metrics.EventsListQueriesTotal.WithLabelValues("text").Inc()
		active = true
	}
	if query.MaxDistanceKm != nil {
		metrics.EventsListQueriesTotal.WithLabelValues("distance").Inc()
		active = true
	}
	if !active {
		metrics.EventsListQueriesTotal.WithLabelValues("none").Inc()
	}
}
