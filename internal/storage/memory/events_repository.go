package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/domain/ids"
)

var _ events.Repository = (*EventRepository)(nil)

// EventRepository is the transient fallback backend: an in-process collection
// owned by the instance that created it, empty at construction, gone at
// process exit. Records are immutable after creation, so a lock around the
// append and an index by id is all the coordination needed.
type EventRepository struct {
	mu    sync.RWMutex
	index map[string]int
	items []events.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{index: make(map[string]int)}
}

func (r *EventRepository) Backend() string {
	return "memory"
}

func (r *EventRepository) Create(_ context.Context, params events.EventCreateParams) (*events.Event, error) {
	id, err := ids.NewULID()
	if err != nil {
		return nil, &events.StorageError{Op: "create event", Err: err}
	}

	now := time.Now().UTC()
	event := events.Event{
		ID:                  id,
		Title:               params.Title,
		Description:         params.Description,
		Location:            params.Location,
		Coordinates:         params.Coordinates,
		Date:                params.Date,
		MaxParticipants:     params.MaxParticipants,
		CurrentParticipants: params.CurrentParticipants,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	r.mu.Lock()
	r.index[id] = len(r.items)
	r.items = append(r.items, event)
	r.mu.Unlock()

	return &event, nil
}

// List returns a point-in-time snapshot sorted ascending by date. The backing
// slice is append-only, so iterating under a read lock sees insertion order,
// and the stable sort preserves it among equal dates.
func (r *EventRepository) List(_ context.Context, filters events.Filters) ([]events.Event, error) {
	location := strings.ToLower(strings.TrimSpace(filters.Location))

	r.mu.RLock()
	matched := make([]events.Event, 0, len(r.items))
	for _, event := range r.items {
		if location != "" && !strings.Contains(strings.ToLower(event.Location), location) {
			continue
		}
		if filters.Date != nil && !withinDay(event.Date, *filters.Date) {
			continue
		}
		matched = append(matched, event)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	return matched, nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (*events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	position, ok := r.index[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	event := r.items[position]
	return &event, nil
}

// withinDay reports whether value falls in the 24h window [start, start+1day).
func withinDay(value, start time.Time) bool {
	end := start.Add(24 * time.Hour)
	return !value.Before(start) && value.Before(end)
}
