package events

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("event not found")

// StorageError wraps a backend fault. Callers translate it to a 5xx response;
// it is never retried here.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Coordinates is an optional latitude/longitude pair attached to an event's
// free-text location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Event struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Location            string       `json:"location"`
	Coordinates         *Coordinates `json:"coordinates,omitempty"`
	Date                time.Time    `json:"date"`
	MaxParticipants     int          `json:"maxParticipants"`
	CurrentParticipants int          `json:"currentParticipants"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`

	// DistanceKm is computed per query against a caller-supplied reference
	// point. Never stored.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// EventCreateParams is a validated, normalized record ready for storage.
type EventCreateParams struct {
	Title               string
	Description         string
	Location            string
	Coordinates         *Coordinates
	Date                time.Time
	MaxParticipants     int
	CurrentParticipants int
}

// Filters narrow a listing at the storage layer. Location matches as a
// case-insensitive substring; Date selects the 24h window starting at that
// instant.
type Filters struct {
	Location string
	Date     *time.Time
}

// Repository is the Event Store contract. The backend (postgres or memory) is
// chosen once at construction time and injected; callers never switch between
// backends during a run.
type Repository interface {
	Create(ctx context.Context, params EventCreateParams) (*Event, error)
	List(ctx context.Context, filters Filters) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)

	// Backend names the active storage mode ("postgres" or "memory") for
	// logging and metrics.
	Backend() string
}
