package events

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/slanup/server/internal/domain/ids"
)

// Service is the directory boundary: validation on write, storage filter plus
// query engine on read.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input EventInput) (*Event, error) {
	params, err := ValidateEventInput(input, time.Now())
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) List(ctx context.Context, filters Filters, query Query) ([]Event, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return query.Apply(items), nil
}

// GetByID resolves an event by its ULID. IDs that do not match the key format
// are treated as absent, not as a caller error.
func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	if err := ids.ValidateULID(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, strings.ToUpper(strings.TrimSpace(id)))
}

func (s *Service) Backend() string {
	return s.repo.Backend()
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters reads listing query parameters: location and date narrow at the
// storage layer, q/lat/lng/maxDistanceKm feed the query engine.
func ParseFilters(values url.Values) (Filters, Query, error) {
	filters := Filters{
		Location: strings.TrimSpace(values.Get("location")),
	}

	date, err := parseFilterDate(values.Get("date"))
	if err != nil {
		return Filters{}, Query{}, err
	}
	filters.Date = date

	query := Query{Text: strings.TrimSpace(values.Get("q"))}

	lat, err := parseFilterFloat("lat", values.Get("lat"))
	if err != nil {
		return Filters{}, Query{}, err
	}
	lng, err := parseFilterFloat("lng", values.Get("lng"))
	if err != nil {
		return Filters{}, Query{}, err
	}
	if (lat == nil) != (lng == nil) {
		return Filters{}, Query{}, FilterError{Field: "lat", Message: "lat and lng must be provided together"}
	}
	if lat != nil {
		if *lat < -90 || *lat > 90 {
			return Filters{}, Query{}, FilterError{Field: "lat", Message: "must be between -90 and 90"}
		}
		if *lng < -180 || *lng > 180 {
			return Filters{}, Query{}, FilterError{Field: "lng", Message: "must be between -180 and 180"}
		}
		query.RefPoint = &Coordinates{Lat: *lat, Lng: *lng}
	}

	maxDistance, err := parseFilterFloat("maxDistanceKm", values.Get("maxDistanceKm"))
	if err != nil {
		return Filters{}, Query{}, err
	}
	if maxDistance != nil {
		if query.RefPoint == nil {
			return Filters{}, Query{}, FilterError{Field: "maxDistanceKm", Message: "requires lat and lng"}
		}
		if *maxDistance <= 0 {
			return Filters{}, Query{}, FilterError{Field: "maxDistanceKm", Message: "must be greater than zero"}
		}
		query.MaxDistanceKm = maxDistance
	}

	return filters, query, nil
}

func parseFilterDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, FilterError{Field: "date", Message: "must be ISO8601 date"}
	}
	return &parsed, nil
}

func parseFilterFloat(field, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, FilterError{Field: field, Message: "must be a number"}
	}
	return &parsed, nil
}
