package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slanup/server/internal/geocoding/nominatim"
	"github.com/slanup/server/internal/metrics"
)

// Service resolves free-text addresses to coordinates and back through
// Nominatim. The directory core never depends on it; it exists for clients
// that want the lookup done server-side.
type Service struct {
	client *nominatim.Client
	logger zerolog.Logger
}

func NewService(client *nominatim.Client, logger zerolog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Location is a resolved address.
type Location struct {
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	DisplayAddress string  `json:"displayAddress"`
}

// ErrGeocodingFailed is returned when the lookup fails after all retries.
var ErrGeocodingFailed = errors.New("geocoding failed")

// ErrNoResults is returned when Nominatim has no match for a query.
var ErrNoResults = errors.New("no geocoding results found")

// AddressToCoordinates performs forward geocoding (address -> coordinates).
func (s *Service) AddressToCoordinates(ctx context.Context, address string) (*Location, error) {
	query := strings.TrimSpace(address)
	if query == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	start := time.Now()
	results, err := s.client.Search(ctx, query, nominatim.SearchOptions{Limit: 1})
	if err != nil {
		metrics.GeocodingRequestsTotal.WithLabelValues("forward", "error").Inc()
		s.logger.Error().
			Err(err).
			Str("query", query).
			Dur("latency", time.Since(start)).
			Msg("nominatim search failed")
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	if len(results) == 0 {
		metrics.GeocodingRequestsTotal.WithLabelValues("forward", "not_found").Inc()
		s.logger.Warn().Str("query", query).Msg("nominatim returned no results")
		return nil, fmt.Errorf("%w for query: %s", ErrNoResults, query)
	}

	result := results[0]
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in nominatim result: %w", err)
	}
	lng, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in nominatim result: %w", err)
	}

	metrics.GeocodingRequestsTotal.WithLabelValues("forward", "success").Inc()
	s.logger.Debug().
		Str("query", query).
		Float64("lat", lat).
		Float64("lng", lng).
		Dur("latency", time.Since(start)).
		Msg("geocoding successful")

	return &Location{Lat: lat, Lng: lng, DisplayAddress: result.DisplayName}, nil
}

// CoordinatesToAddress performs reverse geocoding (coordinates -> address).
func (s *Service) CoordinatesToAddress(ctx context.Context, lat, lng float64) (string, error) {
	start := time.Now()
	result, err := s.client.Reverse(ctx, lat, lng)
	if err != nil {
		metrics.GeocodingRequestsTotal.WithLabelValues("reverse", "error").Inc()
		s.logger.Error().
			Err(err).
			Float64("lat", lat).
			Float64("lng", lng).
			Dur("latency", time.Since(start)).
			Msg("nominatim reverse failed")
		return "", fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	if result.DisplayName == "" {
		metrics.GeocodingRequestsTotal.WithLabelValues("reverse", "not_found").Inc()
		return "", fmt.Errorf("%w for %f,%f", ErrNoResults, lat, lng)
	}

	metrics.GeocodingRequestsTotal.WithLabelValues("reverse", "success").Inc()
	return result.DisplayName, nil
}
