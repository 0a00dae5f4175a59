package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/slanup/server/internal/api/respond"
	"github.com/slanup/server/internal/geocoding"
)

// OSMAttribution is the attribution string required by OpenStreetMap usage policy
const OSMAttribution = "Data © OpenStreetMap contributors, ODbL 1.0"

// Geocoder is the address⇄coordinate collaborator consumed by the API.
type Geocoder interface {
	AddressToCoordinates(ctx context.Context, address string) (*geocoding.Location, error)
	CoordinatesToAddress(ctx context.Context, lat, lng float64) (string, error)
}

type GeocodingHandler struct {
	Service Geocoder
	Env     string
}

func NewGeocodingHandler(service Geocoder, env string) *GeocodingHandler {
	return &GeocodingHandler{Service: service, Env: env}
}

// Geocode handles GET /api/v1/geocode?q=<address>.
func (h *GeocodingHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", nil, "")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respond.Error(w, r, http.StatusBadRequest, "Query parameter 'q' is required", errors.New("missing q"), h.Env)
		return
	}

	location, err := h.Service.AddressToCoordinates(r.Context(), query)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			respond.Error(w, r, http.StatusNotFound, "No results found for the given address", err, h.Env)
			return
		}
		respond.Error(w, r, http.StatusUnprocessableEntity, "Geocoding failed", err, h.Env)
		return
	}

	respond.Data(w, http.StatusOK, location, respond.WithMessage(OSMAttribution))
}

// ReverseGeocode handles GET /api/v1/reverse-geocode?lat=<lat>&lng=<lng>.
func (h *GeocodingHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", nil, "")
		return
	}

	lat, err := parseCoordinate(r.URL.Query().Get("lat"), -90, 90)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Query parameter 'lat' must be a latitude", err, h.Env)
		return
	}
	lng, err := parseCoordinate(r.URL.Query().Get("lng"), -180, 180)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Query parameter 'lng' must be a longitude", err, h.Env)
		return
	}

	address, err := h.Service.CoordinatesToAddress(r.Context(), lat, lng)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			respond.Error(w, r, http.StatusNotFound, "No address found for the given coordinates", err, h.Env)
			return
		}
		respond.Error(w, r, http.StatusUnprocessableEntity, "Reverse geocoding failed", err, h.Env)
		return
	}

	payload := map[string]string{"displayAddress": address}
	respond.Data(w, http.StatusOK, payload, respond.WithMessage(OSMAttribution))
}

func parseCoordinate(value string, low, high float64) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if parsed < low || parsed > high {
		return 0, errors.New("out of range")
	}
	return parsed, nil
}
