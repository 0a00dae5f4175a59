package events

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

// Query post-processes a stored listing: free-text search and proximity
// filtering beyond what the storage filter expresses. Filters compose
// conjunctively; an event must satisfy every active one.
type Query struct {
	// Text matches case-insensitively against title, description, or
	// location.
	Text string
	// RefPoint, when set, annotates each event that has coordinates with
	// its great-circle distance from the point.
	RefPoint *Coordinates
	// MaxDistanceKm keeps only events within the radius (inclusive).
	// Events without coordinates are excluded. Requires RefPoint.
	MaxDistanceKm *float64
}

// Apply filters items in their stored order, which the repositories guarantee
// to be ascending by date with insertion order preserved among ties.
func (q Query) Apply(items []Event) []Event {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]Event, 0, len(items))
	for _, event := range items {
		if text != "" && !matchesText(event, text) {
			continue
		}
		if q.RefPoint != nil && event.Coordinates != nil {
			distance := HaversineKm(*q.RefPoint, *event.Coordinates)
			event.DistanceKm = &distance
		}
		if q.MaxDistanceKm != nil {
			if event.DistanceKm == nil || *event.DistanceKm > *q.MaxDistanceKm {
				continue
			}
		}
		out = append(out, event)
	}
	return out
}

func matchesText(event Event, query string) bool {
	return strings.Contains(strings.ToLower(event.Title), query) ||
		strings.Contains(strings.ToLower(event.Description), query) ||
		strings.Contains(strings.ToLower(event.Location), query)
}

// HaversineKm computes the great-circle distance between two points in
// kilometers. Fine for regional, city-scale events; no antimeridian or pole
// handling.
func HaversineKm(from, to Coordinates) float64 {
	dLat := radians(to.Lat - from.Lat)
	dLng := radians(to.Lng - from.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(from.Lat))*math.Cos(radians(to.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
