package nominatim

// SearchOptions contains optional parameters for forward geocoding.
type SearchOptions struct {
	// CountryCodes limits results to specific countries (comma-separated ISO 3166-1 alpha-2 codes, e.g. "gb,de")
	CountryCodes string
	// Limit controls the maximum number of results (default: 1, max: 50)
	Limit int
}

// SearchResult is a single result from the Nominatim search endpoint (format=jsonv2).
// Coordinates arrive as strings; the caller parses them.
type SearchResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Class       string `json:"class"`
}

// ReverseResult is a reverse geocoding result (coordinates -> address).
type ReverseResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Class       string `json:"class"`
}
