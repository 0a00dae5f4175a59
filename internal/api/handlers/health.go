package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health reports liveness plus which storage backend the instance selected at
// startup.
func Health(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Slanup API is running",
			"backend":   backend,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Root serves the informational index and doubles as the 404 handler for
// unmatched routes.
func Root(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"message": "Route not found",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Welcome to Slanup Event Discovery API",
			"version": version,
			"endpoints": map[string]string{
				"health":       "/health",
				"metrics":      "/metrics",
				"events":       "/api/v1/events",
				"createEvent":  "POST /api/v1/events",
				"getAllEvents": "GET /api/v1/events",
				"getEventById": "GET /api/v1/events/{id}",
				"geocode":      "GET /api/v1/geocode",
				"reverse":      "GET /api/v1/reverse-geocode",
			},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
