package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slanup/server/internal/api/handlers"
	"github.com/slanup/server/internal/api/middleware"
	"github.com/slanup/server/internal/config"
	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/metrics"
)

// NewRouter wires the directory surface. The storage backend and geocoder are
// injected, chosen once by the caller; the router never probes connectivity
// itself.
func NewRouter(cfg config.Config, logger zerolog.Logger, repo events.Repository, geocoder handlers.Geocoder, version string) http.Handler {
	eventsService := events.NewService(repo)

	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	geocodingHandler := handlers.NewGeocodingHandler(geocoder, cfg.Environment)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.Health(repo.Backend()))
	mux.Handle("/metrics", metrics.Handler())

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
	}))
	mux.Handle("/api/v1/geocode", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(geocodingHandler.Geocode),
	}))
	mux.Handle("/api/v1/reverse-geocode", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(geocodingHandler.ReverseGeocode),
	}))
	mux.Handle("/", handlers.Root(version))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
