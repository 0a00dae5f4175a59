// Package respond writes the API's JSON envelope. Every user-visible response
// goes through here, making it the single translation point from domain errors
// to HTTP.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Envelope is the wire shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Option mutates the envelope before writing.
type Option func(*Envelope)

func WithMessage(message string) Option {
	return func(e *Envelope) {
		e.Message = message
	}
}

func WithCount(count int) Option {
	return func(e *Envelope) {
		e.Count = &count
	}
}

// Data writes a success envelope.
func Data(w http.ResponseWriter, status int, data any, opts ...Option) {
	envelope := Envelope{Success: true, Data: data}
	for _, opt := range opts {
		opt(&envelope)
	}
	write(w, status, envelope)
}

// Error writes a failure envelope and logs through the request-scoped logger:
// 5xx at error level, 4xx at warn. The underlying error detail is exposed to
// the client only outside production.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string) {
	envelope := Envelope{Success: false, Message: message}
	if err != nil && (env == "development" || env == "test") {
		envelope.Error = err.Error()
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	write(w, status, envelope)
}

func write(w http.ResponseWriter, status int, envelope Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
