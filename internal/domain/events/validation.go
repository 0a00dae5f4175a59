package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxLocationLength    = 200

	minParticipants        = 1
	maxParticipantsCeiling = 50
	defaultMaxParticipants = 50
)

// Machine-readable validation codes.
const (
	CodeMissingField               = "missing_field"
	CodeInvalidDate                = "invalid_date"
	CodeDateNotFuture              = "date_not_future"
	CodeTooLong                    = "too_long"
	CodeParticipantsExceedCapacity = "participants_exceed_capacity"
)

type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// EventInput is the create payload as received on the wire. Participant counts
// and coordinates are kept raw so malformed values can fall back to defaults
// instead of failing the whole decode.
type EventInput struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Location            string          `json:"location"`
	Date                string          `json:"date"`
	MaxParticipants     json.RawMessage `json:"maxParticipants,omitempty"`
	CurrentParticipants json.RawMessage `json:"currentParticipants,omitempty"`
	Coordinates         json.RawMessage `json:"coordinates,omitempty"`
}

// Accepted date layouts, most specific first. RFC3339 is the documented
// format; the two fallbacks cover clients that omit the offset or send a
// bare calendar date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidateEventInput checks field constraints and produces a normalized record
// ready for storage. Pure function of its input; now is injected so the
// strictly-in-the-future rule stays testable.
func ValidateEventInput(input EventInput, now time.Time) (EventCreateParams, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return EventCreateParams{}, ValidationError{Field: "title", Code: CodeMissingField, Message: "required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return EventCreateParams{}, ValidationError{Field: "title", Code: CodeTooLong, Message: fmt.Sprintf("cannot exceed %d characters", maxTitleLength)}
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return EventCreateParams{}, ValidationError{Field: "description", Code: CodeMissingField, Message: "required"}
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return EventCreateParams{}, ValidationError{Field: "description", Code: CodeTooLong, Message: fmt.Sprintf("cannot exceed %d characters", maxDescriptionLength)}
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		return EventCreateParams{}, ValidationError{Field: "location", Code: CodeMissingField, Message: "required"}
	}
	if utf8.RuneCountInString(location) > maxLocationLength {
		return EventCreateParams{}, ValidationError{Field: "location", Code: CodeTooLong, Message: fmt.Sprintf("cannot exceed %d characters", maxLocationLength)}
	}

	rawDate := strings.TrimSpace(input.Date)
	if rawDate == "" {
		return EventCreateParams{}, ValidationError{Field: "date", Code: CodeMissingField, Message: "required"}
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return EventCreateParams{}, ValidationError{Field: "date", Code: CodeInvalidDate, Message: "invalid date format"}
	}
	if !date.After(now) {
		return EventCreateParams{}, ValidationError{Field: "date", Code: CodeDateNotFuture, Message: "must be in the future"}
	}

	maxParticipants := clamp(parseCount(input.MaxParticipants, defaultMaxParticipants), minParticipants, maxParticipantsCeiling)

	currentParticipants := parseCount(input.CurrentParticipants, 0)
	if currentParticipants < 0 {
		currentParticipants = 0
	}
	if currentParticipants > maxParticipants {
		return EventCreateParams{}, ValidationError{
			Field:   "currentParticipants",
			Code:    CodeParticipantsExceedCapacity,
			Message: fmt.Sprintf("cannot exceed maxParticipants (%d)", maxParticipants),
		}
	}

	return EventCreateParams{
		Title:               title,
		Description:         description,
		Location:            location,
		Coordinates:         parseCoordinates(input.Coordinates),
		Date:                date,
		MaxParticipants:     maxParticipants,
		CurrentParticipants: currentParticipants,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseCount reads a participant count that may arrive as a JSON number, a
// numeric string, or garbage. Unparsable values fall back; they are never an
// error.
func parseCount(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return int(number)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return fallback
	}
	text = strings.TrimSpace(text)
	if parsed, err := strconv.Atoi(text); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(text, 64); err == nil {
		return int(parsed)
	}
	return fallback
}

// parseCoordinates accepts a {lat, lng} object only when both members are
// present and numeric; anything else is silently omitted.
func parseCoordinates(raw json.RawMessage) *Coordinates {
	if len(raw) == 0 {
		return nil
	}
	var pair struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil
	}
	if pair.Lat == nil || pair.Lng == nil {
		return nil
	}
	return &Coordinates{Lat: *pair.Lat, Lng: *pair.Lng}
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
