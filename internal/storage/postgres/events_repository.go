package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/domain/ids"
)

var _ events.Repository = (*EventRepository)(nil)

// EventRepository is the durable backend. Every operation is a single
// statement; concurrency control is delegated to postgres.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Backend() string {
	return "postgres"
}

type eventRow struct {
	ULID                string
	Title               string
	Description         string
	Location            string
	Lat                 *float64
	Lng                 *float64
	Date                pgtype.Timestamptz
	MaxParticipants     int
	CurrentParticipants int
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}

const eventColumns = `ulid, title, description, location, lat, lng, date,
       max_participants, current_participants, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, params events.EventCreateParams) (*events.Event, error) {
	id, err := ids.NewULID()
	if err != nil {
		return nil, &events.StorageError{Op: "create event", Err: err}
	}

	var lat, lng *float64
	if params.Coordinates != nil {
		lat = &params.Coordinates.Lat
		lng = &params.Coordinates.Lng
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO events (ulid, title, description, location, lat, lng, date,
                    max_participants, current_participants)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+eventColumns,
		id,
		params.Title,
		params.Description,
		params.Location,
		lat,
		lng,
		params.Date,
		params.MaxParticipants,
		params.CurrentParticipants,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, &events.StorageError{Op: "create event", Err: err}
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters) ([]events.Event, error) {
	var windowStart *time.Time
	if filters.Date != nil {
		value := *filters.Date
		windowStart = &value
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE ($1 = '' OR location ILIKE '%' || $1 || '%' ESCAPE '\')
   AND ($2::timestamptz IS NULL OR
        (date >= $2::timestamptz AND date < $2::timestamptz + interval '1 day'))
 ORDER BY date ASC, ulid ASC
`,
		escapeILIKEPattern(strings.TrimSpace(filters.Location)),
		windowStart,
	)
	if err != nil {
		return nil, &events.StorageError{Op: "list events", Err: err}
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, &events.StorageError{Op: "scan events", Err: err}
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, &events.StorageError{Op: "iterate events", Err: err}
	}
	return items, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE ulid = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, &events.StorageError{Op: "get event", Err: err}
	}
	return event, nil
}

// escapeILIKEPattern neutralizes LIKE wildcards in user input so a location
// filter matches as a literal substring, same as the memory backend.
var ilikeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeILIKEPattern(value string) string {
	return ilikeEscaper.Replace(value)
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var r eventRow
	if err := row.Scan(
		&r.ULID,
		&r.Title,
		&r.Description,
		&r.Location,
		&r.Lat,
		&r.Lng,
		&r.Date,
		&r.MaxParticipants,
		&r.CurrentParticipants,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	event := events.Event{
		ID:                  r.ULID,
		Title:               r.Title,
		Description:         r.Description,
		Location:            r.Location,
		MaxParticipants:     r.MaxParticipants,
		CurrentParticipants: r.CurrentParticipants,
	}
	if r.Lat != nil && r.Lng != nil {
		event.Coordinates = &events.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
	}
	if r.Date.Valid {
		event.Date = r.Date.Time
	}
	if r.CreatedAt.Valid {
		event.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		event.UpdatedAt = r.UpdatedAt.Time
	}
	return &event, nil
}
