package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/domain/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepository connects to the database named by TEST_DATABASE_URL, applies
// migrations, and truncates the events table. Tests are skipped when the
// variable is unset so the suite stays runnable without infrastructure.
func setupRepository(t *testing.T) *EventRepository {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, MigrateUp(databaseURL, migrationsPathFromTest()))

	_, err = pool.Exec(ctx, "TRUNCATE events")
	require.NoError(t, err)

	return NewEventRepository(pool)
}

func migrationsPathFromTest() string {
	// Tests run from this package directory.
	return "migrations"
}

func testCreateParams(title, location string, date time.Time, coords *events.Coordinates) events.EventCreateParams {
	return events.EventCreateParams{
		Title:               title,
		Description:         "description",
		Location:            location,
		Coordinates:         coords,
		Date:                date,
		MaxParticipants:     50,
		CurrentParticipants: 0,
	}
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	coords := &events.Coordinates{Lat: 51.5074, Lng: -0.1278}
	created, err := repo.Create(ctx, testCreateParams("Morning Yoga", "Hyde Park", time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC), coords))
	require.NoError(t, err)
	require.NoError(t, ids.ValidateULID(created.ID))
	require.NotNil(t, created.Coordinates)
	assert.InDelta(t, 51.5074, created.Coordinates.Lat, 1e-9)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Morning Yoga", got.Title)
	assert.True(t, got.Date.Equal(created.Date))
}

func TestEventRepository_GetMissing(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetByID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_ListFilters(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testCreateParams("A", "Hyde Park, London", time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC), nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testCreateParams("B", "Central Park, New York", time.Date(2030, 6, 16, 9, 0, 0, 0, time.UTC), nil))
	require.NoError(t, err)

	items, err := repo.List(ctx, events.Filters{Location: "london"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Title)

	day := time.Date(2030, 6, 16, 0, 0, 0, 0, time.UTC)
	items, err = repo.List(ctx, events.Filters{Date: &day})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Title)
}

func TestEventRepository_ListOrder(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	date := time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testCreateParams("Later", "London", date.Add(time.Hour), nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testCreateParams("First", "London", date, nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testCreateParams("Second", "London", date, nil))
	require.NoError(t, err)

	items, err := repo.List(ctx, events.Filters{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	// Ascending by date; ULIDs keep insertion order among equal dates.
	assert.Equal(t, "First", items[0].Title)
	assert.Equal(t, "Second", items[1].Title)
	assert.Equal(t, "Later", items[2].Title)
}
