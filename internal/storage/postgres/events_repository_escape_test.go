package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/slanup/server/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeILIKEPattern(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "normal text",
			input:    "London",
			expected: "London",
		},
		{
			name:     "percent sign",
			input:    "100% club",
			expected: `100\% club`,
		},
		{
			name:     "underscore",
			input:    "hyde_park",
			expected: `hyde\_park`,
		},
		{
			name:     "backslash",
			input:    `c:\venues`,
			expected: `c:\\venues`,
		},
		{
			name:     "multiple wildcards",
			input:    `%_hall_%_`,
			expected: `\%\_hall\_\%\_`,
		},
		{
			name:     "mixed escape characters",
			input:    `\%_hall`,
			expected: `\\\%\_hall`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeILIKEPattern(tt.input))
		})
	}
}

// Wildcard characters in a location filter must match literally, exactly as
// the memory backend's strings.Contains does.
func TestEventRepository_ListLocationFilterLiteralWildcards(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	date := time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, testCreateParams("A", "100% Club, London", date, nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testCreateParams("B", "100 Oxford Street, London", date, nil))
	require.NoError(t, err)

	items, err := repo.List(ctx, events.Filters{Location: "100%"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Title)

	items, err = repo.List(ctx, events.Filters{Location: "o_d"})
	require.NoError(t, err)
	assert.Empty(t, items)
}
