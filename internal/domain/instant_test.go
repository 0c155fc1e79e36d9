package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		toronto = time.FixedZone("EST", -5*3600)
	}

	tests := []struct {
		name     string
		input    Instant
		loc      *time.Location
		expected string
	}{
		{
			name:     "long locale form",
			input:    RawInstant("Monday, October 6, 2025"),
			expected: "2025-10-06",
		},
		{
			name:     "long locale form two digit day",
			input:    RawInstant("Friday, December 19, 2025"),
			expected: "2025-12-19",
		},
		{
			name:     "iso date",
			input:    RawInstant("2025-10-07"),
			expected: "2025-10-07",
		},
		{
			name:     "rfc3339 moved to location",
			input:    RawInstant("2025-10-07T02:30:00Z"),
			loc:      toronto,
			expected: "2025-10-06",
		},
		{
			name:     "local datetime without zone",
			input:    RawInstant("2025-10-07T15:00"),
			expected: "2025-10-07",
		},
		{
			name:     "month name without weekday",
			input:    RawInstant("October 6, 2025"),
			expected: "2025-10-06",
		},
		{
			name:     "slash form",
			input:    RawInstant("2025/10/06"),
			expected: "2025-10-06",
		},
		{
			name:     "native timestamp",
			input:    NativeInstant(time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)),
			expected: "2025-10-07",
		},
		{
			name:     "native timestamp in location",
			input:    NativeInstant(time.Date(2025, 10, 7, 1, 0, 0, 0, time.UTC)),
			loc:      toronto,
			expected: "2025-10-06",
		},
		{
			name:     "unknown form returned verbatim",
			input:    RawInstant("next tuesday"),
			expected: "next tuesday",
		},
		{
			name:     "unknown month in long form returned verbatim",
			input:    RawInstant("Monday, Octember 6, 2025"),
			expected: "Monday, Octember 6, 2025",
		},
		{
			name:     "empty",
			input:    RawInstant(""),
			expected: "",
		},
		{
			name:     "zero value",
			input:    Instant{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDate(tt.input, tt.loc))
		})
	}
}

func TestNormalizeDate_LongFormAgreesWithGenericParsing(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 366; d += 7 {
		day := start.AddDate(0, 0, d)
		long := day.Format("Monday, January 2, 2006")
		generic := day.Format(DateFormat)

		assert.Equal(t, generic, NormalizeDate(RawInstant(long), time.UTC), long)
		assert.Equal(t, generic, NormalizeDate(RawInstant(day.Format(time.RFC3339)), time.UTC))
	}
}

func TestFormatTimeKey(t *testing.T) {
	ts := time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "15:00", FormatTimeKey(ts, nil, ""))
	assert.Equal(t, "3:00 PM", FormatTimeKey(ts, time.UTC, "3:04 PM"))
}

func TestInstant_IsZero(t *testing.T) {
	assert.True(t, Instant{}.IsZero())
	assert.True(t, RawInstant("  ").IsZero())
	assert.True(t, NativeInstant(time.Time{}).IsZero())
	assert.False(t, RawInstant("2025-10-07").IsZero())
}
