package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, day DayOfWeek, start, end string) TimeInterval {
	t.Helper()
	interval, err := NewTimeInterval(day, start, end)
	require.NoError(t, err)
	return interval
}

func TestTimeIntervalOverlapSymmetry(t *testing.T) {
	a := mustInterval(t, Monday, "09:00", "10:00")
	b := mustInterval(t, Monday, "09:30", "09:45")

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(a))
}

func TestTimeIntervalContainment(t *testing.T) {
	outer := mustInterval(t, Monday, "09:00", "10:00")
	inner := mustInterval(t, Monday, "09:30", "09:45")
	straddleStart := mustInterval(t, Monday, "08:30", "09:15")
	straddleEnd := mustInterval(t, Monday, "09:45", "10:30")

	assert.True(t, outer.Overlaps(inner))
	assert.True(t, inner.Overlaps(outer))
	assert.True(t, outer.Overlaps(straddleStart))
	assert.True(t, outer.Overlaps(straddleEnd))
}

func TestTimeIntervalTouchingBoundariesDoNotOverlap(t *testing.T) {
	a := mustInterval(t, Monday, "09:00", "10:00")
	b := mustInterval(t, Monday, "10:00", "11:00")

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

func TestTimeIntervalDifferentDays(t *testing.T) {
	a := mustInterval(t, Monday, "09:00", "10:00")
	b := mustInterval(t, Tuesday, "09:00", "10:00")

	assert.False(t, a.Overlaps(b))
}

func TestNewTimeIntervalRejectsInvertedRange(t *testing.T) {
	_, err := NewTimeInterval(Monday, "10:00", "09:00")
	require.Error(t, err)

	_, err = NewTimeInterval(Monday, "10:00", "10:00")
	require.Error(t, err)
}

func TestNewTimeIntervalRejectsMalformedClock(t *testing.T) {
	for _, raw := range []string{"24:00", "09:60", "900", "ab:cd", ""} {
		_, err := NewTimeInterval(Monday, raw, "10:00")
		require.Error(t, err, raw)
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	_, err = ParseDay("FUNDAY")
	require.Error(t, err)
}
