package contacts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// birthDate builds a birth date years in the past with the given month/day
// offset from today.
func birthDate(today time.Time, dayOffset int) time.Time {
	target := today.AddDate(0, 0, dayOffset)
	return time.Date(1990, target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
}

func namedContact(name string, birth time.Time) *Contact {
	return &Contact{
		ID:        name,
		FirstName: name,
		BirthDate: birth,
	}
}

func TestUpcomingBirthdays_Window(t *testing.T) {
	// Mid-June avoids month and year boundaries in the offset arithmetic.
	today := time.Date(2026, time.June, 15, 10, 30, 0, 0, time.UTC)

	contacts := []*Contact{
		namedContact("tomorrow", birthDate(today, 1)),
		namedContact("in_three_days", birthDate(today, 3)),
		namedContact("in_five_days", birthDate(today, 5)),
		namedContact("today", birthDate(today, 0)),
		namedContact("yesterday", birthDate(today, -1)),
		namedContact("in_seven_days", birthDate(today, 7)),
	}

	upcoming := UpcomingBirthdays(contacts, today)

	require.Len(t, upcoming, 3)
	assert.Equal(t, "tomorrow", upcoming[0].FirstName)
	assert.Equal(t, "in_three_days", upcoming[1].FirstName)
	assert.Equal(t, "in_five_days", upcoming[2].FirstName)
}

func TestUpcomingBirthdays_SixDaysOutIsLastDayIn(t *testing.T) {
	today := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	upcoming := UpcomingBirthdays([]*Contact{
		namedContact("in_six_days", birthDate(today, 6)),
	}, today)

	require.Len(t, upcoming, 1)
}

func TestUpcomingBirthdays_NoYearRollover(t *testing.T) {
	// Late December: a birthday in early January is days away on the
	// calendar, but its occurrence in the CURRENT year already passed,
	// so it does not qualify.
	today := time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC)

	upcoming := UpcomingBirthdays([]*Contact{
		namedContact("january_second", time.Date(1990, time.January, 2, 0, 0, 0, 0, time.UTC)),
		namedContact("december_31", time.Date(1990, time.December, 31, 0, 0, 0, 0, time.UTC)),
	}, today)

	require.Len(t, upcoming, 1)
	assert.Equal(t, "december_31", upcoming[0].FirstName)
}

func TestUpcomingBirthdays_PreservesInputOrder(t *testing.T) {
	today := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	contacts := []*Contact{
		namedContact("later_in_window", birthDate(today, 5)),
		namedContact("earlier_in_window", birthDate(today, 2)),
	}

	upcoming := UpcomingBirthdays(contacts, today)

	require.Len(t, upcoming, 2)
	// Not re-sorted by proximity: the input order is the output order.
	assert.Equal(t, "later_in_window", upcoming[0].FirstName)
	assert.Equal(t, "earlier_in_window", upcoming[1].FirstName)
}

func TestUpcomingBirthdays_Empty(t *testing.T) {
	today := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	upcoming := UpcomingBirthdays(nil, today)

	assert.NotNil(t, upcoming)
	assert.Empty(t, upcoming)
}
