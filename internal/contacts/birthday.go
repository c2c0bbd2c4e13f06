package contacts

import "time"

// birthdayWindow is the look-ahead for upcoming birthdays, exclusive on both
// ends: tomorrow through six days out.
const birthdayWindow = 7 * 24 * time.Hour

// UpcomingBirthdays returns the contacts whose birthday, projected into
// today's year, falls strictly after today and less than seven days ahead.
//
// A birthday that already passed this year never qualifies, even when its
// next occurrence is days away in January; the filter does not roll over
// into the next year. Input order is preserved. Feb 29 projects to Mar 1
// in non-leap years.
func UpcomingBirthdays(contacts []*Contact, today time.Time) []*Contact {
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	upcoming := make([]*Contact, 0)
	for _, contact := range contacts {
		birthday := time.Date(
			today.Year(),
			contact.BirthDate.Month(),
			contact.BirthDate.Day(),
			0, 0, 0, 0, time.UTC,
		)

		gap := birthday.Sub(todayDay)
		if gap > 0 && gap < birthdayWindow {
			upcoming = append(upcoming, contact)
		}
	}
	return upcoming
}
