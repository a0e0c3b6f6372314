package index

import "github.com/kailas-cloud/bookrec/internal/domain/rating"

// Default density thresholds.
const (
	DefaultMinUserRatings  = 100
	DefaultMinTitleRatings = 20
)

// Thresholds are the density filter cut-offs (inclusive).
type Thresholds struct {
	MinUserRatings  int
	MinTitleRatings int
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{MinUserRatings: DefaultMinUserRatings, MinTitleRatings: DefaultMinTitleRatings}
}

// FilterActiveUsers keeps events of users with at least minRatings events.
// Input order is preserved.
func FilterActiveUsers(events []rating.Event, minRatings int) []rating.Event {
	counts := make(map[string]int)
	for i := range events {
		counts[events[i].UserID()]++
	}
	return keep(events, func(e *rating.Event) bool { return counts[e.UserID()] >= minRatings })
}

// FilterFrequentTitles keeps events of titles with at least minRatings events.
// Counts are taken over the given events only, so run it after FilterActiveUsers.
func FilterFrequentTitles(events []rating.Event, minRatings int) []rating.Event {
	counts := make(map[string]int)
	for i := range events {
		counts[events[i].Title()]++
	}
	return keep(events, func(e *rating.Event) bool { return counts[e.Title()] >= minRatings })
}

func keep(events []rating.Event, pred func(*rating.Event) bool) []rating.Event {
	out := make([]rating.Event, 0, len(events))
	for i := range events {
		if pred(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}
