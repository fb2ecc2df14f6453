// Package dashboard computes the admin view's aggregate statistics from a
// fetched event list. Pure functions, no I/O.
package dashboard

import (
	"time"

	"eventdesk/internal/models"
)

// Stats is what the admin dashboard shows.
type Stats struct {
	UpcomingEvents int     `json:"upcomingEvents"`
	TotalAttendees int     `json:"totalAttendees"`
	Categories     int     `json:"categories"`
	SoldOutEvents  int     `json:"soldOutEvents"`
	GrossRevenue   float64 `json:"grossRevenue"`
}

// Compute aggregates over the event list. Attendees are tickets sold; revenue
// is tickets sold times current price per event.
func Compute(events []models.Event, now time.Time) Stats {
	var stats Stats
	categories := make(map[string]struct{})

	for _, e := range events {
		if e.StartAt.After(now) {
			stats.UpcomingEvents++
		}
		if e.SoldOut() {
			stats.SoldOutEvents++
		}
		if e.Category != "" {
			categories[e.Category] = struct{}{}
		}
		stats.TotalAttendees += e.TicketsSold
		stats.GrossRevenue += float64(e.TicketsSold) * e.TicketPrice
	}

	stats.Categories = len(categories)
	return stats
}
