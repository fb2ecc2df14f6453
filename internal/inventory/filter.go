package inventory

import (
	"sort"
	"strings"

	"eventdesk/internal/models"
)

// Filter narrows an event list to one category and a free-text query. An
// empty category matches everything; the query is a case-insensitive
// substring match over title and description. Pure: the input slice is never
// modified.
func Filter(events []models.Event, category, query string) []models.Event {
	query = strings.ToLower(query)

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if category != "" && e.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Title), query) &&
			!strings.Contains(strings.ToLower(e.Description), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Categories returns the distinct non-empty categories present in the list,
// sorted, for building a filter menu.
func Categories(events []models.Event) []string {
	seen := make(map[string]struct{})
	for _, e := range events {
		if e.Category != "" {
			seen[e.Category] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
