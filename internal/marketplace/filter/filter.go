// Package filter holds the pure view-narrowing functions shared by the
// home, search and profile-listings screens. They never mutate or re-sort
// the input; insertion order (creation time descending) is preserved.
package filter

import (
	"strings"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
)

// CategoryAll is the wildcard tab that keeps every listing.
const CategoryAll = "all"

// Criteria is one screen's current filter state. Zero values are no-ops:
// an empty category behaves like CategoryAll, an empty query matches
// everything, empty location/subcategory disable those filters.
type Criteria struct {
	Category    string
	Query       string
	Location    string
	Subcategory string
}

// Apply narrows listings to those matching every set criterion.
func Apply(listings []*domain.Listing, c Criteria) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if !MatchesCategory(l, c.Category) {
			continue
		}
		if !MatchesQuery(l, c.Query) {
			continue
		}
		if c.Location != "" && l.Location != c.Location {
			continue
		}
		if c.Subcategory != "" && l.Subcategory != c.Subcategory {
			continue
		}
		out = append(out, l)
	}
	return out
}

// MatchesCategory reports an exact category match, with "all" (or empty)
// as a wildcard.
func MatchesCategory(l *domain.Listing, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return string(l.Category) == category
}

// MatchesQuery does a case-insensitive substring match against title,
// location and subcategory; a hit on any one field qualifies.
func MatchesQuery(l *domain.Listing, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(l.Title), q) ||
		strings.Contains(strings.ToLower(l.Location), q) ||
		strings.Contains(strings.ToLower(l.Subcategory), q)
}
