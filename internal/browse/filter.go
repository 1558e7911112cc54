// Package browse holds the pure list transforms behind the opportunity
// screens: search, category/location narrowing, and the option lists the
// filter dropdowns offer.
package browse

import (
	"sort"
	"strings"

	"github.com/gophora/portal/internal/models"
)

// TypeAll is the provider table's "no type filter" sentinel.
const TypeAll = "all"

func matchesQuery(op models.Opportunity, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(op.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(op.Tags, ", ")), q)
}

// FilterSeeker narrows the browse list. Query matches case-insensitively
// against title and tags; category and location narrow by exact match and
// are skipped when empty.
func FilterSeeker(ops []models.Opportunity, query, category, location string) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(ops))
	for _, op := range ops {
		if category != "" && op.Type != category {
			continue
		}
		if location != "" && op.Location != location {
			continue
		}
		if !matchesQuery(op, query) {
			continue
		}
		out = append(out, op)
	}
	return out
}

// LocationOptions lists the distinct locations available for a category,
// sorted. The options derive from the category-filtered set, not the full
// list: picking a category first constrains which locations make sense.
// With no category selected there is nothing to offer yet.
func LocationOptions(ops []models.Opportunity, category string) []string {
	if category == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, op := range ops {
		if op.Type != category || op.Location == "" {
			continue
		}
		if !seen[op.Location] {
			seen[op.Location] = true
			out = append(out, op.Location)
		}
	}
	sort.Strings(out)
	return out
}

// FilterProvider narrows the provider's management table. Query matches
// title or the comma-joined tag string; typeFilter narrows by exact match
// unless it is the "all" sentinel.
func FilterProvider(ops []models.Opportunity, query, typeFilter string) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(ops))
	for _, op := range ops {
		if typeFilter != "" && typeFilter != TypeAll && op.Type != typeFilter {
			continue
		}
		if !matchesQuery(op, query) {
			continue
		}
		out = append(out, op)
	}
	return out
}
