// internal/rules/miner.go
package rules

import (
	"dinero/internal/domain"
)

// DefaultMinSupport is the default minimum group size for a mined rule.
const DefaultMinSupport = 3

// Mine derives a rule table from historical records by grouping them on
// (description, category, subcategory) and keeping groups of at least
// minSupport records. When a description has several qualifying groups with
// different categories, the largest group wins; equal counts are broken by
// whichever group appeared first in the input, so output is stable across
// runs over the same history.
//
// Records without a category never produce a rule: an empty category would
// only re-assign emptiness.
func Mine(history []domain.Transaction, minSupport int) Table {
	if minSupport <= 0 {
		minSupport = DefaultMinSupport
	}

	type group struct {
		category    string
		subcategory string
		count       int
		firstSeen   int
	}
	groups := make(map[string]*group) // (desc, cat, subcat) -> group
	byDescription := make(map[string][]*group)

	for i, tr := range history {
		if tr.Category == "" {
			continue
		}
		key := tr.Description + "\x1f" + tr.Category + "\x1f" + tr.Subcategory
		g, ok := groups[key]
		if !ok {
			g = &group{
				category:    tr.Category,
				subcategory: tr.Subcategory,
				firstSeen:   i,
			}
			groups[key] = g
			byDescription[tr.Description] = append(byDescription[tr.Description], g)
		}
		g.count++
	}

	table := Table{}
	for description, candidates := range byDescription {
		var best *group
		for _, g := range candidates {
			if g.count < minSupport {
				continue
			}
			if best == nil || g.count > best.count ||
				(g.count == best.count && g.firstSeen < best.firstSeen) {
				best = g
			}
		}
		if best != nil {
			table[description] = [2]string{best.category, best.subcategory}
		}
	}
	return table
}
