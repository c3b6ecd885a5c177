/**
 * Cross-Page Deduplicator
 *
 * Bills often repeat line items across pages (carried-forward tables, summary
 * pages). Items with near-identical names and amounts are clustered and
 * merged so they are not double counted.
 */

package extract

import (
	"math"
	"sort"
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	// DefaultNameThreshold is the minimum token-sort-ratio score (0-100)
	// for two item names to be considered the same item.
	DefaultNameThreshold = 85

	// DefaultAmountTol is the absolute currency tolerance for two amounts
	// to be considered equal.
	DefaultAmountTol = 1.0

	amountRelTol = 1e-2
)

// MergedLineItem is a LineItem with the size of the duplicate cluster it was
// merged from.
type MergedLineItem struct {
	LineItem
	Count int `json:"count"`
}

// DedupeItems clusters duplicate line items across pages and merges each
// cluster into one canonical item.
//
// Clustering is a greedy single pass in input order: the first unassigned
// item seeds a cluster, and every later unassigned item joins it when its
// normalized name scores at least nameThreshold against the seed's AND its
// amount is close to the seed's (1% relative or amountTol absolute). Members
// are compared against the seed only; there is no transitive chaining.
//
// Each input item ends up in exactly one cluster. Output order follows the
// first-seen order of cluster seeds.
func DedupeItems(items []LineItem, nameThreshold int, amountTol float64) []MergedLineItem {
	if nameThreshold <= 0 {
		nameThreshold = DefaultNameThreshold
	}
	if amountTol <= 0 {
		amountTol = DefaultAmountTol
	}

	used := make([]bool, len(items))
	merged := make([]MergedLineItem, 0, len(items))
	for i, seed := range items {
		if used[i] {
			continue
		}
		used[i] = true
		group := []LineItem{seed}
		seedName := normalizeName(seed.ItemName)
		seedAmount := amountOrZero(seed)

		for j := i + 1; j < len(items); j++ {
			if used[j] {
				continue
			}
			score := fuzzy.TokenSortRatio(seedName, normalizeName(items[j].ItemName))
			if score >= nameThreshold && amountsClose(seedAmount, amountOrZero(items[j]), amountTol) {
				group = append(group, items[j])
				used[j] = true
			}
		}
		merged = append(merged, mergeCluster(group))
	}
	return merged
}

// mergeCluster picks the longest member name as canonical, takes the median
// amount (lower of the two middles on even cluster sizes) and discards
// per-member rate/quantity, which rarely survive duplication intact.
func mergeCluster(group []LineItem) MergedLineItem {
	canonical := group[0].ItemName
	for _, g := range group[1:] {
		if len(g.ItemName) > len(canonical) {
			canonical = g.ItemName
		}
	}

	amounts := make([]float64, len(group))
	for i, g := range group {
		amounts[i] = amountOrZero(g)
	}
	sort.Float64s(amounts)
	amt := round2(amounts[(len(amounts)-1)/2])

	return MergedLineItem{
		LineItem: LineItem{ItemName: canonical, ItemAmount: &amt},
		Count:    len(group),
	}
}

func amountsClose(a, b, absTol float64) bool {
	return math.Abs(a-b) <= math.Max(amountRelTol*math.Max(math.Abs(a), math.Abs(b)), absTol)
}

func amountOrZero(it LineItem) float64 {
	if it.ItemAmount == nil {
		return 0
	}
	return *it.ItemAmount
}

// normalizeName lowercases the name, replaces every non-alphanumeric,
// non-whitespace rune with a space and collapses whitespace runs.
func normalizeName(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
