package placement

import (
	"fmt"
	"maps"
	"strings"

	"github.com/matzehuels/labelmap/pkg/scale"
)

// Category classifies a label by the prefix of its id.
type Category int

const (
	CategoryOther Category = iota
	CategoryCity
	CategoryState
	CategoryCongress
	CategoryWiki
)

var categoryNames = map[Category]string{
	CategoryOther:    "Other",
	CategoryCity:     "City",
	CategoryState:    "State",
	CategoryCongress: "Congress",
	CategoryWiki:     "Wiki",
}

// String returns the id prefix of the category.
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory returns the category encoded in the prefix of a label id,
// such as "City" in "City-NY". Unknown prefixes map to CategoryOther.
func ParseCategory(id string) Category {
	prefix, _ := scale.SplitID(id)
	return CategoryFromName(prefix)
}

// CategoryFromName maps a category name onto its Category. Matching is case
// insensitive. Unknown names map to CategoryOther.
func CategoryFromName(name string) Category {
	for c, s := range categoryNames {
		if strings.EqualFold(s, name) {
			return c
		}
	}
	return CategoryOther
}

// Tiers assigns a priority tier to every category. Lower tiers are placed
// first. Categories missing from ByCategory get Default.
type Tiers struct {
	ByCategory map[Category]int
	Default    int
}

// DefaultTiers places cities first, wiki labels last and everything else in
// between.
func DefaultTiers() Tiers {
	return Tiers{
		ByCategory: map[Category]int{
			CategoryCity: 1,
			CategoryWiki: 3,
		},
		Default: 2,
	}
}

// Of returns the tier of c.
func (t Tiers) Of(c Category) int {
	if tier, ok := t.ByCategory[c]; ok {
		return tier
	}
	return t.Default
}

// Top returns the highest priority, that is the numerically smallest tier.
func (t Tiers) Top() int {
	top := t.Default
	for _, tier := range t.ByCategory {
		top = min(top, tier)
	}
	return top
}

// Clone returns a deep copy of t.
func (t Tiers) Clone() Tiers {
	return Tiers{ByCategory: maps.Clone(t.ByCategory), Default: t.Default}
}

// Names returns the tiers keyed by category name.
func (t Tiers) Names() map[string]int {
	out := make(map[string]int, len(t.ByCategory))
	for c, tier := range t.ByCategory {
		out[c.String()] = tier
	}
	return out
}
