package query

import (
	"slices"

	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameCollator compares names case-insensitively with diacritics only
// breaking ties between otherwise equal base letters (secondary strength).
// A collate.Collator keeps internal buffers, so a fresh one is built per use.
type NameCollator struct {
	tag language.Tag
}

// NewNameCollator returns a collator for the given locale.
func NewNameCollator(tag language.Tag) NameCollator {
	return NameCollator{tag: tag}
}

// Compare returns -1, 0 or 1.
func (n NameCollator) Compare(a, b string) int {
	return n.new().CompareString(a, b)
}

// SortByName orders records by collated name. Ties keep their input order.
func (n NameCollator) SortByName(records []domain.Birthday) {
	c := n.new()
	slices.SortStableFunc(records, func(a, b domain.Birthday) int {
		return c.CompareString(a.Name, b.Name)
	})
}

func (n NameCollator) new() *collate.Collator {
	tag := n.tag
	if tag == language.Und {
		tag = language.English
	}
	return collate.New(tag, collate.IgnoreCase)
}
