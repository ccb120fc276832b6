// Package query derives the visible page of birthdays from the full list:
// filter, then sort, then paginate. Everything here is pure and re-run in
// full on every change of filter, sort or page.
package query

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"golang.org/x/text/language"
)

// TriState selects all records, only those with a property, or only those without.
type TriState string

const (
	TriAll TriState = "all"
	TriYes TriState = "yes"
	TriNo  TriState = "no"
)

// ParseTriState maps free text onto a TriState; anything unknown means all.
func ParseTriState(s string) TriState {
	switch TriState(strings.ToLower(strings.TrimSpace(s))) {
	case TriYes:
		return TriYes
	case TriNo:
		return TriNo
	}
	return TriAll
}

// LetterOther selects names that do not start with an ASCII letter.
const LetterOther = "#"

// Filter is the set of predicates a user has configured. Zero values are inactive.
type Filter struct {
	Search  string
	Letter  string // "a".."z", "#" (or "other"), empty for all
	Month   string // "01".."12"
	Day     string // "1".."31", zero-padded before comparison
	HasYear TriState
	HasLink TriState
}

// SortField represents a field that can be sorted on.
type SortField string

const (
	SortByName SortField = "name"
	SortByDate SortField = "date"
)

// SortDirection represents sort order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort holds the sorting preference.
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort returns name ascending, the dashboard's initial order.
func DefaultSort() Sort {
	return Sort{Field: SortByName, Direction: SortAsc}
}

// PageSizes are the rows-per-page choices offered to the user.
var PageSizes = []int{10, 20, 30, 40, 50}

// DefaultPageSize is used when no or an unknown size is requested.
const DefaultPageSize = 10

// Page is a 1-based page number and its size.
type Page struct {
	Number int
	Size   int
}

// AllowedPageSize reports whether size is one of PageSizes.
func AllowedPageSize(size int) bool {
	return slices.Contains(PageSizes, size)
}

// Params bundles everything Run needs besides the records.
type Params struct {
	Filter Filter
	Sort   Sort
	Page   Page
	// Locale drives name collation; English when unset.
	Locale language.Tag
}

// Result is the visible slice plus the post-filter match count.
type Result struct {
	Items []domain.Birthday
	Total int
}

// Pages returns how many pages of size hold total matches.
func (r Result) Pages(size int) int {
	if size < 1 {
		return 0
	}
	return pageCount(r.Total, size)
}

// pageCount divides without the total+size-1 form, which overflows for huge sizes.
func pageCount(total, size int) int {
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Run filters, sorts and paginates records. The input slice is never modified.
func Run(records []domain.Birthday, p Params) Result {
	matched := Apply(records, p.Filter)
	SortRecords(matched, p.Sort, NewNameCollator(p.Locale))
	return Result{
		Items: Paginate(matched, p.Page),
		Total: len(matched),
	}
}

// Apply returns a new slice with the records that satisfy every active predicate.
func Apply(records []domain.Birthday, f Filter) []domain.Birthday {
	preds := f.predicates()
	out := make([]domain.Birthday, 0, len(records))
	for _, r := range records {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r satisfies every active predicate of f.
func (f Filter) Matches(r domain.Birthday) bool {
	return matchesAll(r, f.predicates())
}

type predicate func(domain.Birthday) bool

func matchesAll(r domain.Birthday, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// predicates lists the active filters in their fixed order.
func (f Filter) predicates() []predicate {
	var preds []predicate

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(r domain.Birthday) bool {
			return strings.Contains(strings.ToLower(r.Name), needle)
		})
	}

	if letter := strings.ToLower(strings.TrimSpace(f.Letter)); letter != "" && letter != string(TriAll) {
		if letter == LetterOther || letter == "other" {
			preds = append(preds, func(r domain.Birthday) bool {
				return !startsWithASCIILetter(r.Name)
			})
		} else {
			preds = append(preds, func(r domain.Birthday) bool {
				return firstRuneLower(r.Name) == letter
			})
		}
	}

	if month := normalizeNumber(f.Month); month != "" {
		preds = append(preds, func(r domain.Birthday) bool {
			return r.Month() == month
		})
	}

	if day := normalizeNumber(f.Day); day != "" {
		preds = append(preds, func(r domain.Birthday) bool {
			return r.Day() == day
		})
	}

	switch f.HasYear {
	case TriYes:
		preds = append(preds, func(r domain.Birthday) bool { return r.HasYear() })
	case TriNo:
		preds = append(preds, func(r domain.Birthday) bool { return !r.HasYear() })
	}

	switch f.HasLink {
	case TriYes:
		preds = append(preds, func(r domain.Birthday) bool { return strings.TrimSpace(r.Link) != "" })
	case TriNo:
		preds = append(preds, func(r domain.Birthday) bool { return strings.TrimSpace(r.Link) == "" })
	}

	return preds
}

// SortRecords sorts in place. Equal keys keep their relative order in both directions.
func SortRecords(records []domain.Birthday, s Sort, names NameCollator) {
	var cmp func(a, b domain.Birthday) int
	switch s.Field {
	case SortByDate:
		cmp = func(a, b domain.Birthday) int { return strings.Compare(a.Date, b.Date) }
	default:
		c := names.new()
		cmp = func(a, b domain.Birthday) int { return c.CompareString(a.Name, b.Name) }
	}

	if s.Direction == SortDesc {
		asc := cmp
		cmp = func(a, b domain.Birthday) int { return asc(b, a) }
	}
	slices.SortStableFunc(records, cmp)
}

// Paginate returns the 1-based page of records. Pages past the end are empty.
func Paginate(records []domain.Birthday, p Page) []domain.Birthday {
	number, size := p.Number, p.Size
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	// Compare in page units so huge page numbers cannot overflow the offset.
	if number > pageCount(len(records), size) {
		return []domain.Birthday{}
	}
	start := (number - 1) * size
	end := min(start+size, len(records))
	return records[start:end]
}

func startsWithASCIILetter(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func firstRuneLower(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return ""
	}
	return string(unicode.ToLower(r))
}

// normalizeNumber zero-pads a 1-2 digit value; "all" and empty mean inactive.
func normalizeNumber(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == string(TriAll) {
		return ""
	}
	if len(v) == 1 {
		return "0" + v
	}
	return v
}
