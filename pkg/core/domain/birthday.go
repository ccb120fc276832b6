package domain

import (
	"strings"
	"time"
)

// Birthday represents one creator birthday entry
type Birthday struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"` // YYYY-MM-DD or MM-DD
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// BirthdayFields are the mutable parts of a Birthday
type BirthdayFields struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Link string `json:"link"`
}

// Fields returns the mutable parts of b.
func (b Birthday) Fields() BirthdayFields {
	return BirthdayFields{Name: b.Name, Date: b.Date, Link: b.Link}
}

// HasYear reports whether the date starts with a 4-digit year.
func (b Birthday) HasYear() bool {
	if len(b.Date) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if b.Date[i] < '0' || b.Date[i] > '9' {
			return false
		}
	}
	return true
}

// Month returns the month component of the date as stored (two digits).
func (b Birthday) Month() string {
	parts := strings.Split(b.Date, "-")
	if len(parts) == 3 {
		return parts[1]
	}
	return parts[0]
}

// Day returns the day component of the date as stored (two digits).
func (b Birthday) Day() string {
	parts := strings.Split(b.Date, "-")
	switch len(parts) {
	case 3:
		return parts[2]
	case 2:
		return parts[1]
	}
	return ""
}
