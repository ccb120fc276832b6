// Package validation turns raw form or JSON input into normalized birthday
// fields. It has no side effects.
package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
)

// Field names used as keys in validation errors
const (
	FieldID   = "id"
	FieldName = "name"
	FieldDate = "date"
	FieldLink = "link"
)

// ReferenceLeapYear anchors year-less dates so that 02-29 is always valid.
const ReferenceLeapYear = 2000

const (
	xPrefix       = "https://x.com/"
	twitterPrefix = "https://twitter.com/"
)

// Default messages, keyed by reason. The HTTP layer may localize them.
var defaultMessages = map[domain.Reason]string{
	domain.ReasonEmptyField:          "Name is required.",
	domain.ReasonBadFormat:           "Date must be in YYYY-MM-DD or MM-DD format.",
	domain.ReasonInvalidCalendarDate: "Please enter a valid calendar date (e.g., month 1-12, day 1-31).",
	domain.ReasonBadURL:              "Please enter a valid URL.",
	domain.ReasonMissingOrInvalidID:  "Missing or invalid ID for update.",
}

var datePattern = regexp.MustCompile(`^(\d{4}-)?\d{2}-\d{2}$`)

// Input is the typed decode of a create or update submission.
type Input struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Link string `json:"link"`
}

// FromBirthday builds an Input from a stored record, for re-validation.
func FromBirthday(b domain.Birthday) Input {
	return Input{ID: b.ID, Name: b.Name, Date: b.Date, Link: b.Link}
}

// DefaultMessage returns the English message for reason.
func DefaultMessage(reason domain.Reason) string {
	return defaultMessages[reason]
}

// ValidateCreate checks a new record. On failure the returned error is a
// *domain.ValidationError and the fields are zero.
func ValidateCreate(in Input) (domain.BirthdayFields, error) {
	verr := &domain.ValidationError{}
	fields := validateFields(in, verr)
	if len(verr.Errors) > 0 {
		return domain.BirthdayFields{}, verr
	}
	return fields, nil
}

// ValidateUpdate is ValidateCreate plus a check that in.ID is a store id.
// The normalized id is returned alongside the fields.
func ValidateUpdate(in Input) (string, domain.BirthdayFields, error) {
	verr := &domain.ValidationError{}
	id := strings.TrimSpace(in.ID)
	if !ValidID(id) {
		fail(verr, FieldID, domain.ReasonMissingOrInvalidID)
	}
	fields := validateFields(in, verr)
	if len(verr.Errors) > 0 {
		return "", domain.BirthdayFields{}, verr
	}
	return id, fields, nil
}

// ValidID reports whether id has the shape of a store identifier.
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func validateFields(in Input, verr *domain.ValidationError) domain.BirthdayFields {
	out := domain.BirthdayFields{
		Name: strings.TrimSpace(in.Name),
		Date: strings.TrimSpace(in.Date),
		Link: NormalizeLink(in.Link),
	}

	if out.Name == "" {
		fail(verr, FieldName, domain.ReasonEmptyField)
	}

	if reason, ok := checkDate(out.Date); !ok {
		fail(verr, FieldDate, reason)
	}

	if out.Link != "" && !isAbsoluteURL(out.Link) {
		fail(verr, FieldLink, domain.ReasonBadURL)
	}

	return out
}

func fail(verr *domain.ValidationError, field string, reason domain.Reason) {
	verr.Add(field, reason, defaultMessages[reason])
}

// checkDate validates shape first, then the calendar.
func checkDate(value string) (domain.Reason, bool) {
	if !datePattern.MatchString(value) {
		return domain.ReasonBadFormat, false
	}

	parts := strings.Split(value, "-")
	year := ReferenceLeapYear
	if len(parts) == 3 {
		year, _ = strconv.Atoi(parts[0])
		parts = parts[1:]
	}
	month, _ := strconv.Atoi(parts[0])
	day, _ := strconv.Atoi(parts[1])

	if month < 1 || month > 12 || day < 1 || day > DaysIn(year, time.Month(month)) {
		return domain.ReasonInvalidCalendarDate, false
	}
	return "", true
}

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NormalizeLink trims the link and rewrites x.com profile links to twitter.com.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, xPrefix) {
		link = twitterPrefix + strings.TrimPrefix(link, xPrefix)
	}
	return link
}

func isAbsoluteURL(raw string) bool {
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
