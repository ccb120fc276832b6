package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
)

func TestValidateCreate_Date(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		reason domain.Reason // empty when valid
	}{
		{"full date", "2000-01-05", ""},
		{"year-less", "03-10", ""},
		{"leap year feb 29", "2020-02-29", ""},
		{"non leap feb 29", "2021-02-29", domain.ReasonInvalidCalendarDate},
		{"century non leap", "1900-02-29", domain.ReasonInvalidCalendarDate},
		{"400 year leap", "2000-02-29", ""},
		{"year-less feb 29", "02-29", ""},
		{"year-less feb 30", "02-30", domain.ReasonInvalidCalendarDate},
		{"month zero", "00-10", domain.ReasonInvalidCalendarDate},
		{"month 13", "2001-13-01", domain.ReasonInvalidCalendarDate},
		{"day zero", "04-00", domain.ReasonInvalidCalendarDate},
		{"april 31", "04-31", domain.ReasonInvalidCalendarDate},
		{"single digit month", "3-10", domain.ReasonBadFormat},
		{"slashes", "2001/01/01", domain.ReasonBadFormat},
		{"empty", "", domain.ReasonBadFormat},
		{"trailing junk", "03-10x", domain.ReasonBadFormat},
		{"padded with spaces", "  03-10 ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ValidateCreate(Input{Name: "someone", Date: tt.date})
			if tt.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, strings.TrimSpace(tt.date), fields.Date)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
			assert.True(t, verr.Has(FieldDate, tt.reason), "errors: %+v", verr.Errors)
			assert.Equal(t, domain.BirthdayFields{}, fields, "fields must be zero on failure")
		})
	}
}

func TestValidateCreate_LeapYearProperty(t *testing.T) {
	for year := 1896; year <= 2104; year++ {
		date := fmt.Sprintf("%04d-02-29", year)
		_, err := ValidateCreate(Input{Name: "n", Date: date})

		isLeap := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366
		if isLeap {
			assert.NoError(t, err, date)
		} else {
			assert.Error(t, err, date)
		}
	}
}

func TestValidateCreate_Name(t *testing.T) {
	_, err := ValidateCreate(Input{Name: "   ", Date: "01-01"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has(FieldName, domain.ReasonEmptyField))
	assert.Equal(t, []string{"Name is required."}, verr.ByField()[FieldName])

	fields, err := ValidateCreate(Input{Name: "  Mafumafu ", Date: "01-01"})
	require.NoError(t, err)
	assert.Equal(t, "Mafumafu", fields.Name)
}

func TestValidateCreate_Link(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
		ok   bool
	}{
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"twitter", "https://twitter.com/foo", "https://twitter.com/foo", true},
		{"x rewritten", "https://x.com/foo", "https://twitter.com/foo", true},
		{"x with spaces", "  https://x.com/foo ", "https://twitter.com/foo", true},
		{"x subdomain untouched", "https://www.x.com/foo", "https://www.x.com/foo", true},
		{"relative", "/foo/bar", "", false},
		{"no scheme", "twitter.com/foo", "", false},
		{"garbage", "not a url", "", false},
		{"mailto", "mailto:someone@example.com", "mailto:someone@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ValidateCreate(Input{Name: "n", Date: "01-01", Link: tt.link})
			if !tt.ok {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.Has(FieldLink, domain.ReasonBadURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields.Link)
		})
	}
}

func TestValidateCreate_CollectsAllFields(t *testing.T) {
	_, err := ValidateCreate(Input{Name: "", Date: "bad", Link: "nope"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	byField := verr.ByField()
	assert.Len(t, byField, 3)
	assert.Contains(t, byField, FieldName)
	assert.Contains(t, byField, FieldDate)
	assert.Contains(t, byField, FieldLink)
}

func TestValidateUpdate_ID(t *testing.T) {
	valid := "6f1c1bd2-3a0e-4d8b-9a43-0c6b9f3d2f10"

	id, fields, err := ValidateUpdate(Input{ID: " " + valid + " ", Name: "n", Date: "01-01"})
	require.NoError(t, err)
	assert.Equal(t, valid, id)
	assert.Equal(t, "n", fields.Name)

	for _, bad := range []string{"", "123", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		_, _, err := ValidateUpdate(Input{ID: bad, Name: "n", Date: "01-01"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, bad)
		assert.True(t, verr.Has(FieldID, domain.ReasonMissingOrInvalidID), bad)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := []Input{
		{Name: " alpha ", Date: "2000-01-05", Link: "https://x.com/alpha"},
		{Name: "Zeta", Date: " 03-10", Link: ""},
		{Name: "Ñandú", Date: "02-29", Link: "https://example.com/a?b=c"},
	}

	for _, in := range inputs {
		first, err := ValidateCreate(in)
		require.NoError(t, err)

		again, err := ValidateCreate(Input{Name: first.Name, Date: first.Date, Link: first.Link})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(ReferenceLeapYear, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 31, DaysIn(2023, time.December))
	assert.Equal(t, 30, DaysIn(2023, time.April))
}
