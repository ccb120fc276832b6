// Package vcard exchanges birthdays with address books as vCard 4.0.
package vcard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
)

// Encode writes one card per birthday.
func Encode(w io.Writer, birthdays []domain.Birthday) error {
	enc := vcard.NewEncoder(w)
	for _, b := range birthdays {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldFormattedName, b.Name)
		card.SetValue(vcard.FieldBirthday, ToBDAY(b.Date))
		if b.ID != "" {
			card.SetValue(vcard.FieldUID, "urn:uuid:"+b.ID)
		}
		if b.Link != "" {
			card.SetValue(vcard.FieldURL, b.Link)
		}
		vcard.ToV4(card)

		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("encode card %q: %w", b.Name, err)
		}
	}
	return nil
}

// Decode reads every card from r into validator input. Dates are converted
// but not checked; run the result through validation.ValidateCreate.
func Decode(r io.Reader) ([]validation.Input, error) {
	dec := vcard.NewDecoder(r)
	var inputs []validation.Input
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return inputs, fmt.Errorf("decode card %d: %w", len(inputs)+1, err)
		}

		// Name Strategy: FN > N
		name := card.Value(vcard.FieldFormattedName)
		if name == "" {
			if n := card.Name(); n != nil {
				name = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
			}
		}

		inputs = append(inputs, validation.Input{
			Name: name,
			Date: FromBDAY(card.Value(vcard.FieldBirthday)),
			Link: card.Value(vcard.FieldURL),
		})
	}
	return inputs, nil
}

// ToBDAY converts a stored date to the vCard basic format:
// YYYY-MM-DD becomes YYYYMMDD and MM-DD becomes --MMDD.
func ToBDAY(date string) string {
	compact := strings.ReplaceAll(date, "-", "")
	if len(compact) == 4 {
		return "--" + compact
	}
	return compact
}

// FromBDAY converts the vCard forms YYYY-MM-DD, YYYYMMDD, --MM-DD and --MMDD
// (with an optional time part) to a stored date. Anything else is returned
// unchanged for the validator to reject.
func FromBDAY(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, 'T'); i > 0 {
		value = value[:i]
	}

	if rest, ok := strings.CutPrefix(value, "--"); ok {
		rest = strings.ReplaceAll(rest, "-", "")
		if len(rest) == 4 && isDigits(rest) {
			return rest[:2] + "-" + rest[2:]
		}
		return value
	}

	compact := strings.ReplaceAll(value, "-", "")
	if len(compact) == 8 && isDigits(compact) {
		return compact[:4] + "-" + compact[4:6] + "-" + compact[6:]
	}
	return value
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
