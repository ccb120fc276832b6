// Package calendar renders birthdays as an iCalendar feed that calendar
// apps can subscribe to.
package calendar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
)

// iCal Properties
const (
	ProdID   = "-//Birthday Admin//Calendar//EN"
	CalName  = "Birthdays"
	UIDHost  = "birthday-admin"
	Version  = "2.0"
	Scale    = "GREGORIAN"
	Method   = "PUBLISH"
	Yearly   = "FREQ=YEARLY"
	MimeType = "text/calendar; charset=utf-8"

	propUID      = "UID"
	propSummary  = "SUMMARY"
	propDTStart  = "DTSTART"
	propDTStamp  = "DTSTAMP"
	propRRule    = "RRULE"
	propURL      = "URL"
	propVersion  = "VERSION"
	propProdID   = "PRODID"
	propCalName  = "X-WR-CALNAME"
	propCalScale = "CALSCALE"
	propMethod   = "METHOD"
	propRefresh  = "REFRESH-INTERVAL"
)

// RefreshInterval is suggested to subscribers.
const RefreshInterval = 12 * time.Hour

// emptyCalendar is served when there are no events; the encoder rejects a
// VCALENDAR without children.
const emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:" + Version + "\r\nPRODID:" + ProdID + "\r\nEND:VCALENDAR\r\n"

// Build returns one yearly all-day event per birthday. Records whose date
// cannot be read are skipped.
func Build(birthdays []domain.Birthday, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(propVersion, Version)
	cal.Props.SetText(propProdID, ProdID)
	cal.Props.SetText(propCalName, CalName)
	cal.Props.SetText(propCalScale, Scale)
	cal.Props.SetText(propMethod, Method)

	refreshProp := ical.NewProp(propRefresh)
	refreshProp.SetDuration(RefreshInterval)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(propDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, b := range birthdays {
		start, ok := StartDate(b)
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(propUID, fmt.Sprintf("%s@%s", b.ID, UIDHost))
		event.Props.SetText(propSummary, b.Name)
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(propDTStart)
		dtStartProp.SetDate(start)
		event.Props.Set(dtStartProp)

		// Raw values: SetText would add VALUE=TEXT to RECUR and URI properties.
		rrule := ical.NewProp(propRRule)
		rrule.Value = Yearly
		event.Props.Set(rrule)

		if b.Link != "" {
			link := ical.NewProp(propURL)
			link.Value = b.Link
			event.Props.Set(link)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(emptyCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// StartDate is the first occurrence of a birthday: the birth date itself,
// or the date in the reference leap year when no year is recorded.
func StartDate(b domain.Birthday) (time.Time, bool) {
	layout, value := "2006-01-02", b.Date
	if !b.HasYear() {
		value = fmt.Sprintf("%04d-%s", validation.ReferenceLeapYear, b.Date)
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
