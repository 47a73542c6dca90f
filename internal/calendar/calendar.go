// Package calendar renders the character registry as an iCalendar feed so
// birthdays show up in any subscribing calendar client.
package calendar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/mizutama/koyomi/internal/models"
)

const (
	prodID    = "-//koyomi//character birthdays//EN"
	calName   = "Character birthdays"
	uidSuffix = "koyomi.local"
)

// Build renders one all-day event per character for the previous, current,
// and next year, so calendar clients that scroll across a year boundary stay
// populated without an immediate refresh. Birthdays carry no year, so every
// character appears in all three target years.
func Build(chars []models.Character, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText("X-WR-CALNAME", calName)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")

	dtStamp := ical.NewProp(ical.PropDateTimeStamp)
	dtStamp.SetDateTime(now.UTC())

	years := []int{now.Year() - 1, now.Year(), now.Year() + 1}
	loc := now.Location()

	for _, c := range chars {
		bd, err := time.Parse("01-02", c.Birthday)
		if err != nil {
			// Store invariants make this unreachable for persisted rows;
			// skip rather than sink the whole feed.
			continue
		}
		for _, y := range years {
			event := ical.NewEvent()
			event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@%s", c.ID, y, uidSuffix))
			event.Props.SetText(ical.PropSummary, c.Name+" 🎂")

			dtStart := ical.NewProp(ical.PropDateTimeStart)
			dtStart.SetDate(occurrence(y, bd.Month(), bd.Day(), loc))
			event.Props.Set(dtStart)
			event.Props.Set(dtStamp)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	// An empty VCALENDAR stub keeps clients from flagging the feed as
	// invalid when the registry is empty.
	if len(cal.Children) == 0 {
		return []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("calendar: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// occurrence places a month-day in a target year. A Feb 29 birthday lands on
// Feb 28 in non-leap years; time.Date would otherwise normalize it to Mar 1.
func occurrence(year int, month time.Month, day int, loc *time.Location) time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Month() != month {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
