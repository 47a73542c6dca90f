package tabular

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-vcard"
)

// FieldMessage is the vCard extension property carrying the greeting a
// character sends on the owner's birthday. NOTE is used as a fallback.
const FieldMessage = "X-KOYOMI-MESSAGE"

// bdayLayouts are the vCard BDAY shapes accepted, with and without a year.
// The year, when present, is discarded: only the recurring month-day is kept.
var bdayLayouts = []string{"2006-01-02", "20060102", "--01-02", "--0102", "01-02"}

// DecodeVCard reads a vCard stream into raw rows. Cards that fail to decode
// are skipped with a warning so one corrupt card does not sink the rest;
// field-level problems (missing name, unparsable BDAY) flow through as-is for
// Reconcile to reject.
func DecodeVCard(r io.Reader) ([]RawRow, error) {
	dec := vcard.NewDecoder(r)

	var rows []RawRow
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("import: skipping unreadable vcard", slog.String("error", err.Error()))
			continue
		}

		row := RawRow{
			Name:                card.PreferredValue(vcard.FieldFormattedName),
			Source:              card.PreferredValue(vcard.FieldOrganization),
			UserBirthdayMessage: card.PreferredValue(FieldMessage),
		}
		if row.UserBirthdayMessage == "" {
			row.UserBirthdayMessage = card.PreferredValue(vcard.FieldNote)
		}
		if bday := card.PreferredValue(vcard.FieldBirthday); bday != "" {
			row.Birthday = birthdayKey(bday)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// birthdayKey converts a vCard BDAY value to "MM-DD". Unparsable values are
// returned verbatim so the reconciler rejects (and logs) them.
func birthdayKey(value string) string {
	for _, layout := range bdayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return fmt.Sprintf("%02d-%02d", int(t.Month()), t.Day())
		}
	}
	return value
}
