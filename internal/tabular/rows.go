// Package tabular handles the flat-record boundary of the registry: decoding
// external CSV/vCard sources into raw rows, validating and normalizing rows
// into characters, and projecting characters back out as portable rows.
package tabular

import (
	"log/slog"
	"strings"

	"github.com/mizutama/koyomi/internal/datekey"
	"github.com/mizutama/koyomi/internal/models"
)

// Column names, in canonical order. Export writes them as the header row and
// import resolves incoming headers against them, so the two round-trip.
const (
	ColName                = "name"
	ColBirthday            = "birthday"
	ColSource              = "source"
	ColUserBirthdayMessage = "userBirthdayMessage"
)

// Columns is the canonical header order.
var Columns = []string{ColName, ColBirthday, ColSource, ColUserBirthdayMessage}

// RawRow is one loosely-typed record from an external tabular source.
type RawRow struct {
	Name                string `json:"name"`
	Birthday            string `json:"birthday"`
	Source              string `json:"source"`
	UserBirthdayMessage string `json:"userBirthdayMessage"`
}

// Report aggregates the outcome of a reconcile pass. Total == 0 means the
// source held no rows at all, which callers report distinctly from a non-empty
// source where every row was rejected.
type Report struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Empty reports whether the source contained no rows.
func (r Report) Empty() bool { return r.Total == 0 }

// Reconcile validates and normalizes raw rows into characters ready for bulk
// insert. Rows are independent: a bad row is skipped, logged, and does not
// block its siblings. No partial trace of rejected rows is retained.
//
// Rules per row:
//   - name, birthday, and userBirthdayMessage are required;
//   - birthday is trimmed and must match the loose M-D pattern; accepted
//     values are zero-padded to the canonical MM-DD form before storage;
//   - source defaults to empty and is trimmed;
//   - image is always empty on import.
func Reconcile(rows []RawRow) ([]models.Character, Report) {
	rep := Report{Total: len(rows)}
	out := make([]models.Character, 0, len(rows))

	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		msg := row.UserBirthdayMessage
		if name == "" || strings.TrimSpace(row.Birthday) == "" || msg == "" {
			slog.Warn("import: incomplete row skipped", slog.String("name", row.Name))
			rep.Rejected++
			continue
		}
		birthday, ok := datekey.Normalize(row.Birthday)
		if !ok {
			slog.Warn("import: malformed birthday skipped",
				slog.String("name", name),
				slog.String("birthday", row.Birthday))
			rep.Rejected++
			continue
		}
		out = append(out, models.Character{
			Name:                name,
			Birthday:            birthday,
			Source:              strings.TrimSpace(row.Source),
			Image:               "",
			UserBirthdayMessage: msg,
		})
		rep.Accepted++
	}
	return out, rep
}

// ExportRows projects characters into portable rows, stripping the identifier
// and image fields. Field order round-trips with Reconcile.
func ExportRows(chars []models.Character) []RawRow {
	rows := make([]RawRow, len(chars))
	for i, c := range chars {
		rows[i] = RawRow{
			Name:                c.Name,
			Birthday:            c.Birthday,
			Source:              c.Source,
			UserBirthdayMessage: c.UserBirthdayMessage,
		}
	}
	return rows
}
