package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DecodeCSV reads a header-first CSV stream into raw rows. Header names are
// matched case-insensitively after trimming; unknown columns are ignored and
// missing columns yield empty fields, so partially filled exports from other
// tools still parse. Row-level validation is Reconcile's job, not the codec's.
func DecodeCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	field := func(record []string, col string) string {
		i, ok := idx[strings.ToLower(col)]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: read csv row: %w", err)
		}
		rows = append(rows, RawRow{
			Name:                field(record, ColName),
			Birthday:            field(record, ColBirthday),
			Source:              field(record, ColSource),
			UserBirthdayMessage: field(record, ColUserBirthdayMessage),
		})
	}
	return rows, nil
}

// EncodeCSV writes rows with the canonical header. The output feeds straight
// back into DecodeCSV.
func EncodeCSV(w io.Writer, rows []RawRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("tabular: write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Name, row.Birthday, row.Source, row.UserBirthdayMessage}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("tabular: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("tabular: flush csv: %w", err)
	}
	return nil
}
