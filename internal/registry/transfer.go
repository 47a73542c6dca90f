package registry

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mizutama/koyomi/internal/apperr"
	"github.com/mizutama/koyomi/internal/tabular"
)

// ImportRows reconciles raw rows and bulk-inserts the accepted subset.
// Import is best effort: a storage failure mid-batch keeps the rows already
// inserted, reports them, and surfaces the error. Rejected rows are counted
// but leave no partial-record trace.
func (s *Service) ImportRows(_ context.Context, rows []tabular.RawRow) (tabular.Report, error) {
	chars, rep := tabular.Reconcile(rows)
	if len(chars) == 0 {
		return rep, nil
	}
	inserted, err := s.store.BulkCreateCharacters(chars)
	if inserted > 0 {
		s.mutated()
	}
	if err != nil {
		rep.Rejected += rep.Accepted - inserted
		rep.Accepted = inserted
		return rep, fmt.Errorf("import: %w", err)
	}
	return rep, nil
}

// ImportReader decodes a named tabular stream (.csv or .vcf) and imports it.
func (s *Service) ImportReader(ctx context.Context, name string, r io.Reader) (tabular.Report, error) {
	var (
		rows []tabular.RawRow
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		rows, err = tabular.DecodeCSV(r)
	case ".vcf", ".vcard":
		rows, err = tabular.DecodeVCard(r)
	default:
		return tabular.Report{}, fmt.Errorf("%w: unsupported import format %q", apperr.ErrValidation, ext)
	}
	if err != nil {
		return tabular.Report{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.ImportRows(ctx, rows)
}

// ExportCSV writes every character as a CSV snapshot, identifier and image
// stripped. The output round-trips through ImportReader.
func (s *Service) ExportCSV(_ context.Context, w io.Writer) error {
	chars, err := s.store.ListCharacters()
	if err != nil {
		return err
	}
	return tabular.EncodeCSV(w, tabular.ExportRows(chars))
}
