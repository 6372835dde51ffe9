package fiscalpanel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV serializes a frame with a header row: the key columns first,
// then the frame's columns in order. Nulls serialize as empty fields.
func WriteCSV(f *Frame, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".panel-*.csv")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	cols := f.Columns()

	header := append([]string{"country", "year"}, cols...)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for _, r := range f.Rows() {
		record[0] = r.Key.Country
		record[1] = strconv.Itoa(r.Key.Year)
		for i, c := range cols {
			record[i+2] = r.Cells[c].String()
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write row %s: %w", r.Key, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	// Rename on success so a failed run never leaves a partial file at
	// the output path.
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// ExportStage writes the final panel to the configured CSV path and, when
// an audit database is configured, snapshots the run there as well.
type ExportStage struct {
	cfg Config
}

func NewExportStage(cfg Config) *ExportStage {
	return &ExportStage{cfg: cfg}
}

func (s *ExportStage) Name() string   { return "export" }
func (s *ExportStage) Required() bool { return true }

func (s *ExportStage) Execute(ctx context.Context, state *State) error {
	combined := state.Combined()
	if combined == nil {
		return fmt.Errorf("export ran before merge")
	}

	if err := WriteCSV(combined, s.cfg.OutputPath); err != nil {
		return err
	}

	if s.cfg.AuditDB == "" {
		return nil
	}
	sink, err := OpenAuditSink(s.cfg.AuditDB)
	if err != nil {
		return err
	}
	defer sink.Close()
	return sink.RecordRun(ctx, state)
}
