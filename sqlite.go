package fiscalpanel

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// AuditSink is an optional SQLite database receiving one row per run plus
// a snapshot table per normalized source and the final panel. It exists
// for post-hoc auditing of a merge; the CSV file stays the only required
// artifact.
type AuditSink struct {
	db *sql.DB
}

func OpenAuditSink(path string) (*AuditSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			rows        INTEGER NOT NULL,
			columns     INTEGER NOT NULL,
			warnings    INTEGER NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit db: %w", err)
	}
	return &AuditSink{db: db}, nil
}

func (a *AuditSink) Close() error {
	return a.db.Close()
}

// RecordRun writes the run row, every normalized source frame, and the
// final panel. Snapshot tables are replaced wholesale per run; the runs
// table accumulates.
func (a *AuditSink) RecordRun(ctx context.Context, state *State) error {
	combined := state.Combined()
	if combined == nil {
		return fmt.Errorf("audit: no combined panel to record")
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, recorded_at, rows, columns, warnings)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		state.RunID(),
		state.StartedAt().UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		combined.Len(),
		len(combined.Columns()),
		state.WarningCount(),
	)
	if err != nil {
		return fmt.Errorf("audit: record run: %w", err)
	}

	for _, name := range state.SourceOrder() {
		f, _ := state.Source(name)
		if f == nil {
			continue
		}
		if err := a.snapshot(ctx, "source_"+name, f); err != nil {
			return err
		}
	}
	return a.snapshot(ctx, "panel_final", combined)
}

func (a *AuditSink) snapshot(ctx context.Context, table string, f *Frame) error {
	cols := f.Columns()

	ddl := make([]string, 0, len(cols)+2)
	ddl = append(ddl, `"country" TEXT NOT NULL`, `"year" INTEGER NOT NULL`)
	for _, c := range cols {
		ddl = append(ddl, fmt.Sprintf("%q TEXT", c))
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit: begin snapshot %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		return fmt.Errorf("audit: drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(ddl, ", "))); err != nil {
		return fmt.Errorf("audit: create %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)+2), ", ")
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %q VALUES (%s)", table, placeholders))
	if err != nil {
		return fmt.Errorf("audit: prepare insert %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(cols)+2)
	for _, r := range f.Rows() {
		args[0] = r.Key.Country
		args[1] = r.Key.Year
		for i, c := range cols {
			if v := r.Cells[c]; v.IsNull() {
				args[i+2] = nil
			} else {
				args[i+2] = v.String()
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("audit: insert %s row %s: %w", table, r.Key, err)
		}
	}

	return tx.Commit()
}
