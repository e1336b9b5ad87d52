package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/voicevault/internal/dbx"
)

type requiredColumn struct {
	table      string
	column     string
	definition string
}

// requiredColumns lists columns added after the first schema. A database
// restored from an old dump may have a goose version table that claims they
// exist while the tables lack them.
var requiredColumns = []requiredColumn{
	{table: "recordings", column: "wrapped_key", definition: "TEXT NOT NULL DEFAULT ''"},
	{table: "recordings", column: "checksum", definition: "TEXT NOT NULL DEFAULT ''"},
	{table: "share_grants", column: "checksum", definition: "TEXT NOT NULL DEFAULT ''"},
	{table: "share_grants", column: "recording_name", definition: "TEXT NOT NULL DEFAULT ''"},
	{table: "share_grants", column: "duration_seconds", definition: "INTEGER NOT NULL DEFAULT 0"},
}

// EnsureSchema adds every required column that the live tables lack.
func (m *SQLRepositoryManager) EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, rc := range requiredColumns {
		ok, err := m.hasColumn(ctx, db, rc.table, rc.column)
		if err != nil {
			return fmt.Errorf("failed to inspect %s.%s: %w", rc.table, rc.column, err)
		}
		if ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", rc.table, rc.column, rc.definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", rc.table, rc.column, err)
		}
	}
	return nil
}

func (m *SQLRepositoryManager) hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	if m.dialect == dbx.Postgres {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`,
			table, column).Scan(&n)
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
