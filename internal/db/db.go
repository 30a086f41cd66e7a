// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const customersSchema = `
	CREATE TABLE IF NOT EXISTS customers (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL UNIQUE,
		info       TEXT NOT NULL,
		created_at TIMESTAMP
	)
`

// Open connects to the sqlite file at path, creating it if needed.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("✅ Connected to database")
	return conn, nil
}

// EnsureSchema creates the customers table if it does not exist yet.
func EnsureSchema(conn *sql.DB) error {
	_, err := conn.Exec(customersSchema)
	return err
}

// EnsureCreatedAtColumn adds created_at to customer tables created before the
// column existed. Existing rows are left untouched (the column stays NULL for
// them), and running it against an already-migrated store is a no-op.
func EnsureCreatedAtColumn(conn *sql.DB) error {
	has, err := hasColumn(conn, "customers", "created_at")
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	if _, err := conn.Exec(`ALTER TABLE customers ADD COLUMN created_at TIMESTAMP`); err != nil {
		return err
	}
	log.Info().Msg("migrated customers table: added created_at column")
	return nil
}

func hasColumn(conn *sql.DB, table, column string) (bool, error) {
	rows, err := conn.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			found = true
		}
	}
	return found, rows.Err()
}
