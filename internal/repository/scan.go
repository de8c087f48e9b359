package repository

import "database/sql"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullable maps "" to SQL NULL for optional foreign keys.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
