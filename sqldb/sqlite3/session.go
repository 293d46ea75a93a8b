package sqlite3

import (
	"database/sql"
	"fmt"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
)

// NewSessionStore creates the sessions table if required. The cleanup goroutine of the store runs every five minutes.
func NewSessionStore(db *sql.DB) (scs.Store, error) {

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("error creating sessions table: %w", err)
		}
	}

	return sqlite3store.New(db), nil
}
