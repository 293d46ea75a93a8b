// Package sqldb implements the storage interfaces of the auth and core packages on top of database/sql.
package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Dialect is the name of a database/sql driver. SQLite3 and MySQL are supported.
type Dialect string

const (
	MySQL   Dialect = "mysql"
	SQLite3 Dialect = "sqlite3"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case MySQL, SQLite3:
		return Dialect(driver), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// serial returns the column definition of an auto-incrementing primary key.
func (d Dialect) serial() string {
	if d == MySQL {
		return "INTEGER PRIMARY KEY AUTO_INCREMENT"
	}
	return "INTEGER PRIMARY KEY"
}

// createTables executes each statement on its own, because the mysql driver rejects multiple statements by default.
// The placeholder {{serial}} is replaced by the primary key definition of the dialect.
func createTables(db *sql.DB, dialect Dialect, stmts ...string) error {
	for _, stmt := range stmts {
		stmt = strings.ReplaceAll(stmt, "{{serial}}", dialect.serial())
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating table: %w", err)
		}
	}
	return nil
}

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(fmt.Sprintf("error preparing %q: %v", query, err))
	}
	return stmt
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
