// Package sqlitetest provides a CoreDB backed by an in-memory SQLite database for tests.
package sqlitetest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/config"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/sqldb"
	"github.com/wansing/blog/sqldb/sqlite3"
	"go.uber.org/zap/zaptest"
)

// New returns an initialized CoreDB. The database is closed when the test ends.
func New(t testing.TB, cfg *config.Config) *core.CoreDB {

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // every connection would get its own in-memory database
	t.Cleanup(func() { sqlDB.Close() })

	sessionStore, err := sqlite3.NewSessionStore(sqlDB)
	require.NoError(t, err)

	var db = &core.CoreDB{
		Config: cfg,
		Log:    zaptest.NewLogger(t),
	}
	require.NoError(t, sqldb.Attach(db, sqlDB, sqldb.SQLite3))
	require.NoError(t, db.Init(sessionStore, ""))
	return db
}

// User inserts a user with the given password. If groups are given, the user joins them.
func User(t testing.TB, db *core.CoreDB, name, password string, groups ...string) auth.DBUser {
	u, err := db.Auth.InsertUser(name)
	require.NoError(t, err)
	require.NoError(t, db.Auth.SetPassword(u, password))
	for _, group := range groups {
		require.NoError(t, db.Auth.JoinByName(group, u))
	}
	return u
}
