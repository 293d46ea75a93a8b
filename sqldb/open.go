package sqldb

import (
	"database/sql"
	"fmt"

	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/core"
	"github.com/xo/dburl"
)

// Open parses a database url (see github.com/xo/dburl), opens the database and pings it.
func Open(rawurl string) (*sql.DB, Dialect, error) {

	dbURL, err := dburl.Parse(rawurl)
	if err != nil {
		return nil, "", fmt.Errorf("could not parse database url: %w", err)
	}

	dialect, err := ParseDialect(dbURL.Driver)
	if err != nil {
		return nil, "", err
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		return nil, "", fmt.Errorf("could not open sql database: %w", err)
	}

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, "", fmt.Errorf("could not ping sql database: %w", err)
	}

	return sqlDB, dialect, nil
}

// Attach creates the tables and sets the storage fields of the CoreDB.
func Attach(c *core.CoreDB, sqlDB *sql.DB, dialect Dialect) error {

	userDB, err := NewUserDB(sqlDB, dialect)
	if err != nil {
		return err
	}

	groupDB, err := NewGroupDB(sqlDB, dialect)
	if err != nil {
		return err
	}

	postDB, err := NewPostDB(sqlDB, dialect)
	if err != nil {
		return err
	}

	c.Auth = &auth.AuthDB{
		GroupDB: groupDB,
		UserDB:  userDB,
	}
	c.PostDB = postDB
	c.TagDB = NewTagDB(sqlDB)
	return nil
}
