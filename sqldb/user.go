package sqldb

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/wansing/blog/auth"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyUserName = errors.New("user name can't be empty")

// normalizeName makes user names case-insensitive.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type user struct {
	id   int
	name string
}

func (u *user) ID() int {
	return u.id
}

func (u *user) Name() string {
	return u.name
}

// UserDB stores users in the table usr. An empty password hash means that the user can't log in.
type UserDB struct {
	db    *sql.DB
	stmts struct {
		byID, byName, list   *sql.Stmt
		insert, remove       *sql.Stmt
		hashByID, hashByName *sql.Stmt
		setHash              *sql.Stmt
	}
}

func NewUserDB(db *sql.DB, dialect Dialect) (*UserDB, error) {

	err := createTables(db, dialect,
		`CREATE TABLE IF NOT EXISTS usr (
			id {{serial}},
			name varchar(128) NOT NULL,
			password varchar(64) NOT NULL DEFAULT '',
			UNIQUE(name)
		)`)
	if err != nil {
		return nil, err
	}

	var u = &UserDB{db: db}
	u.stmts.byID = mustPrepare(db, "SELECT id, name FROM usr WHERE id = ?")
	u.stmts.byName = mustPrepare(db, "SELECT id, name FROM usr WHERE name = ?")
	u.stmts.list = mustPrepare(db, "SELECT id, name FROM usr ORDER BY name LIMIT ? OFFSET ?")
	u.stmts.insert = mustPrepare(db, "INSERT INTO usr (name) VALUES (?)")
	u.stmts.remove = mustPrepare(db, "DELETE FROM usr WHERE id = ?")
	u.stmts.hashByID = mustPrepare(db, "SELECT password FROM usr WHERE id = ?")
	u.stmts.hashByName = mustPrepare(db, "SELECT id, name, password FROM usr WHERE name = ?")
	u.stmts.setHash = mustPrepare(db, "UPDATE usr SET password = ? WHERE id = ?")
	return u, nil
}

// verify compares a bcrypt hash with a password. It returns auth.ErrAuth if they don't match.
func verify(hash, password string) error {
	if hash == "" {
		return auth.ErrAuth
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return auth.ErrAuth
	}
	return err
}

func (db *UserDB) scanOne(row *sql.Row) (auth.DBUser, error) {
	var u = &user{}
	if err := row.Scan(&u.id, &u.name); err != nil {
		return nil, err
	}
	return u, nil
}

func (db *UserDB) ChangePassword(u auth.DBUser, old, new string) error {
	var hash string
	if err := db.stmts.hashByID.QueryRow(u.ID()).Scan(&hash); err != nil {
		return err
	}
	if err := verify(hash, old); err != nil {
		return err
	}
	return db.SetPassword(u, new)
}

func (db *UserDB) Delete(u auth.DBUser) error {
	_, err := db.stmts.remove.Exec(u.ID())
	return err
}

// GetUser returns sql.ErrNoRows if the user does not exist.
func (db *UserDB) GetUser(id int) (auth.DBUser, error) {
	return db.scanOne(db.stmts.byID.QueryRow(id))
}

func (db *UserDB) GetUserByName(name string) (auth.DBUser, error) {
	return db.scanOne(db.stmts.byName.QueryRow(normalizeName(name)))
}

func (db *UserDB) GetAllUsers(limit, offset int) ([]auth.DBUser, error) {

	rows, err := db.stmts.list.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = []auth.DBUser{}
	for rows.Next() {
		var u = &user{}
		if err := rows.Scan(&u.id, &u.name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// InsertUser creates a user without a password.
func (db *UserDB) InsertUser(name string) (auth.DBUser, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyUserName
	}
	result, err := db.stmts.insert.Exec(name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &user{id: int(id), name: name}, nil
}

// LoginUser returns auth.ErrAuth if the user does not exist or the password is wrong.
func (db *UserDB) LoginUser(name, password string) (auth.DBUser, error) {

	var u = &user{}
	var hash string

	switch err := db.stmts.hashByName.QueryRow(normalizeName(name)).Scan(&u.id, &u.name, &hash); {
	case isNotFound(err):
		return nil, auth.ErrAuth
	case err != nil:
		return nil, err
	}

	if err := verify(hash, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (db *UserDB) SetPassword(u auth.DBUser, password string) error {
	if password == "" {
		return auth.ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.stmts.setHash.Exec(string(hash), u.ID())
	return err
}
