package sqldb

import (
	"database/sql"
	"errors"

	"github.com/wansing/blog/auth"
)

var ErrEmptyGroupName = errors.New("group name can't be empty")

type group struct {
	id   int
	name string
}

func (g *group) ID() int {
	return g.id
}

func (g *group) Name() string {
	return g.name
}

// GroupDB stores groups in the table grp and memberships in the table membership.
type GroupDB struct {
	db    *sql.DB
	stmts struct {
		byID, byName, list, of     *sql.Stmt
		insert, remove, removeAll *sql.Stmt
		join, leave               *sql.Stmt
		isMember, members         *sql.Stmt
	}
}

func NewGroupDB(db *sql.DB, dialect Dialect) (*GroupDB, error) {

	err := createTables(db, dialect,
		`CREATE TABLE IF NOT EXISTS grp (
			id {{serial}},
			name varchar(64) NOT NULL,
			UNIQUE(name)
		)`,
		`CREATE TABLE IF NOT EXISTS membership (
			grp INTEGER NOT NULL,
			usr INTEGER NOT NULL,
			PRIMARY KEY (grp, usr)
		)`)
	if err != nil {
		return nil, err
	}

	var g = &GroupDB{db: db}
	g.stmts.byID = mustPrepare(db, "SELECT id, name FROM grp WHERE id = ?")
	g.stmts.byName = mustPrepare(db, "SELECT id, name FROM grp WHERE name = ?")
	g.stmts.list = mustPrepare(db, "SELECT id, name FROM grp ORDER BY name LIMIT ? OFFSET ?")
	g.stmts.of = mustPrepare(db, "SELECT g.id, g.name FROM grp g JOIN membership m ON m.grp = g.id WHERE m.usr = ? ORDER BY g.name")
	g.stmts.insert = mustPrepare(db, "INSERT INTO grp (name) VALUES (?)")
	g.stmts.remove = mustPrepare(db, "DELETE FROM grp WHERE id = ?")
	g.stmts.removeAll = mustPrepare(db, "DELETE FROM membership WHERE grp = ?")
	g.stmts.join = mustPrepare(db, "INSERT INTO membership (grp, usr) VALUES (?, ?)")
	g.stmts.leave = mustPrepare(db, "DELETE FROM membership WHERE grp = ? AND usr = ?")
	g.stmts.isMember = mustPrepare(db, "SELECT COUNT(*) FROM membership WHERE grp = ? AND usr = ?")
	g.stmts.members = mustPrepare(db, "SELECT u.id, u.name FROM usr u JOIN membership m ON m.usr = u.id WHERE m.grp = ? ORDER BY u.name")
	return g, nil
}

func (db *GroupDB) IsNotFound(err error) bool {
	return isNotFound(err)
}

func (db *GroupDB) scanOne(row *sql.Row) (auth.DBGroup, error) {
	var g = &group{}
	if err := row.Scan(&g.id, &g.name); err != nil {
		return nil, err
	}
	return g, nil
}

func (db *GroupDB) scanAll(stmt *sql.Stmt, args ...interface{}) ([]auth.DBGroup, error) {

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups = []auth.DBGroup{}
	for rows.Next() {
		var g = &group{}
		if err := rows.Scan(&g.id, &g.name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Delete removes the group and all its memberships.
func (db *GroupDB) Delete(g auth.DBGroup) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit
	if _, err := tx.Stmt(db.stmts.removeAll).Exec(g.ID()); err != nil {
		return err
	}
	if _, err := tx.Stmt(db.stmts.remove).Exec(g.ID()); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *GroupDB) GetGroup(id int) (auth.DBGroup, error) {
	return db.scanOne(db.stmts.byID.QueryRow(id))
}

func (db *GroupDB) GetGroupByName(name string) (auth.DBGroup, error) {
	return db.scanOne(db.stmts.byName.QueryRow(name))
}

func (db *GroupDB) GetAllGroups(limit, offset int) ([]auth.DBGroup, error) {
	return db.scanAll(db.stmts.list, limit, offset)
}

func (db *GroupDB) GetGroupsOf(u auth.DBUser) ([]auth.DBGroup, error) {
	return db.scanAll(db.stmts.of, u.ID())
}

func (db *GroupDB) InsertGroup(name string) (auth.DBGroup, error) {
	if name == "" {
		return nil, ErrEmptyGroupName
	}
	result, err := db.stmts.insert.Exec(name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &group{id: int(id), name: name}, nil
}

func (db *GroupDB) HasMember(g auth.DBGroup, u auth.DBUser) (bool, error) {
	if u == nil {
		return false, nil
	}
	var n int
	if err := db.stmts.isMember.QueryRow(g.ID(), u.ID()).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Members returns the members of the group, ordered by name.
func (db *GroupDB) Members(g auth.DBGroup) ([]auth.DBUser, error) {

	rows, err := db.stmts.members.Query(g.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members = []auth.DBUser{}
	for rows.Next() {
		var u = &user{}
		if err := rows.Scan(&u.id, &u.name); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (db *GroupDB) Join(g auth.DBGroup, u auth.DBUser) error {
	_, err := db.stmts.join.Exec(g.ID(), u.ID())
	return err
}

func (db *GroupDB) Leave(g auth.DBGroup, u auth.DBUser) error {
	_, err := db.stmts.leave.Exec(g.ID(), u.ID())
	return err
}
