package sqldb

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/wansing/blog/core"
)

const postColumns = "id, created_at, published_at, updated_at, title, excerpt, body, slug, author_id, author_name, state"

func toNull(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNull(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0).UTC()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row scanner) (*core.Post, error) {
	var p = &core.Post{}
	var createdAt int64
	var publishedAt, updatedAt sql.NullInt64
	err := row.Scan(&p.ID, &createdAt, &publishedAt, &updatedAt, &p.Title, &p.Excerpt, &p.Body, &p.Slug, &p.AuthorID, &p.AuthorName, &p.State)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.PublishedAt = fromNull(publishedAt)
	p.UpdatedAt = fromNull(updatedAt)
	p.Tags = []*core.Tag{}
	return p, nil
}

type PostDB struct {
	*sql.DB
	delete        *sql.Stmt
	deleteTags    *sql.Stmt
	get           *sql.Stmt
	getAll        *sql.Stmt
	getBySlug     *sql.Stmt
	getByTag      *sql.Stmt
	insert        *sql.Stmt
	insertTag     *sql.Stmt
	linkTag       *sql.Stmt
	slugExists    *sql.Stmt
	tags          *sql.Stmt
	tagsOf        *sql.Stmt
	update        *sql.Stmt
	updateCreated *sql.Stmt
	updateState   *sql.Stmt
}

func NewPostDB(db *sql.DB, dialect Dialect) (*PostDB, error) {

	err := createTables(db, dialect,
		`CREATE TABLE IF NOT EXISTS blog_post (
			id varchar(36) NOT NULL PRIMARY KEY,
			created_at BIGINT NOT NULL,
			published_at BIGINT NULL,
			updated_at BIGINT NULL,
			title varchar(256) NOT NULL,
			excerpt TEXT NOT NULL,
			body TEXT NOT NULL,
			slug varchar(256) NOT NULL,
			author_id INTEGER NOT NULL DEFAULT 0,
			author_name varchar(128) NOT NULL DEFAULT '',
			state varchar(64) NOT NULL,
			UNIQUE(slug)
		)`,
		`CREATE TABLE IF NOT EXISTS blog_tag (
			id varchar(36) NOT NULL PRIMARY KEY,
			title varchar(256) NOT NULL,
			UNIQUE(title)
		)`,
		`CREATE TABLE IF NOT EXISTS blog_post_tag (
			post varchar(36) NOT NULL,
			tag varchar(36) NOT NULL,
			PRIMARY KEY (post, tag)
		)`)
	if err != nil {
		return nil, err
	}

	var postDB = &PostDB{}
	postDB.DB = db
	postDB.delete = mustPrepare(db, "DELETE FROM blog_post WHERE id = ?")
	postDB.deleteTags = mustPrepare(db, "DELETE FROM blog_post_tag WHERE post = ?")
	postDB.get = mustPrepare(db, "SELECT "+postColumns+" FROM blog_post WHERE id = ?")
	postDB.getAll = mustPrepare(db, "SELECT "+postColumns+" FROM blog_post ORDER BY CASE WHEN state = ? THEN 0 ELSE 1 END, published_at DESC, created_at DESC")
	postDB.getBySlug = mustPrepare(db, "SELECT "+postColumns+" FROM blog_post WHERE slug = ?")
	postDB.getByTag = mustPrepare(db, "SELECT "+postColumns+" FROM blog_post WHERE id IN (SELECT post FROM blog_post_tag WHERE tag = ?) ORDER BY published_at DESC, created_at DESC")
	postDB.insert = mustPrepare(db, "INSERT INTO blog_post ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	postDB.insertTag = mustPrepare(db, "INSERT INTO blog_tag (id, title) VALUES (?, ?)")
	postDB.linkTag = mustPrepare(db, "INSERT INTO blog_post_tag (post, tag) VALUES (?, ?)")
	postDB.slugExists = mustPrepare(db, "SELECT COUNT(*) FROM blog_post WHERE slug = ?")
	postDB.tags = mustPrepare(db, "SELECT blog_post_tag.post, blog_tag.id, blog_tag.title FROM blog_post_tag, blog_tag WHERE blog_post_tag.tag = blog_tag.id ORDER BY blog_tag.title")
	postDB.tagsOf = mustPrepare(db, "SELECT blog_tag.id, blog_tag.title FROM blog_post_tag, blog_tag WHERE blog_post_tag.tag = blog_tag.id AND blog_post_tag.post = ? ORDER BY blog_tag.title")
	postDB.update = mustPrepare(db, "UPDATE blog_post SET title = ?, excerpt = ?, body = ?, updated_at = ? WHERE id = ?")
	postDB.updateCreated = mustPrepare(db, "UPDATE blog_post SET created_at = ? WHERE id = ?")
	postDB.updateState = mustPrepare(db, "UPDATE blog_post SET state = ?, published_at = ? WHERE id = ?")
	return postDB, nil
}

func (db *PostDB) IsNotFound(err error) bool {
	return isNotFound(err)
}

func (db *PostDB) DeletePost(p *core.Post) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.deleteTags).Exec(p.ID)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Stmt(db.delete).Exec(p.ID)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *PostDB) getOne(stmt *sql.Stmt, arg interface{}) (*core.Post, error) {

	post, err := scanPost(stmt.QueryRow(arg))
	if err != nil {
		return nil, err
	}

	rows, err := db.tagsOf.Query(post.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tag = &core.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Title); err != nil {
			return nil, err
		}
		post.Tags = append(post.Tags, tag)
	}

	return post, rows.Err()
}

func (db *PostDB) GetPost(id uuid.UUID) (*core.Post, error) {
	return db.getOne(db.get, id)
}

func (db *PostDB) GetPostBySlug(slug string) (*core.Post, error) {
	return db.getOne(db.getBySlug, slug)
}

func (db *PostDB) getMultiple(stmt *sql.Stmt, args ...interface{}) ([]*core.Post, error) {

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts = []*core.Post{}
	var byID = make(map[uuid.UUID]*core.Post)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
		byID[post.ID] = post
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// attach tags

	tagRows, err := db.tags.Query()
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()

	var tags = make(map[uuid.UUID]*core.Tag)

	for tagRows.Next() {
		var postID, tagID uuid.UUID
		var title string
		if err := tagRows.Scan(&postID, &tagID, &title); err != nil {
			return nil, err
		}
		post, ok := byID[postID]
		if !ok {
			continue
		}
		tag, ok := tags[tagID]
		if !ok {
			tag = &core.Tag{
				ID:    tagID,
				Title: title,
			}
			tags[tagID] = tag
		}
		post.Tags = append(post.Tags, tag)
	}

	return posts, tagRows.Err()
}

func (db *PostDB) GetAllPosts(firstState string) ([]*core.Post, error) {
	return db.getMultiple(db.getAll, firstState)
}

func (db *PostDB) GetPostsByTag(tagID uuid.UUID) ([]*core.Post, error) {
	return db.getMultiple(db.getByTag, tagID)
}

// inTx runs f in a transaction, which is rolled back if f returns an error.
func (db *PostDB) inTx(f func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// writeTags inserts newTags and replaces the tag links of p with p.Tags.
func (db *PostDB) writeTags(tx *sql.Tx, p *core.Post, newTags []*core.Tag) error {
	var insertTag = tx.Stmt(db.insertTag)
	for _, tag := range newTags {
		if _, err := insertTag.Exec(tag.ID, tag.Title); err != nil {
			return err
		}
	}
	if _, err := tx.Stmt(db.deleteTags).Exec(p.ID); err != nil {
		return err
	}
	var link = tx.Stmt(db.linkTag)
	for _, tag := range p.Tags {
		if _, err := link.Exec(p.ID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// InsertPost stores the post, the tags in newTags and the links to p.Tags in one transaction.
func (db *PostDB) InsertPost(p *core.Post, newTags []*core.Tag) error {
	return db.inTx(func(tx *sql.Tx) error {
		_, err := tx.Stmt(db.insert).Exec(p.ID, p.CreatedAt.Unix(), toNull(p.PublishedAt), toNull(p.UpdatedAt), p.Title, p.Excerpt, p.Body, p.Slug, p.AuthorID, p.AuthorName, p.State)
		if err != nil {
			return err
		}
		return db.writeTags(tx, p, newTags)
	})
}

func (db *PostDB) SlugExists(slug string) (bool, error) {
	var count int
	err := db.slugExists.QueryRow(slug).Scan(&count)
	return count > 0, err
}

func (db *PostDB) UpdateCreated(p *core.Post) error {
	_, err := db.updateCreated.Exec(p.CreatedAt.Unix(), p.ID)
	return err
}

// UpdatePost is like InsertPost, but updates title, excerpt, body and updated_at of an existing post.
func (db *PostDB) UpdatePost(p *core.Post, newTags []*core.Tag) error {
	return db.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Stmt(db.update).Exec(p.Title, p.Excerpt, p.Body, toNull(p.UpdatedAt), p.ID); err != nil {
			return err
		}
		return db.writeTags(tx, p, newTags)
	})
}

// UpdateState stores the workflow state and the publication time in one statement.
func (db *PostDB) UpdateState(p *core.Post) error {
	_, err := db.updateState.Exec(p.State, toNull(p.PublishedAt), p.ID)
	return err
}
