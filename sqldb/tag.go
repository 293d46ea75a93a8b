package sqldb

import (
	"database/sql"

	"github.com/gofrs/uuid"
	"github.com/wansing/blog/core"
)

// TagDB uses the tables which are created by NewPostDB.
type TagDB struct {
	*sql.DB
	delete       *sql.Stmt
	deletePosts  *sql.Stmt
	get          *sql.Stmt
	getAll       *sql.Stmt
	getByTitle   *sql.Stmt
	insert       *sql.Stmt
	link         *sql.Stmt
	rename       *sql.Stmt
	unlinkByPost *sql.Stmt
}

func NewTagDB(db *sql.DB) *TagDB {
	var tagDB = &TagDB{}
	tagDB.DB = db
	tagDB.delete = mustPrepare(db, "DELETE FROM blog_tag WHERE id = ?")
	tagDB.deletePosts = mustPrepare(db, "DELETE FROM blog_post_tag WHERE tag = ?")
	tagDB.get = mustPrepare(db, "SELECT title FROM blog_tag WHERE id = ?")
	tagDB.getAll = mustPrepare(db, "SELECT id, title FROM blog_tag ORDER BY title")
	tagDB.getByTitle = mustPrepare(db, "SELECT id FROM blog_tag WHERE title = ?")
	tagDB.insert = mustPrepare(db, "INSERT INTO blog_tag (id, title) VALUES (?, ?)")
	tagDB.link = mustPrepare(db, "INSERT INTO blog_post_tag (post, tag) VALUES (?, ?)")
	tagDB.rename = mustPrepare(db, "UPDATE blog_tag SET title = ? WHERE id = ?")
	tagDB.unlinkByPost = mustPrepare(db, "DELETE FROM blog_post_tag WHERE post = ?")
	return tagDB
}

// DeleteTag removes the tag from all posts and deletes it.
func (db *TagDB) DeleteTag(t *core.Tag) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.deletePosts).Exec(t.ID)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Stmt(db.delete).Exec(t.ID)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *TagDB) GetAllTags() ([]*core.Tag, error) {

	rows, err := db.getAll.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags = []*core.Tag{}
	for rows.Next() {
		var tag = &core.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Title); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (db *TagDB) GetTag(id uuid.UUID) (*core.Tag, error) {
	var tag = &core.Tag{
		ID: id,
	}
	if err := db.get.QueryRow(id).Scan(&tag.Title); err != nil {
		return nil, err
	}
	return tag, nil
}

func (db *TagDB) GetTagByTitle(title string) (*core.Tag, error) {
	var tag = &core.Tag{
		Title: title,
	}
	if err := db.getByTitle.QueryRow(title).Scan(&tag.ID); err != nil {
		return nil, err
	}
	return tag, nil
}

func (db *TagDB) InsertTag(t *core.Tag) error {
	_, err := db.insert.Exec(t.ID, t.Title)
	return err
}

func (db *TagDB) RenameTag(t *core.Tag, title string) error {
	if _, err := db.rename.Exec(title, t.ID); err != nil {
		return err
	}
	t.Title = title
	return nil
}

// SetPostTags replaces the tags of a post.
func (db *TagDB) SetPostTags(postID uuid.UUID, tags []*core.Tag) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Stmt(db.unlinkByPost).Exec(postID); err != nil {
		tx.Rollback()
		return err
	}

	var link = tx.Stmt(db.link)
	for _, tag := range tags {
		if _, err := link.Exec(postID, tag.ID); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
