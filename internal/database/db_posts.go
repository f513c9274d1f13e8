package database

import (
	"github.com/go-while/go-postboard/internal/models"
)

// --- Post Queries ---

const query_InsertPost = `INSERT INTO posts (user_id, subject, body) VALUES (?, ?, ?)`

func (db *Database) InsertPost(p *models.Post) error {
	result, err := retryableExec(db.mainDB, query_InsertPost, p.UserID, p.Subject, p.Body)
	if err != nil {
		return err
	}
	if id, err := result.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

const query_SelectPost = `SELECT p.id, p.user_id, u.username, p.subject, p.body, p.is_visible, p.created_at, p.updated_at
	FROM posts p JOIN users u ON u.id = p.user_id`

func (db *Database) GetPostByID(id int64) (*models.Post, error) {
	row := db.mainDB.QueryRow(query_SelectPost+` WHERE p.id = ?`, id)
	var p models.Post
	if err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Subject, &p.Body, &p.IsVisible, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetRecentPosts returns visible posts, newest first, paginated
func (db *Database) GetRecentPosts(page, pageSize int) ([]*models.Post, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	rows, err := retryableQuery(db.mainDB,
		query_SelectPost+` WHERE p.is_visible = 1 ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Subject, &p.Body, &p.IsVisible, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// CountPosts returns the number of visible posts
func (db *Database) CountPosts() (int, error) {
	var count int
	err := retryableQueryRowScan(db.mainDB, `SELECT COUNT(*) FROM posts WHERE is_visible = 1`, nil, &count)
	return count, err
}

// CountPostsByUser returns the number of visible posts of a single user
func (db *Database) CountPostsByUser(userID int64) (int, error) {
	var count int
	err := retryableQueryRowScan(db.mainDB,
		`SELECT COUNT(*) FROM posts WHERE is_visible = 1 AND user_id = ?`,
		[]interface{}{userID}, &count)
	return count, err
}

// DeletePost removes a post
func (db *Database) DeletePost(id int64) error {
	_, err := retryableExec(db.mainDB, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// HidePost marks a post invisible without removing it
func (db *Database) HidePost(id int64) error {
	_, err := retryableExec(db.mainDB,
		`UPDATE posts SET is_visible = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
