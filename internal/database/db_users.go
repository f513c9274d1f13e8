package database

import (
	"time"

	"golang.org/x/text/cases"

	"github.com/go-while/go-postboard/internal/models"
)

// FoldCase returns the Unicode case-folded form of s. Usernames and email
// addresses are unique by their folded form.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// --- User Queries ---

const query_InsertUser = `INSERT INTO users (username, username_fold, email, email_fold, password_hash, display_name) VALUES (?, ?, ?, ?, ?, ?)`

func (db *Database) InsertUser(u *models.User) error {
	_, err := retryableExec(db.mainDB, query_InsertUser,
		u.Username, FoldCase(u.Username), u.Email, FoldCase(u.Email), u.PasswordHash, u.DisplayName,
	)
	return err
}

const query_SelectUser = `SELECT id, username, email, password_hash, display_name, last_login_ip, last_login_at, login_attempts, created_at, updated_at FROM users`

func scanUser(scan func(dest ...interface{}) error) (*models.User, error) {
	var u models.User
	if err := scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.LastLoginIP, &u.LastLoginAt, &u.LoginAttempts, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername looks up a user by username, case-insensitively
func (db *Database) GetUserByUsername(username string) (*models.User, error) {
	row := db.mainDB.QueryRow(query_SelectUser+` WHERE username_fold = ?`, FoldCase(username))
	return scanUser(row.Scan)
}

// GetUserByEmail looks up a user by email address, case-insensitively
func (db *Database) GetUserByEmail(email string) (*models.User, error) {
	row := db.mainDB.QueryRow(query_SelectUser+` WHERE email_fold = ?`, FoldCase(email))
	return scanUser(row.Scan)
}

func (db *Database) GetUserByID(id int64) (*models.User, error) {
	row := db.mainDB.QueryRow(query_SelectUser+` WHERE id = ?`, id)
	return scanUser(row.Scan)
}

// GetAllUsers returns all users ordered by ID
func (db *Database) GetAllUsers() ([]*models.User, error) {
	rows, err := retryableQuery(db.mainDB, query_SelectUser+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUserEmail updates a user's email address
const query_UpdateUserEmail = `UPDATE users SET email = ?, email_fold = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (db *Database) UpdateUserEmail(userID int64, email string) error {
	_, err := retryableExec(db.mainDB, query_UpdateUserEmail, email, FoldCase(email), userID)
	return err
}

// UpdateUserPassword updates a user's password hash
const query_UpdateUserPassword = `UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (db *Database) UpdateUserPassword(userID int64, passwordHash string) error {
	_, err := retryableExec(db.mainDB, query_UpdateUserPassword, passwordHash, userID)
	return err
}

// DeleteUser removes a user; sessions, permissions and posts cascade
func (db *Database) DeleteUser(userID int64) error {
	_, err := retryableExec(db.mainDB, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

// --- UserPermission Queries ---

const query_InsertUserPermission = `INSERT INTO user_permissions (user_id, permission, granted_at) VALUES (?, ?, ?)`

func (db *Database) InsertUserPermission(up *models.UserPermission) error {
	if up.GrantedAt.IsZero() {
		up.GrantedAt = time.Now()
	}
	_, err := retryableExec(db.mainDB, query_InsertUserPermission, up.UserID, up.Permission, up.GrantedAt)
	return err
}

const query_GetUserPermissions = `SELECT id, user_id, permission, granted_at FROM user_permissions WHERE user_id = ?`

func (db *Database) GetUserPermissions(userID int64) ([]*models.UserPermission, error) {
	rows, err := retryableQuery(db.mainDB, query_GetUserPermissions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.UserPermission
	for rows.Next() {
		var up models.UserPermission
		if err := rows.Scan(&up.ID, &up.UserID, &up.Permission, &up.GrantedAt); err != nil {
			return nil, err
		}
		out = append(out, &up)
	}
	return out, rows.Err()
}
