package database

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/go-while/go-postboard/internal/models"
)

// Session security constants
const (
	SessionIDLength  = 64               // 64 character session ID
	SessionTimeout   = 3 * time.Hour    // 3 hour sliding timeout
	MaxLoginAttempts = 5                // Max failed login attempts
	LoginLockoutTime = 15 * time.Minute // Lockout time after max attempts
)

// GenerateSecureSessionID creates a cryptographically secure session ID
func GenerateSecureSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength/2) // hex encoding doubles the length
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure session ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateUserSession creates a new session for the user, invalidates any
// existing session and resets the failed login counter
func (db *Database) CreateUserSession(userID int64, remoteIP string) (string, error) {
	sessionID, err := GenerateSecureSessionID()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(SessionTimeout)

	// One active session per user
	if _, err := retryableExec(db.mainDB, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return "", fmt.Errorf("failed to clear previous sessions: %w", err)
	}

	_, err = retryableExec(db.mainDB,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`,
		sessionID, userID, expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to create user session: %w", err)
	}

	_, err = retryableExec(db.mainDB, `UPDATE users SET
		last_login_ip = ?,
		last_login_at = CURRENT_TIMESTAMP,
		login_attempts = 0,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, remoteIP, userID)
	if err != nil {
		return "", fmt.Errorf("failed to update user login state: %w", err)
	}

	return sessionID, nil
}

// ValidateUserSession checks if the session is valid and extends expiration
func (db *Database) ValidateUserSession(sessionID string) (*models.User, *models.Session, error) {
	if sessionID == "" {
		return nil, nil, fmt.Errorf("empty session ID")
	}

	query := `SELECT s.id, s.user_id, s.created_at, s.expires_at,
		u.id, u.username, u.email, u.password_hash, u.display_name,
		u.last_login_ip, u.last_login_at, u.login_attempts, u.created_at, u.updated_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.expires_at > CURRENT_TIMESTAMP`

	var s models.Session
	var u models.User
	err := retryableQueryRowScan(db.mainDB, query, []interface{}{sessionID},
		&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt,
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.LastLoginIP, &u.LastLoginAt, &u.LoginAttempts, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid or expired session")
	}

	// Extend session expiration (sliding timeout)
	newExpiresAt := time.Now().Add(SessionTimeout)
	_, err = retryableExec(db.mainDB, `UPDATE sessions SET expires_at = ? WHERE id = ?`, newExpiresAt, s.ID)
	if err != nil {
		// Log error but don't fail validation
		log.Printf("Warning: Failed to extend session expiration: %v", err)
	} else {
		s.ExpiresAt = newExpiresAt
	}

	return &u, &s, nil
}

// InvalidateUserSession clears all sessions of a user
func (db *Database) InvalidateUserSession(userID int64) error {
	_, err := retryableExec(db.mainDB, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// InvalidateUserSessionBySessionID clears a single session by its ID
func (db *Database) InvalidateUserSessionBySessionID(sessionID string) error {
	_, err := retryableExec(db.mainDB, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// GetSession returns a session row by ID
func (db *Database) GetSession(id string) (*models.Session, error) {
	row := db.mainDB.QueryRow(`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`, id)
	var s models.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// IncrementLoginAttempts increases the failed login counter
func (db *Database) IncrementLoginAttempts(username string) error {
	_, err := retryableExec(db.mainDB, `UPDATE users SET
		login_attempts = login_attempts + 1,
		updated_at = CURRENT_TIMESTAMP
		WHERE username_fold = ?`, FoldCase(username))
	return err
}

// ResetLoginAttempts clears the failed login counter
func (db *Database) ResetLoginAttempts(userID int64) error {
	_, err := retryableExec(db.mainDB, `UPDATE users SET
		login_attempts = 0,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, userID)
	return err
}

// IsUserLockedOut checks if user is temporarily locked out due to failed attempts
func (db *Database) IsUserLockedOut(username string) (bool, error) {
	query := `SELECT login_attempts, updated_at FROM users WHERE username_fold = ?`

	var attempts int
	var updatedAt time.Time
	err := db.mainDB.QueryRow(query, FoldCase(username)).Scan(&attempts, &updatedAt)
	if err != nil {
		return false, err
	}

	// Check if user has exceeded max attempts
	if attempts >= MaxLoginAttempts {
		// Check if lockout period has expired
		lockoutExpires := updatedAt.Add(LoginLockoutTime)
		if time.Now().Before(lockoutExpires) {
			return true, nil // Still locked out
		}
		// Lockout period expired, reset attempts
		_, err := retryableExec(db.mainDB,
			`UPDATE users SET login_attempts = 0, updated_at = CURRENT_TIMESTAMP WHERE username_fold = ?`,
			FoldCase(username))
		if err != nil {
			log.Printf("Warning: Failed to reset login attempts for %s: %v", username, err)
		}
	}

	return false, nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (db *Database) CleanupExpiredSessions() error {
	result, err := db.mainDB.Exec(`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		log.Printf("Cleaned up %d expired sessions", rowsAffected)
	}

	return nil
}
