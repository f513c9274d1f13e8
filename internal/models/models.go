// Package models defines the data structures used across go-postboard.
package models

import "time"

// User represents a registered account in the main database
type User struct {
	ID            int64      `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"password_hash" db:"password_hash"`
	DisplayName   string     `json:"display_name" db:"display_name"`
	LastLoginIP   string     `json:"last_login_ip" db:"last_login_ip"` // IP of last login (for logging only)
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
	LoginAttempts int        `json:"login_attempts" db:"login_attempts"` // Failed login attempts counter
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Session represents a user session
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// UserPermission represents a permission granted to a user
type UserPermission struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Permission string    `json:"permission" db:"permission"`
	GrantedAt  time.Time `json:"granted_at" db:"granted_at"`
}

// Post represents a single entry on the board
type Post struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"` // joined from users for display
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	IsVisible bool      `json:"is_visible" db:"is_visible"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaginationInfo carries paging state for list templates
type PaginationInfo struct {
	CurrentPage int
	PageSize    int
	TotalCount  int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
	NextPage    int
	PrevPage    int
}

// NewPaginationInfo creates pagination info
func NewPaginationInfo(page, pageSize, totalCount int) *PaginationInfo {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return &PaginationInfo{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		NextPage:    page + 1,
		PrevPage:    page - 1,
	}
}
