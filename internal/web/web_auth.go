package web

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-while/go-postboard/internal/database"
)

// FlashMessage is a one-shot message rendered after a redirect
type FlashMessage struct {
	Type    string
	Message string
}

// Global flash message map and mutex
var (
	flashMessages   = make(map[string]FlashMessage)
	flashMessagesMu sync.RWMutex
)

// SetFlashError sets a temporary error message for a session
func SetFlashError(sessionID, msg string) {
	flashMessagesMu.Lock()
	flashMessages[sessionID] = FlashMessage{Type: "error", Message: msg}
	flashMessagesMu.Unlock()
}

// SetFlashSuccess sets a temporary success message for a session
func SetFlashSuccess(sessionID, msg string) {
	flashMessagesMu.Lock()
	flashMessages[sessionID] = FlashMessage{Type: "success", Message: msg}
	flashMessagesMu.Unlock()
}

// GetAndClearFlash retrieves and clears flash messages for a session
func GetAndClearFlash(sessionID string) (success, errorMsg string) {
	flashMessagesMu.Lock()
	fm := flashMessages[sessionID]
	switch fm.Type {
	case "success":
		success = fm.Message
	case "error":
		errorMsg = fm.Message
	}
	delete(flashMessages, sessionID)
	flashMessagesMu.Unlock()
	return
}

// AuthUser represents a user for authentication
type AuthUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// SessionData represents session information with user data
type SessionData struct {
	SessionID string
	UserID    int64
	User      *AuthUser
	ExpiresAt time.Time
}

// SetError sets a temporary error message in session data
func (s *SessionData) SetError(msg string) {
	SetFlashError(s.SessionID, msg)
}

// SetSuccess sets a temporary success message in session data
func (s *SessionData) SetSuccess(msg string) {
	SetFlashSuccess(s.SessionID, msg)
}

// WebAuthRequired middleware redirects unauthenticated requests to the login page
func (s *WebServer) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.getWebSession(c)
		if session == nil {
			c.Redirect(http.StatusSeeOther, "/login?redirect="+c.Request.URL.Path)
			c.Abort()
			return
		}

		// Store user in context for handlers
		c.Set("user", session.User)
		c.Next()
	}
}

// WebAdminRequired middleware for admin-only routes
func (s *WebServer) WebAdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.getWebSession(c)
		if session == nil {
			c.Redirect(http.StatusSeeOther, "/login?redirect="+c.Request.URL.Path)
			c.Abort()
			return
		}

		currentUser, err := s.DB.GetUserByID(session.UserID)
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
			c.Abort()
			return
		}

		if !s.isAdminUser(currentUser) {
			s.renderError(c, http.StatusForbidden, "Access Denied", "Admin access required")
			c.Abort()
			return
		}

		c.Set("user", session.User)
		c.Next()
	}
}

// getWebSession retrieves session from cookie and returns full session data
func (s *WebServer) getWebSession(c *gin.Context) *SessionData {
	sessionID, err := c.Cookie("session_id")
	if err != nil {
		return nil
	}

	user, session, err := s.DB.ValidateUserSession(sessionID)
	if err != nil {
		return nil
	}

	// The DB expiry slides on every validation, keep the cookie MaxAge in
	// step. Handlers may look the session up more than once per request,
	// refresh only once.
	if _, done := c.Get("session_cookie_refreshed"); !done {
		s.setSessionCookie(c, sessionID)
		c.Set("session_cookie_refreshed", true)
	}

	authUser := &AuthUser{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	return &SessionData{
		SessionID: sessionID,
		UserID:    user.ID,
		User:      authUser,
		ExpiresAt: session.ExpiresAt,
	}
}

// createWebSession creates a new session for user and sets the cookie
func (s *WebServer) createWebSession(c *gin.Context, userID int64) error {
	sessionID, err := s.DB.CreateUserSession(userID, c.ClientIP())
	if err != nil {
		return err
	}

	s.setSessionCookie(c, sessionID)
	return nil
}

// hashPassword creates a bcrypt hash of the password
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPassword checks if password matches hash
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// validateEmail performs basic email validation
func validateEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// validateUsername validates username requirements
func validateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 50 {
		return fmt.Errorf("username must be less than 50 characters")
	}
	// Only allow alphanumeric and underscore
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}
	return nil
}

// validatePassword validates password requirements
func validatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}
	return nil
}

// isHTTPSRequest detects HTTPS from the current request perspective only.
// Prefer actual TLS on the request or trusted reverse proxy header.
func isHTTPSRequest(c *gin.Context) bool {
	return c.Request != nil && (c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https"))
}

// Helper function to set session cookie
func (s *WebServer) setSessionCookie(c *gin.Context, sessionID string) {
	cookie := &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPSRequest(c),
		SameSite: http.SameSiteLaxMode, // Works well with reverse proxies
		MaxAge:   int(database.SessionTimeout.Seconds()),
	}

	http.SetCookie(c.Writer, cookie)
}

// Helper function to clear session cookie
func (s *WebServer) clearSessionCookie(c *gin.Context) {
	cookie := &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPSRequest(c),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1, // Delete cookie
	}

	http.SetCookie(c.Writer, cookie)
}
