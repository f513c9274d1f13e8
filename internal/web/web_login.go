package web

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-postboard/internal/models"
)

// LoginPageData represents data for login page
type LoginPageData struct {
	TemplateData
	Error       string
	RedirectURL string
}

// loginPage displays the login form
func (s *WebServer) loginPage(c *gin.Context) {
	// Check if user is already logged in
	if session := s.getWebSession(c); session != nil {
		redirectURL := safeRedirectTarget(c.Query("redirect"))
		c.Redirect(http.StatusSeeOther, redirectURL)
		return
	}

	// Handle different message types
	var errorMsg string
	switch c.Query("message") {
	case "session_expired":
		errorMsg = "Your session has expired. Please log in again."
	case "logged_out":
		errorMsg = "" // No error for normal logout
	}

	data := LoginPageData{
		TemplateData: s.getBaseTemplateData(c, "Login"),
		Error:        errorMsg,
		RedirectURL:  c.Query("redirect"),
	}

	// Load template individually
	tmpl := template.Must(template.ParseFiles("web/templates/base.html", "web/templates/login.html"))
	c.Header("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(c.Writer, "base.html", data)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template Error", err.Error())
	}
}

// loginSubmit processes login form submission
func (s *WebServer) loginSubmit(c *gin.Context) {
	// Already logged in
	if session := s.getWebSession(c); session != nil {
		c.Redirect(http.StatusSeeOther, safeRedirectTarget(c.PostForm("redirect")))
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	redirectURL := safeRedirectTarget(c.PostForm("redirect"))

	// Validate input
	if username == "" || password == "" {
		s.renderLoginError(c, "Username and password are required", redirectURL)
		return
	}

	// Try to find user by username or email
	var user *models.User
	var err error

	// Check if username contains @ (email login)
	if strings.Contains(username, "@") {
		user, err = s.DB.GetUserByEmail(username)
	} else {
		user, err = s.DB.GetUserByUsername(username)
	}
	if err != nil {
		// Same error for unknown user and wrong password
		s.renderLoginError(c, "Invalid username or password", redirectURL)
		return
	}

	// Check the lockout on the resolved account so that the email form of
	// the identifier cannot bypass it
	lockedOut, err := s.DB.IsUserLockedOut(user.Username)
	if err != nil {
		s.renderLoginError(c, "Invalid username or password", redirectURL)
		return
	}
	if lockedOut {
		s.renderLoginError(c, "Account temporarily locked due to too many failed attempts. Try again in 15 minutes.", redirectURL)
		return
	}

	// Check password
	if !checkPassword(password, user.PasswordHash) {
		s.DB.IncrementLoginAttempts(user.Username)
		s.renderLoginError(c, "Invalid username or password", redirectURL)
		return
	}

	// Successful login - create new session (this invalidates any existing session)
	if err := s.createWebSession(c, user.ID); err != nil {
		s.renderLoginError(c, "Failed to create session", redirectURL)
		return
	}

	// Redirect to destination
	c.Redirect(http.StatusSeeOther, redirectURL)
}

// logout handles user logout
func (s *WebServer) logout(c *gin.Context) {
	// Get current session to invalidate it
	if session := s.getWebSession(c); session != nil {
		s.DB.InvalidateUserSessionBySessionID(session.SessionID)
	}

	// Clear session cookie
	s.clearSessionCookie(c)

	c.Redirect(http.StatusSeeOther, "/login?message=logged_out")
}

// renderLoginError renders login page with error
func (s *WebServer) renderLoginError(c *gin.Context, errorMsg, redirectURL string) {
	data := LoginPageData{
		TemplateData: s.getBaseTemplateData(c, "Login"),
		Error:        errorMsg,
		RedirectURL:  redirectURL,
	}

	tmpl := template.Must(template.ParseFiles("web/templates/base.html", "web/templates/login.html"))
	c.Header("Content-Type", "text/html")
	c.Status(http.StatusBadRequest)
	err := tmpl.ExecuteTemplate(c.Writer, "base.html", data)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template Error", err.Error())
	}
}

// safeRedirectTarget keeps post-login redirects on this site.
// Anything that is not a local absolute path falls back to the post list.
func safeRedirectTarget(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
