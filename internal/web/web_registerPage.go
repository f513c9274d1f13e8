package web

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-postboard/internal/models"
)

// RegisterPageData represents data for register page
type RegisterPageData struct {
	TemplateData
	Error    string
	Username string
	Email    string
}

// registerPage displays the registration form
func (s *WebServer) registerPage(c *gin.Context) {
	// Check if registration is enabled
	registrationEnabled, err := s.DB.IsRegistrationEnabled()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}
	if !registrationEnabled {
		s.renderError(c, http.StatusForbidden, "Registration Disabled", "New user registration is currently disabled.")
		return
	}

	// Check if user is already logged in
	if session := s.getWebSession(c); session != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	data := RegisterPageData{
		TemplateData: s.getBaseTemplateData(c, "Register"),
	}

	// Load template individually
	tmpl := template.Must(template.ParseFiles("web/templates/base.html", "web/templates/register.html"))
	c.Header("Content-Type", "text/html")
	if err := tmpl.ExecuteTemplate(c.Writer, "base.html", data); err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template Error", err.Error())
	}
}

// registerSubmit processes registration form submission
func (s *WebServer) registerSubmit(c *gin.Context) {
	// Check if registration is enabled
	registrationEnabled, err := s.DB.IsRegistrationEnabled()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}
	if !registrationEnabled {
		s.renderError(c, http.StatusForbidden, "Registration Disabled", "New user registration is currently disabled.")
		return
	}

	// Already logged in
	if session := s.getWebSession(c); session != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password1 := c.PostForm("password1")
	password2 := c.PostForm("password2")

	// Validate input
	if username == "" || email == "" || password1 == "" || password2 == "" {
		s.renderRegisterError(c, "All fields are required", username, email)
		return
	}

	// Validate passwords match
	if password1 != password2 {
		s.renderRegisterError(c, "Passwords do not match", username, email)
		return
	}

	// Validate username
	if err := validateUsername(username); err != nil {
		s.renderRegisterError(c, err.Error(), username, email)
		return
	}

	// Validate password
	if err := validatePassword(password1); err != nil {
		s.renderRegisterError(c, err.Error(), username, email)
		return
	}

	// Validate email
	if !validateEmail(email) {
		s.renderRegisterError(c, "Invalid email format", username, email)
		return
	}

	// Check if username already exists (case-insensitive)
	if existingUser, err := s.DB.GetUserByUsername(username); err == nil && existingUser != nil {
		s.renderRegisterError(c, "Username already exists", username, email)
		return
	}

	// Check if email already exists
	if existingUser, err := s.DB.GetUserByEmail(email); err == nil && existingUser != nil {
		s.renderRegisterError(c, "Email already exists", username, email)
		return
	}

	// Hash password
	passwordHash, err := hashPassword(password1)
	if err != nil {
		s.renderRegisterError(c, "Failed to process password", username, email)
		return
	}

	// Create user
	user, err := s.createUser(username, email, passwordHash, username)
	if err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", username, err)
		s.renderRegisterError(c, "Failed to create user", username, email)
		return
	}
	log.Printf("INFO: Successfully created user %s with ID %d", user.Username, user.ID)

	// Create session
	if err := s.createWebSession(c, user.ID); err != nil {
		log.Printf("ERROR: Failed to create web session for user %s (ID: %d): %v", user.Username, user.ID, err)
		s.renderRegisterError(c, "Registration successful but failed to log in", username, email)
		return
	}

	// Redirect to the post list
	c.Redirect(http.StatusSeeOther, "/")
}

// createUser creates a new user
func (s *WebServer) createUser(username, email, passwordHash, displayName string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.DB.InsertUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Get the created user to obtain the ID
	createdUser, err := s.DB.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}

	return createdUser, nil
}

// renderRegisterError renders register page with error
func (s *WebServer) renderRegisterError(c *gin.Context, errorMsg, username, email string) {
	data := RegisterPageData{
		TemplateData: s.getBaseTemplateData(c, "Register"),
		Error:        errorMsg,
		Username:     username,
		Email:        email,
	}

	tmpl := template.Must(template.ParseFiles("web/templates/base.html", "web/templates/register.html"))
	c.Header("Content-Type", "text/html")
	c.Status(http.StatusBadRequest)
	err := tmpl.ExecuteTemplate(c.Writer, "base.html", data)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template Error", err.Error())
	}
}
