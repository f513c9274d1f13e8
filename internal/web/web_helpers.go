package web

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
)

// getBaseTemplateData creates a TemplateData struct with common information including user auth
func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) TemplateData {
	// Check registration status (default to true if error)
	registrationEnabled := true
	if enabled, err := s.DB.IsRegistrationEnabled(); err == nil {
		registrationEnabled = enabled
	}

	data := TemplateData{
		Title:               template.HTML(title),
		CurrentTime:         time.Now().Format("2006-01-02 15:04:05"),
		Port:                s.GetPort(),
		AppVersion:          config.AppVersion,
		RegistrationEnabled: registrationEnabled,
		CSRFToken:           s.csrfToken(c),
	}

	// Add user information if logged in
	if session := s.getWebSession(c); session != nil {
		data.User = session.User
		data.FlashSuccess, data.FlashError = GetAndClearFlash(session.SessionID)
		// Check if user is admin
		if userModel, err := s.DB.GetUserByID(session.UserID); err == nil {
			data.IsAdmin = s.isAdminUser(userModel)
		}
	}

	return data
}

// isAdminUser checks if a user has admin permissions (helper for base template)
func (s *WebServer) isAdminUser(user *models.User) bool {
	if user == nil {
		return false
	}
	if user.ID == 1 {
		return true
	}
	permissions, err := s.DB.GetUserPermissions(user.ID)
	if err != nil {
		return false
	}
	for _, perm := range permissions {
		if perm.Permission == "admin" {
			return true
		}
	}
	return false
}

// renderError renders an error page
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	errorData := struct {
		TemplateData
		Error      string
		StatusCode int
	}{
		TemplateData: s.getBaseTemplateData(c, "Error"),
		Error:        message,
		StatusCode:   statusCode,
	}
	log.Printf("[WEB]: Error %d: %s - %s", statusCode, message, errstring)

	// Load template individually to avoid engine setup issues
	tmpl, err := template.ParseFiles("web/templates/base.html", "web/templates/error.html")
	if err != nil {
		c.String(statusCode, "Error: %s - %s", message, errstring)
		return
	}
	c.Header("Content-Type", "text/html")
	c.Status(statusCode)
	if err := tmpl.ExecuteTemplate(c.Writer, "base.html", errorData); err != nil {
		log.Printf("Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s - %s", message, errstring)
	}
}

// renderTemplate renders a template with base template data
func (s *WebServer) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	// Load template individually to avoid engine setup issues
	tmpl := template.Must(template.ParseFiles("web/templates/base.html", "web/templates/"+templateName))
	c.Header("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(c.Writer, "base.html", data)
	if err != nil {
		log.Printf("Error rendering template %s: %v", templateName, err)
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
	}
}
