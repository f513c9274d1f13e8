package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-postboard/internal/models"
)

// AdminPageData represents data for the admin page
type AdminPageData struct {
	TemplateData
	Users      []*models.User
	UserCount  int
	AdminCount int
	Message    string
}

// adminPage displays the admin interface (access enforced by WebAdminRequired)
func (s *WebServer) adminPage(c *gin.Context) {
	users, err := s.DB.GetAllUsers()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}

	data := AdminPageData{
		TemplateData: s.getBaseTemplateData(c, "Admin"),
		Users:        users,
		UserCount:    len(users),
		AdminCount:   s.countAdminUsers(users),
		Message:      c.Query("msg"),
	}

	s.renderTemplate(c, "admin.html", data)
}

// countAdminUsers counts how many users have admin permissions
func (s *WebServer) countAdminUsers(users []*models.User) int {
	count := 0
	for _, user := range users {
		if s.isAdminUser(user) {
			count++
		}
	}
	return count
}

// adminDeleteUser handles user deletion
func (s *WebServer) adminDeleteUser(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	userID, err := strconv.ParseInt(c.PostForm("user_id"), 10, 64)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid Request", "Bad user ID")
		return
	}

	// The first user is the permanent admin and cannot be removed
	if userID == 1 {
		session.SetError("Cannot delete the primary admin user")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	if userID == session.UserID {
		session.SetError("Cannot delete your own account")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	user, err := s.DB.GetUserByID(userID)
	if err != nil {
		session.SetError("User not found")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	if err := s.DB.DeleteUser(user.ID); err != nil {
		session.SetError("Failed to delete user")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	session.SetSuccess("User '" + user.Username + "' deleted")
	c.Redirect(http.StatusSeeOther, "/admin")
}

// adminEnableRegistration enables user registration
func (s *WebServer) adminEnableRegistration(c *gin.Context) {
	if err := s.DB.SetConfigValue("registration_enabled", "true"); err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", "Failed to enable registration")
		return
	}

	// Redirect back to admin page with success
	c.Redirect(http.StatusSeeOther, "/admin?msg=Registration+enabled")
}

// adminDisableRegistration disables user registration
func (s *WebServer) adminDisableRegistration(c *gin.Context) {
	if err := s.DB.SetConfigValue("registration_enabled", "false"); err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", "Failed to disable registration")
		return
	}

	// Redirect back to admin page with success
	c.Redirect(http.StatusSeeOther, "/admin?msg=Registration+disabled")
}
