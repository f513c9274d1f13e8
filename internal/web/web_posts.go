package web

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
)

// postCreate handles new post submissions (auth required via middleware)
func (s *WebServer) postCreate(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		c.Redirect(http.StatusSeeOther, "/login?redirect=/")
		return
	}

	subject := strings.TrimSpace(c.PostForm("subject"))
	body := strings.TrimSpace(c.PostForm("body"))

	if subject == "" || body == "" {
		session.SetError("Subject and body are required")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if len(subject) > config.MaxPostSubjectLen {
		session.SetError("Subject is too long")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if len(body) > config.MaxPostBodyLen {
		session.SetError("Body is too long")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	post := &models.Post{
		UserID:  session.UserID,
		Subject: subject,
		Body:    body,
	}
	if err := s.DB.InsertPost(post); err != nil {
		log.Printf("ERROR: Failed to create post for user %d: %v", session.UserID, err)
		session.SetError("Failed to create post")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	session.SetSuccess("Post created")
	c.Redirect(http.StatusSeeOther, "/")
}

// postDelete removes a post. Allowed for the author and for admins.
func (s *WebServer) postDelete(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		c.Redirect(http.StatusSeeOther, "/login?redirect=/")
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid Request", "Bad post ID")
		return
	}

	post, err := s.DB.GetPostByID(postID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.renderError(c, http.StatusNotFound, "Post Not Found", "The requested post does not exist.")
			return
		}
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}

	currentUser, err := s.DB.GetUserByID(session.UserID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}

	if post.UserID != session.UserID && !s.isAdminUser(currentUser) {
		s.renderError(c, http.StatusForbidden, "Access Denied", "You can only delete your own posts")
		return
	}

	if err := s.DB.DeletePost(postID); err != nil {
		session.SetError("Failed to delete post")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	session.SetSuccess("Post deleted")
	c.Redirect(http.StatusSeeOther, "/")
}
