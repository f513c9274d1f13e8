package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
)

// homePage displays the paginated post list (the landing page after login/register)
func (s *WebServer) homePage(c *gin.Context) {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}

	totalCount, err := s.DB.CountPosts()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}

	pagination := models.NewPaginationInfo(page, config.DefaultPageSize, totalCount)

	posts, err := s.DB.GetRecentPosts(pagination.CurrentPage, pagination.PageSize)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Database Error", err.Error())
		return
	}

	data := HomePageData{
		TemplateData: s.getBaseTemplateData(c, "Posts"),
		Posts:        posts,
		PostCount:    totalCount,
		Pagination:   pagination,
	}

	s.renderTemplate(c, "home.html", data)
}
