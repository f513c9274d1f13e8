// Package web provides the HTTP server and web interface for go-postboard
package web

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/database"
	"github.com/go-while/go-postboard/internal/models"
)

// WebServer represents the web server
type WebServer struct {
	DB        *database.Database
	Router    *gin.Engine
	Config    *config.WebConfig
	StartTime time.Time // Track server start time for uptime calculations
}

// TemplateData represents common template data
type TemplateData struct {
	Title               template.HTML
	CurrentTime         string
	Port                int
	User                *AuthUser
	IsAdmin             bool
	AppVersion          string
	RegistrationEnabled bool
	CSRFToken           string
	FlashError          string
	FlashSuccess        string
}

// HomePageData represents data for the post list page
type HomePageData struct {
	TemplateData
	Posts      []*models.Post
	PostCount  int
	Pagination *models.PaginationInfo
}

// NewServer creates a new web server instance
func NewServer(db *database.Database, webconfig *config.WebConfig) *WebServer {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// Configure Gin to trust reverse proxy headers
	// Set trusted proxies for common reverse proxy setups (nginx, etc.)
	router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	// Apply security middleware
	router.Use(secure.New(secureConfig))

	server := &WebServer{
		DB:     db,
		Router: router,
		Config: webconfig,
	}

	// Add reverse proxy middleware for handling X-Forwarded headers
	router.Use(server.ReverseProxyMiddleware())
	router.Use(server.RequestIDMiddleware())
	router.Use(server.ApacheLogFormat())

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	// Static files first (highest priority)
	s.Router.GET("/static/*filepath", EmbeddedStaticHandler("/static"))

	s.Router.GET("/robots.txt", func(c *gin.Context) {
		c.String(http.StatusOK, "User-agent: *\nDisallow:\n")
	})
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	// Authentication routes
	s.Router.GET("/login", s.loginPage)
	s.Router.POST("/login", s.VerifyCSRF(), s.loginSubmit)
	s.Router.GET("/register", s.registerPage)
	s.Router.POST("/register", s.VerifyCSRF(), s.registerSubmit)
	s.Router.GET("/logout", s.logout)

	// Profile
	s.Router.GET("/profile", s.profilePage)
	s.Router.POST("/profile", s.VerifyCSRF(), s.profileUpdate)

	// Posts
	s.Router.GET("/", s.homePage)
	s.Router.POST("/posts", s.VerifyCSRF(), s.WebAuthRequired(), s.postCreate)
	s.Router.POST("/posts/:id/delete", s.VerifyCSRF(), s.WebAuthRequired(), s.postDelete)

	// Admin interface (authenticated)
	admin := s.Router.Group("/admin")
	admin.Use(s.WebAdminRequired())
	{
		admin.GET("", s.adminPage)
		admin.POST("/users/delete", s.VerifyCSRF(), s.adminDeleteUser)
		admin.POST("/registration/enable", s.VerifyCSRF(), s.adminEnableRegistration)
		admin.POST("/registration/disable", s.VerifyCSRF(), s.adminDisableRegistration)
	}
}

// Start starts the web server with SSL support if configured
func (s *WebServer) Start() error {
	addr := ":" + strconv.Itoa(s.Config.ListenPort)
	s.StartTime = time.Now() // Set the start time for uptime calculations
	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("Starting HTTPS server on %s", addr)
		return s.Router.RunTLS(addr, s.Config.CertFile, s.Config.KeyFile)
	}
	log.Printf("Starting HTTP server on %s", addr)
	return s.Router.Run(addr)
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-For to get the real client IP
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			// Take the first IP from the list (original client)
			ips := strings.Split(xff, ",")
			if len(ips) > 0 {
				clientIP := strings.TrimSpace(ips[0])
				c.Request.RemoteAddr = clientIP + ":0"
			}
		}

		// Handle X-Real-IP as an alternative
		if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
			c.Request.RemoteAddr = realIP + ":0"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

// RequestIDMiddleware tags every response with a request ID for log correlation
func (s *WebServer) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

// GetPort returns the listening port from the config
func (s *WebServer) GetPort() int {
	return s.Config.ListenPort
}
