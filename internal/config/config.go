// Package config provides configuration management for go-postboard.
package config

import "log"

var AppVersion = "-unset-" // will be set at build time

const (
	// DefaultPageSize is the number of posts shown per page
	DefaultPageSize = 25

	// MaxPostSubjectLen limits post subjects
	MaxPostSubjectLen = 128
	// MaxPostBodyLen limits post bodies
	MaxPostBodyLen = 16 * 1024
)

// MainConfig holds the main configuration for go-postboard
type MainConfig struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Database settings
	Database DatabaseConfig `json:"database"`

	AppVersion string `json:"app_version"` // Application version, set at build time
}

// ServerConfig holds web server configuration
type ServerConfig struct {
	WEB      *WebConfig
	Hostname string `json:"hostname"` // Server hostname for identification
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DataDir string `json:"data_dir"` // Directory holding the main database
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort int    `json:"listen_port"`
	SSL        bool   `json:"ssl"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	StaticDir  string `json:"static_dir"`
	Debug      bool   `json:"debug"` // Enable debug logging for sessions/auth
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion, // Set application version

		Server: ServerConfig{
			WEB: &WebConfig{
				ListenPort: 11980,
				SSL:        false,
				StaticDir:  "web/static",
			},
		},
		Database: DatabaseConfig{
			DataDir: "./data",
		},
	}

	log.Printf("MainConfig initialized: web port %d, data dir %s",
		maincfg.Server.WEB.ListenPort, maincfg.Database.DataDir)
	return maincfg
}
