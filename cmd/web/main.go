// Web server for go-postboard
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/database"
	"github.com/go-while/go-postboard/internal/web"
)

var (
	// command-line flags
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	dataDir     string
	webdebug    bool
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.IntVar(&webport, "webport", 0, "Web server port (default: 11980 (no ssl) or 19443 (webssl))")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&dataDir, "datadir", "", "Directory for the database (default: ./data)")
	flag.BoolVar(&webdebug, "webdebug", false, "Enable debug logging for sessions/auth")
	flag.Parse()

	// Optional .env file, flags take precedence
	if err := godotenv.Load(); err == nil {
		log.Printf("[WEB]: Loaded environment from .env")
	}

	mainConfig := config.NewDefaultConfig()
	log.Printf("Starting go-postboard: Web Server (version: %s)", appVersion)
	log.Printf("[WEB]: Parsed flags - port: %d, ssl: %t, cert: %s, key: %s", webport, webssl, webcertFile, webkeyFile)

	webConfig := mainConfig.Server.WEB
	if webport > 0 {
		webConfig.ListenPort = webport
	} else if envPort := os.Getenv("POSTBOARD_WEBPORT"); envPort != "" {
		if p, perr := strconv.Atoi(envPort); perr == nil && p > 0 {
			webConfig.ListenPort = p
		} else {
			log.Printf("[WEB]: Ignoring invalid POSTBOARD_WEBPORT=%q", envPort)
		}
	}
	if webssl {
		webConfig.SSL = true
		webConfig.CertFile = webcertFile
		webConfig.KeyFile = webkeyFile
		if webport <= 0 && os.Getenv("POSTBOARD_WEBPORT") == "" {
			webConfig.ListenPort = 19443
		}
	}
	webConfig.Debug = webdebug

	dbconfig := database.DefaultDBConfig()
	if dataDir != "" {
		dbconfig.DataDir = dataDir
	} else if envDir := os.Getenv("POSTBOARD_DATADIR"); envDir != "" {
		dbconfig.DataDir = envDir
	} else {
		dbconfig.DataDir = mainConfig.Database.DataDir
	}

	db, err := database.OpenDatabase(dbconfig)
	if err != nil {
		log.Fatalf("[WEB]: Failed to open database: %v", err)
	}

	server := web.NewServer(db, webConfig)
	server.StartSessionCleanup()

	// Cross-platform signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	log.Printf("[WEB]: Starting web server...")

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	// Signal background tasks to stop
	close(db.StopChan)

	if err := db.Shutdown(); err != nil {
		log.Printf("[WEB]: Error during database shutdown: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown complete")
}
