// Package database provides database abstraction and management for go-postboard
package database

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// Database represents the main database connection
type Database struct {
	mainDB *sql.DB

	MainMutex sync.RWMutex

	// Database configuration
	dbconfig *DBConfig

	WG       *sync.WaitGroup
	StopChan chan struct{} // Channel to signal shutdown
}

// DBConfig represents database configuration
type DBConfig struct {
	// Directory to store database files
	DataDir string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Performance settings
	WALMode   bool   // Write-Ahead Logging
	SyncMode  string // OFF, NORMAL, FULL
	CacheSize int    // KB
	TempStore string // MEMORY, FILE
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() (dbconfig *DBConfig) {
	return &DBConfig{
		DataDir:         "./data",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 0, // Unlimited for SQLite - connections don't need to be recycled
		WALMode:         true,
		SyncMode:        "NORMAL",
		CacheSize:       -8192, // -8192 == 8MB cache
		TempStore:       "MEMORY",
	}
}

// OpenDatabase creates a new Database instance
func OpenDatabase(dbconfig *DBConfig) (*Database, error) {
	if dbconfig == nil {
		dbconfig = DefaultDBConfig()
	}

	db := &Database{
		dbconfig: dbconfig,
		WG:       &sync.WaitGroup{},
		StopChan: make(chan struct{}, 1), // Channel to signal shutdown (will get closed)
	}

	// Initialize main database
	if err := db.initMainDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize main database: %w", err)
	}

	// Run migrations to ensure all tables exist
	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Printf("[DATABASE] postboard DB init config: %+v", dbconfig)
	return db, nil
}

// IsDBshutdown reports whether shutdown has been signalled
func (db *Database) IsDBshutdown() bool {
	if db == nil {
		return true // If db is nil, consider it shutdown
	}
	select {
	case _, ok := <-db.StopChan:
		if !ok {
			log.Println("[DATABASE] preparing shutdown: StopChan is already closed")
		}
		return true
	default:
		return false
	}
}

// initMainDB initializes the main database connection
func (db *Database) initMainDB() error {
	dbPath := filepath.Join(db.dbconfig.DataDir, "/cfg/postboard.sq3")
	log.Printf("Initializing main database at: %s", dbPath)

	// Create data directory if it doesn't exist
	if err := createDirIfNotExists(db.dbconfig.DataDir + "/cfg/"); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Open main database
	mainDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open main database: %w", err)
	}

	// Configure connection pool
	mainDB.SetMaxOpenConns(db.dbconfig.MaxOpenConns)
	mainDB.SetMaxIdleConns(db.dbconfig.MaxIdleConns)
	mainDB.SetConnMaxLifetime(db.dbconfig.ConnMaxLifetime)

	// Test connection
	if err := mainDB.Ping(); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return fmt.Errorf("failed to ping main database: %w; also failed to close mainDB: %v", err, cerr)
		}
		return fmt.Errorf("failed to ping main database: %w", err)
	}

	// Apply SQLite pragmas for performance
	if err := db.applySQLitePragmas(mainDB); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return fmt.Errorf("failed to apply SQLite pragmas: %w; also failed to close mainDB: %v", err, cerr)
		}
		return fmt.Errorf("failed to apply SQLite pragmas: %w", err)
	}

	db.mainDB = mainDB
	return nil
}

// applySQLitePragmas applies performance and configuration pragmas to SQLite connection
func (db *Database) applySQLitePragmas(conn *sql.DB) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size = %d", db.dbconfig.CacheSize),
		fmt.Sprintf("PRAGMA synchronous = %s", db.dbconfig.SyncMode),
		fmt.Sprintf("PRAGMA temp_store = %s", db.dbconfig.TempStore),
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 30000", // 30 seconds
	}

	if db.dbconfig.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
		pragmas = append(pragmas, "PRAGMA wal_autocheckpoint = 1000")
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}

	return nil
}

// GetMainDB returns the main database connection for direct access.
// This should only be used by specialized tools and tests.
func (db *Database) GetMainDB() *sql.DB {
	return db.mainDB
}

// GetDataDir returns the data directory path
func (db *Database) GetDataDir() string {
	return db.dbconfig.DataDir
}

// Shutdown closes all database connections
func (db *Database) Shutdown() error {
	if db.mainDB != nil {
		if err := db.mainDB.Close(); err != nil {
			return fmt.Errorf("failed to close main database: %w", err)
		}
		log.Printf("[DATABASE] Main database closed")
	}
	return nil
}

// Stats returns database statistics
type Stats struct {
	MainDB struct {
		OpenConnections int
		IdleConnections int
		WaitCount       int64
		WaitDuration    time.Duration
	}
}

// GetStats returns database connection statistics
func (db *Database) GetStats() *Stats {
	stats := &Stats{}
	if db.mainDB != nil {
		dbStats := db.mainDB.Stats()
		stats.MainDB.OpenConnections = dbStats.OpenConnections
		stats.MainDB.IdleConnections = dbStats.Idle
		stats.MainDB.WaitCount = dbStats.WaitCount
		stats.MainDB.WaitDuration = dbStats.WaitDuration
	}
	return stats
}
