package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed migrations/*.sql
var EmbeddedMigrationsFS embed.FS

// Global migration cache to avoid repeated filesystem reads
var (
	migrationCache     []*MigrationFile
	migrationCacheMux  sync.RWMutex
	migrationCacheInit bool
)

// MigrationFile represents a migration file with its metadata
type MigrationFile struct {
	FileName    string
	Version     int
	Description string
}

// Migrate applies pending migrations to the main database
func (db *Database) Migrate() error {
	if err := db.migrateMainDB(); err != nil {
		return fmt.Errorf("failed to migrate main database: %w", err)
	}
	return nil
}

// parseMigrationFileName parses a migration file name to extract metadata
func parseMigrationFileName(fileName string) (*MigrationFile, error) {
	if !strings.HasSuffix(fileName, ".sql") {
		return nil, fmt.Errorf("migration file must have .sql extension: %s", fileName)
	}
	// Remove .sql extension
	name := strings.TrimSuffix(fileName, ".sql")
	parts := strings.SplitN(name, "_", 3)

	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid migration file name format: %s (expected format: 0001_main_description.sql)", fileName)
	}

	// Parse version number
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid version number in migration file: %s", fileName)
	}

	if parts[1] != "main" {
		return nil, fmt.Errorf("invalid database migration name: %s", fileName)
	}

	return &MigrationFile{
		FileName:    fileName,
		Version:     version,
		Description: strings.Join(parts[2:], "_"),
	}, nil
}

// getMigrationFiles reads and parses all migration files from the embedded filesystem
func getMigrationFiles() ([]*MigrationFile, error) {
	// Check the cache first
	migrationCacheMux.RLock()
	if migrationCacheInit {
		// Return a copy of the cached slice to avoid concurrent access issues
		cachedMigrations := make([]*MigrationFile, len(migrationCache))
		copy(cachedMigrations, migrationCache)
		migrationCacheMux.RUnlock()
		return cachedMigrations, nil
	}
	migrationCacheMux.RUnlock()

	files, err := fs.ReadDir(EmbeddedMigrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations directory: %w", err)
	}

	var migrations []*MigrationFile
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".sql") {
			continue
		}

		migration, err := parseMigrationFileName(f.Name())
		if err != nil {
			// Log warning but continue with other migrations
			log.Printf("Warning: skipping invalid migration file %s: %v", f.Name(), err)
			continue
		}

		migrations = append(migrations, migration)
	}

	// Sort by version number
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	// Update the cache
	migrationCacheMux.Lock()
	migrationCache = migrations
	migrationCacheInit = true
	migrationCacheMux.Unlock()

	return migrations, nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		db_type TEXT NOT NULL DEFAULT '',
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// getAppliedMigrations returns a map of applied migration filenames
func getAppliedMigrations(db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.Query(`SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("failed to scan migration filename: %w", err)
		}
		applied[fname] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration rows: %w", err)
	}

	return applied, nil
}

// applyMigration applies a single migration to the database
func applyMigration(db *sql.DB, migration *MigrationFile) error {
	content, err := fs.ReadFile(EmbeddedMigrationsFS, "migrations/"+migration.FileName)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", migration.FileName, err)
	}

	// Apply the migration
	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", migration.FileName, err)
	}

	// Record the migration as applied
	_, err = db.Exec(`INSERT INTO schema_migrations (filename, db_type) VALUES (?, ?)`, migration.FileName, "main")
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.FileName, err)
	}

	return nil
}

// migrateMainDB applies migrations to the main database
func (db *Database) migrateMainDB() error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db.mainDB); err != nil {
		log.Printf("Failed to ensure migrations table for main database: %v", err)
		return err
	}

	// Get migration files
	migrations, err := getMigrationFiles()
	if err != nil {
		log.Printf("Failed to get migration files: %v", err)
		return err
	}

	// Get applied migrations
	applied, err := getAppliedMigrations(db.mainDB)
	if err != nil {
		log.Printf("Failed to get applied migrations for main database: %v", err)
		return err
	}

	// Apply pending migrations in version order
	for _, migration := range migrations {
		if !applied[migration.FileName] {
			if err := applyMigration(db.mainDB, migration); err != nil {
				log.Printf("Failed to apply migration %s to main database: %v", migration.FileName, err)
				return err
			}
		}
	}

	return nil
}
