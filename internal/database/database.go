package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func Initialize(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS parts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			component TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			currency TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pc_setups (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			total_amount TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS setup_parts (
			id TEXT PRIMARY KEY,
			setup_id TEXT NOT NULL,
			component TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (setup_id) REFERENCES pc_setups(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_parts_user_id ON parts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pc_setups_user_id ON pc_setups(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_setup_parts_setup_id ON setup_parts(setup_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	// Add sort_order column to parts table if it doesn't exist
	if err := addPartSortOrderColumn(db); err != nil {
		return fmt.Errorf("failed to add sort_order column: %w", err)
	}

	return nil
}

func addPartSortOrderColumn(db *sql.DB) error {
	// Check if sort_order column exists
	rows, err := db.Query("PRAGMA table_info(parts)")
	if err != nil {
		return err
	}
	defer rows.Close()

	hasSortOrder := false
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, dfltValue, pk interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "sort_order" {
			hasSortOrder = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasSortOrder {
		_, err = db.Exec("ALTER TABLE parts ADD COLUMN sort_order INTEGER DEFAULT 0")
		if err != nil {
			return err
		}
	}

	return nil
}
