package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/stellium/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS charts (
					id TEXT PRIMARY KEY,
					name TEXT UNIQUE NOT NULL,
					notes TEXT NOT NULL DEFAULT '',
					active_keys TEXT NOT NULL DEFAULT '[]',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS chart_points (
					chart_id TEXT NOT NULL,
					key TEXT NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					absolute_position REAL,
					sign_position REAL NOT NULL DEFAULT 0,
					sign TEXT NOT NULL DEFAULT '',
					house TEXT NOT NULL DEFAULT '',
					element TEXT NOT NULL DEFAULT '',
					quality TEXT NOT NULL DEFAULT '',
					retrograde INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (chart_id, key),
					FOREIGN KEY (chart_id) REFERENCES charts(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_chart_points_chart ON chart_points(chart_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Track chart updates",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TRIGGER update_charts_updated_at
				AFTER UPDATE ON charts
				FOR EACH ROW
				BEGIN
					UPDATE charts SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END
			`); err != nil {
				return fmt.Errorf("failed to create updated_at trigger: %w", err)
			}
			return nil
		},
	},
}

// SchemaVersion returns the current schema version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		common.LogInfo("Applied migration", common.Fields{
			"version":     migration.Version,
			"description": migration.Description,
		})
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
