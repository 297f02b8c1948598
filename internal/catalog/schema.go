// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package catalog

import "fmt"

const schemaMediaItems = `
CREATE TABLE IF NOT EXISTS media_items (
	id                     TEXT PRIMARY KEY,
	rel_path               TEXT NOT NULL UNIQUE,
	filename               TEXT NOT NULL,
	title                  TEXT NOT NULL,
	ext                    TEXT NOT NULL,
	media_type             TEXT NOT NULL,
	size_bytes             INTEGER NOT NULL,
	modified_ms            INTEGER NOT NULL,
	duration_ms            INTEGER,
	width                  INTEGER,
	height                 INTEGER,
	has_funscript          INTEGER NOT NULL DEFAULT 0,
	funscript_action_count INTEGER,
	funscript_avg_speed    REAL,
	is_vr                  INTEGER NOT NULL DEFAULT 0,
	vr_fov                 INTEGER,
	vr_stereo              TEXT,
	vr_projection          TEXT
);`

const schemaMediaItemsIndexes = `
CREATE INDEX IF NOT EXISTS idx_media_items_modified ON media_items(modified_ms DESC);
CREATE INDEX IF NOT EXISTS idx_media_items_title ON media_items(title);
CREATE INDEX IF NOT EXISTS idx_media_items_filename ON media_items(filename);
CREATE INDEX IF NOT EXISTS idx_media_items_media_type ON media_items(media_type);
CREATE INDEX IF NOT EXISTS idx_media_items_is_vr ON media_items(is_vr);
`

const schemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY
);`

type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			schemaMediaItems,
			schemaMediaItemsIndexes,
		},
	},
}

// migrateSchema brings the database up to the latest migration version,
// applying each pending migration inside its own transaction.
func (s *Store) migrateSchema() error {
	if _, err := s.db.Exec(schemaMigrations); err != nil {
		return fmt.Errorf("catalog: create schema_migrations table: %w", err)
	}

	current, err := s.currentSchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return err
		}
		current = m.version
	}
	return nil
}

func (s *Store) currentSchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("catalog: read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) applyMigration(m migration) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: start migration %d: %w", m.version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, statement := range m.statements {
		if _, err = tx.Exec(statement); err != nil {
			return fmt.Errorf("catalog: migration %d failed: %w", m.version, err)
		}
	}

	if _, err = tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
		return fmt.Errorf("catalog: record migration %d: %w", m.version, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit migration %d: %w", m.version, err)
	}
	return nil
}
