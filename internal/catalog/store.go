// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package catalog is the authoritative record of discovered media items
// (spec component C1). It is backed by a single-table SQLite database:
// the scanner (C2) is the only writer, every other component reads
// concurrently through Store's exported methods.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mediaviewer/mediaviewer/internal/cache"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

// searchCacheTTL bounds how long a Search result page may be served stale.
// Short enough that a rescan's Upsert/DeleteByRelPaths calls, which flush
// the cache outright, are the common invalidation path and the TTL only
// covers the gap between a write landing and its flush being observed.
const searchCacheTTL = 30 * time.Second

// Store is a concurrency-safe handle to the media catalog database.
type Store struct {
	db          *sql.DB
	searchCache cache.Cacher
}

// Options configures the underlying SQLite connection.
type Options struct {
	BusyTimeout time.Duration
	CacheSize   int
}

// DefaultOptions returns sane defaults for a single-host catalog database.
func DefaultOptions() Options {
	return Options{
		BusyTimeout: 5 * time.Second,
		CacheSize:   -20000, // ~20MB page cache, negative means KiB per sqlite docs
	}
}

// Open creates or opens the catalog database at path (":memory:" is valid
// for tests) and brings its schema up to date.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}

	// A single writer (the scanner) and many concurrent readers is exactly
	// what SQLite's WAL mode is for.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: set journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: set foreign_keys: %w", err)
	}
	busyMs := int(opts.BusyTimeout / time.Millisecond)
	if busyMs <= 0 {
		busyMs = 5000
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyMs)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: set busy_timeout: %w", err)
	}
	if opts.CacheSize != 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA cache_size=%d", opts.CacheSize)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("catalog: set cache_size: %w", err)
		}
	}

	store := &Store{db: db, searchCache: cache.NewTTL(searchCacheTTL)}
	if err := store.migrateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const selectColumns = `
	id, rel_path, filename, title, ext, media_type, size_bytes, modified_ms,
	duration_ms, width, height, has_funscript, funscript_action_count,
	funscript_avg_speed, is_vr, vr_fov, vr_stereo, vr_projection
`

func scanMediaItem(row interface{ Scan(...any) error }) (models.MediaItem, error) {
	var (
		item        models.MediaItem
		mediaType   string
		durationMs  sql.NullInt64
		width       sql.NullInt64
		height      sql.NullInt64
		hasFunNum   int
		actionCount sql.NullInt64
		avgSpeed    sql.NullFloat64
		isVRNum     int
		vrFov       sql.NullInt64
		vrStereo    sql.NullString
		vrProj      sql.NullString
	)

	if err := row.Scan(
		&item.ID, &item.RelPath, &item.Filename, &item.Title, &item.Ext, &mediaType,
		&item.SizeBytes, &item.ModifiedMs,
		&durationMs, &width, &height,
		&hasFunNum, &actionCount, &avgSpeed,
		&isVRNum, &vrFov, &vrStereo, &vrProj,
	); err != nil {
		return models.MediaItem{}, err
	}

	item.MediaType = models.MediaType(mediaType)
	item.HasFunscript = hasFunNum != 0
	item.IsVR = isVRNum != 0

	if durationMs.Valid {
		v := durationMs.Int64
		item.DurationMs = &v
	}
	if width.Valid {
		v := int(width.Int64)
		item.Width = &v
	}
	if height.Valid {
		v := int(height.Int64)
		item.Height = &v
	}
	if actionCount.Valid {
		v := int(actionCount.Int64)
		item.FunscriptActionCount = &v
	}
	if avgSpeed.Valid {
		v := avgSpeed.Float64
		item.FunscriptAvgSpeed = &v
	}
	if vrFov.Valid {
		v := models.VRFov(vrFov.Int64)
		item.VRFov = &v
	}
	if vrStereo.Valid {
		v := models.VRStereo(vrStereo.String)
		item.VRStereo = &v
	}
	if vrProj.Valid {
		v := vrProj.String
		item.VRProjection = &v
	}

	return item, nil
}

// Get returns the media item with the given id, or (zero, false) if no such
// item exists.
func (s *Store) Get(id string) (models.MediaItem, bool, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM media_items WHERE id = ?`, id)
	item, err := scanMediaItem(row)
	if err == sql.ErrNoRows {
		return models.MediaItem{}, false, nil
	}
	if err != nil {
		return models.MediaItem{}, false, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	return item, true, nil
}

// GetByRelPath returns the media item at the given catalog-relative path, or
// (zero, false) if no such item exists.
func (s *Store) GetByRelPath(relPath string) (models.MediaItem, bool, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM media_items WHERE rel_path = ?`, relPath)
	item, err := scanMediaItem(row)
	if err == sql.ErrNoRows {
		return models.MediaItem{}, false, nil
	}
	if err != nil {
		return models.MediaItem{}, false, fmt.Errorf("catalog: get by rel path %s: %w", relPath, err)
	}
	return item, true, nil
}

// ListVR returns up to limit VR items ordered by the given field (modified
// or title; any other value falls back to modified desc).
func (s *Store) ListVR(limit int, orderBy models.SortField) ([]models.MediaItem, error) {
	if limit <= 0 {
		limit = 100
	}
	order := "modified_ms DESC"
	if orderBy == models.SortTitle {
		order = "title ASC, modified_ms DESC"
	}

	rows, err := s.db.Query(`SELECT `+selectColumns+` FROM media_items WHERE is_vr = 1 ORDER BY `+order+` LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list vr: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: list vr scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Upsert inserts or replaces the row for item.RelPath. Only called by the
// scanner.
func (s *Store) Upsert(item models.MediaItem) error {
	_, err := s.db.Exec(`
		INSERT INTO media_items (
			id, rel_path, filename, title, ext, media_type, size_bytes, modified_ms,
			duration_ms, width, height, has_funscript, funscript_action_count,
			funscript_avg_speed, is_vr, vr_fov, vr_stereo, vr_projection
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rel_path) DO UPDATE SET
			id=excluded.id, filename=excluded.filename, title=excluded.title,
			ext=excluded.ext, media_type=excluded.media_type,
			size_bytes=excluded.size_bytes, modified_ms=excluded.modified_ms,
			duration_ms=excluded.duration_ms, width=excluded.width, height=excluded.height,
			has_funscript=excluded.has_funscript,
			funscript_action_count=excluded.funscript_action_count,
			funscript_avg_speed=excluded.funscript_avg_speed,
			is_vr=excluded.is_vr, vr_fov=excluded.vr_fov,
			vr_stereo=excluded.vr_stereo, vr_projection=excluded.vr_projection
	`,
		item.ID, item.RelPath, item.Filename, item.Title, item.Ext, string(item.MediaType),
		item.SizeBytes, item.ModifiedMs,
		item.DurationMs, item.Width, item.Height,
		boolToInt(item.HasFunscript), item.FunscriptActionCount, item.FunscriptAvgSpeed,
		boolToInt(item.IsVR), item.VRFov, item.VRStereo, item.VRProjection,
	)
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", item.RelPath, err)
	}
	s.searchCache.Clear()
	return nil
}

// DeleteByRelPaths removes the rows for the given relative paths, in one
// statement. Called by the scanner's cleanup pass after a rescan.
func (s *Store) DeleteByRelPaths(relPaths []string) error {
	if len(relPaths) == 0 {
		return nil
	}
	placeholders := make([]byte, 0, len(relPaths)*2)
	args := make([]any, len(relPaths))
	for i, p := range relPaths {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = p
	}
	query := fmt.Sprintf(`DELETE FROM media_items WHERE rel_path IN (%s)`, string(placeholders))
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("catalog: delete by rel paths: %w", err)
	}
	s.searchCache.Clear()
	return nil
}

// AllRelPaths returns the rel_path of every video/image row, for the
// scanner's cleanup stat sweep.
func (s *Store) AllRelPaths() ([]string, error) {
	rows, err := s.db.Query(`SELECT rel_path FROM media_items WHERE media_type IN ('video', 'image')`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all rel paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
