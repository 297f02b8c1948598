// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package catalog

import (
	"fmt"
	"strings"

	"github.com/mediaviewer/mediaviewer/internal/cache"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

var sortColumns = map[models.SortField]string{
	models.SortModified:   "modified_ms",
	models.SortTitle:      "title",
	models.SortFilename:   "filename",
	models.SortDuration:   "duration_ms",
	models.SortSpeed:      "funscript_avg_speed",
	models.SortResolution: "width",
}

// Search runs a paginated, filtered catalog query per spec §4.1: substring
// match on filename or title; mediaType/hasFunscript/isVr equality filters;
// closed ranges on duration/avgSpeed/width/height; sortable with NULLs last
// and modified_ms DESC as the secondary tiebreaker.
func (s *Store) Search(q models.SearchQuery) (models.SearchResult, error) {
	key := cache.GenerateKey("search", q)
	if cached, ok := s.searchCache.Get(key); ok {
		return cached.(models.SearchResult), nil
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	where, args := buildWhere(q.Filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM media_items` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return models.SearchResult{}, fmt.Errorf("catalog: search count: %w", err)
	}

	col, ok := sortColumns[q.Sort]
	if !ok {
		col = "modified_ms"
	}
	dir := "ASC"
	if q.Direction == models.SortDesc {
		dir = "DESC"
	}
	// NULLS LAST regardless of direction, then a stable tiebreaker.
	orderClause := fmt.Sprintf(
		" ORDER BY (%s IS NULL) ASC, %s %s, modified_ms DESC",
		col, col, dir,
	)

	listQuery := `SELECT ` + selectColumns + ` FROM media_items` + where + orderClause + ` LIMIT ? OFFSET ?`
	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)

	rows, err := s.db.Query(listQuery, listArgs...)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	items := make([]models.MediaItem, 0, pageSize)
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return models.SearchResult{}, fmt.Errorf("catalog: search scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return models.SearchResult{}, err
	}

	result := models.SearchResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	s.searchCache.Set(key, result)
	return result, nil
}

func buildWhere(f models.MediaFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Query != "" {
		clauses = append(clauses, "(filename LIKE ? ESCAPE '\\' OR title LIKE ? ESCAPE '\\')")
		needle := "%" + likeEscape(f.Query) + "%"
		args = append(args, needle, needle)
	}
	if f.MediaType != nil {
		clauses = append(clauses, "media_type = ?")
		args = append(args, string(*f.MediaType))
	}
	if f.HasFunscript != nil {
		clauses = append(clauses, "has_funscript = ?")
		args = append(args, boolToInt(*f.HasFunscript))
	}
	if f.IsVR != nil {
		clauses = append(clauses, "is_vr = ?")
		args = append(args, boolToInt(*f.IsVR))
	}
	if f.DurationMsMin != nil {
		clauses = append(clauses, "duration_ms >= ?")
		args = append(args, *f.DurationMsMin)
	}
	if f.DurationMsMax != nil {
		clauses = append(clauses, "duration_ms <= ?")
		args = append(args, *f.DurationMsMax)
	}
	if f.AvgSpeedMin != nil {
		clauses = append(clauses, "funscript_avg_speed >= ?")
		args = append(args, *f.AvgSpeedMin)
	}
	if f.AvgSpeedMax != nil {
		clauses = append(clauses, "funscript_avg_speed <= ?")
		args = append(args, *f.AvgSpeedMax)
	}
	if f.WidthMin != nil {
		clauses = append(clauses, "width >= ?")
		args = append(args, *f.WidthMin)
	}
	if f.WidthMax != nil {
		clauses = append(clauses, "width <= ?")
		args = append(args, *f.WidthMax)
	}
	if f.HeightMin != nil {
		clauses = append(clauses, "height >= ?")
		args = append(args, *f.HeightMin)
	}
	if f.HeightMax != nil {
		clauses = append(clauses, "height <= ?")
		args = append(args, *f.HeightMax)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func likeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
