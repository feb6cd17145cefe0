package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no archived map matches a lookup.
var ErrNotFound = errors.New("map not found")

// ArchivedMap is one stored reduction map. SourceHash is the blake3
// digest of the exact source bytes the map was built from, so a later
// reconstruct can verify it has the right map for a file.
type ArchivedMap struct {
	ID            string
	SourceHash    string
	FilePath      string
	MapJSON       string
	OriginalBytes int
	ReducedBytes  int
	CreatedAt     int64
}

// SaveMap archives a reduction map.
func (db *DB) SaveMap(m ArchivedMap) error {
	_, err := db.Exec(`
		INSERT INTO reduction_maps (id, source_hash, file_path, map_json, original_bytes, reduced_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.SourceHash, m.FilePath, m.MapJSON, m.OriginalBytes, m.ReducedBytes, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	return nil
}

// GetMap returns an archived map by id.
func (db *DB) GetMap(id string) (*ArchivedMap, error) {
	row := db.QueryRow(`
		SELECT id, source_hash, file_path, map_json, original_bytes, reduced_bytes, created_at
		FROM reduction_maps WHERE id = ?
	`, id)
	return scanMap(row)
}

// GetMapBySourceHash returns the most recently archived map for a
// source content hash.
func (db *DB) GetMapBySourceHash(hash string) (*ArchivedMap, error) {
	row := db.QueryRow(`
		SELECT id, source_hash, file_path, map_json, original_bytes, reduced_bytes, created_at
		FROM reduction_maps WHERE source_hash = ? ORDER BY created_at DESC LIMIT 1
	`, hash)
	return scanMap(row)
}

// ListMaps returns the most recent archived maps, newest first.
func (db *DB) ListMaps(limit int) ([]ArchivedMap, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, source_hash, file_path, map_json, original_bytes, reduced_bytes, created_at
		FROM reduction_maps ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	var maps []ArchivedMap
	for rows.Next() {
		var m ArchivedMap
		if err := rows.Scan(&m.ID, &m.SourceHash, &m.FilePath, &m.MapJSON, &m.OriginalBytes, &m.ReducedBytes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan map: %w", err)
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// DeleteMap removes an archived map. Deleting a missing id returns
// ErrNotFound.
func (db *DB) DeleteMap(id string) error {
	res, err := db.Exec("DELETE FROM reduction_maps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchiveStats summarizes the archive.
type ArchiveStats struct {
	Count         int
	OriginalBytes int64
	ReducedBytes  int64
}

// GetArchiveStats returns totals across all archived maps.
func (db *DB) GetArchiveStats() (ArchiveStats, error) {
	var s ArchiveStats
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(original_bytes), 0), COALESCE(SUM(reduced_bytes), 0)
		FROM reduction_maps
	`).Scan(&s.Count, &s.OriginalBytes, &s.ReducedBytes)
	if err != nil {
		return s, fmt.Errorf("archive stats: %w", err)
	}
	return s, nil
}

func scanMap(row *sql.Row) (*ArchivedMap, error) {
	var m ArchivedMap
	err := row.Scan(&m.ID, &m.SourceHash, &m.FilePath, &m.MapJSON, &m.OriginalBytes, &m.ReducedBytes, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan map: %w", err)
	}
	return &m, nil
}
