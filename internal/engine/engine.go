package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/condense/internal/reduce"
	"github.com/lazypower/condense/internal/store"
)

// Engine orchestrates reduction and reconstruction over files. The core
// operations are pure; the engine adds file I/O, sidecar map handling,
// and optional archival of maps in the store.
type Engine struct {
	DB   *store.DB // optional map archive; nil disables persistence
	Opts reduce.Options
}

// New creates an Engine. db may be nil when no archive is wanted.
func New(db *store.DB, opts reduce.Options) *Engine {
	return &Engine{DB: db, Opts: opts}
}

// FileReport summarizes one processed file.
type FileReport struct {
	Path          string               `json:"path"`
	OutPath       string               `json:"out_path"`
	MapPath       string               `json:"map_path,omitempty"`
	MapID         string               `json:"map_id,omitempty"`
	SourceHash    string               `json:"source_hash"`
	Stats         Stats                `json:"stats"`
	Discrepancies []reduce.Discrepancy `json:"discrepancies,omitempty"`
}

// ReducedPath returns the default output path for a reduced file:
// foo.py becomes foo.reduced.py.
func ReducedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".reduced" + ext
}

// MapPath returns the default sidecar map path: foo.py becomes
// foo.map.json.
func MapPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".map.json"
}

// ReduceFile reduces one source file, writing the reduced text to
// outPath and the map sidecar to mapPath (defaults apply when empty).
// With persist set and a DB attached, the map is also archived keyed by
// the source content hash.
func (e *Engine) ReduceFile(path, outPath, mapPath string, persist bool) (*FileReport, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	reduced, m, err := reduce.Reduce(string(src), e.Opts)
	if err != nil {
		return nil, fmt.Errorf("reduce %s: %w", path, err)
	}

	if outPath == "" {
		outPath = ReducedPath(path)
	}
	if mapPath == "" {
		mapPath = MapPath(path)
	}

	mapData, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outPath, []byte(reduced), 0644); err != nil {
		return nil, fmt.Errorf("write reduced: %w", err)
	}
	if err := os.WriteFile(mapPath, mapData, 0644); err != nil {
		return nil, fmt.Errorf("write map: %w", err)
	}

	report := &FileReport{
		Path:       path,
		OutPath:    outPath,
		MapPath:    mapPath,
		SourceHash: SourceHash(src),
		Stats:      ComputeStats(string(src), reduced),
	}

	if persist && e.DB != nil {
		rec := store.ArchivedMap{
			ID:            uuid.NewString(),
			SourceHash:    report.SourceHash,
			FilePath:      path,
			MapJSON:       string(mapData),
			OriginalBytes: len(src),
			ReducedBytes:  len(reduced),
			CreatedAt:     time.Now().UnixMilli(),
		}
		if err := e.DB.SaveMap(rec); err != nil {
			return nil, fmt.Errorf("archive map: %w", err)
		}
		report.MapID = rec.ID
	}

	return report, nil
}

// ReconstructFile replays a sidecar map against a reduced file and
// writes the result. Discrepancies are returned in the report, not
// treated as errors.
func (e *Engine) ReconstructFile(reducedPath, mapPath, outPath string) (*FileReport, error) {
	reduced, err := os.ReadFile(reducedPath)
	if err != nil {
		return nil, fmt.Errorf("read reduced: %w", err)
	}
	mapData, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}

	m, err := reduce.ParseMap(mapData)
	if err != nil {
		return nil, err
	}

	res, err := reduce.Reconstruct(string(reduced), m)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", reducedPath, err)
	}

	if outPath == "" {
		ext := filepath.Ext(reducedPath)
		outPath = strings.TrimSuffix(reducedPath, ext) + ".out" + ext
	}
	if err := os.WriteFile(outPath, []byte(res.Text), 0644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	return &FileReport{
		Path:          reducedPath,
		OutPath:       outPath,
		MapPath:       mapPath,
		SourceHash:    SourceHash([]byte(res.Text)),
		Stats:         ComputeStats(res.Text, string(reduced)),
		Discrepancies: res.Discrepancies,
	}, nil
}
