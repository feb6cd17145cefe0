package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lazypower/condense/internal/engine"
	"github.com/lazypower/condense/internal/pytok"
	"github.com/lazypower/condense/internal/reduce"
	"github.com/lazypower/condense/internal/store"
)

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source  string          `json:"source"`
		Path    string          `json:"path"`
		Options *reduce.Options `json:"options"`
		Store   bool            `json:"store"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "source required")
		return
	}

	opts := s.opts
	if req.Options != nil {
		opts = *req.Options
	}

	reduced, m, err := reduce.Reduce(req.Source, opts)
	if err != nil {
		var syn *pytok.SyntaxError
		if errors.As(err, &syn) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mapData, err := m.Marshal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"reduced": reduced,
		"map":     json.RawMessage(mapData),
		"stats":   engine.ComputeStats(req.Source, reduced),
	}

	if req.Store {
		if s.db == nil {
			writeError(w, http.StatusServiceUnavailable, "no database configured")
			return
		}
		rec := store.ArchivedMap{
			ID:            uuid.NewString(),
			SourceHash:    engine.SourceHash([]byte(req.Source)),
			FilePath:      req.Path,
			MapJSON:       string(mapData),
			OriginalBytes: len(req.Source),
			ReducedBytes:  len(reduced),
			CreatedAt:     time.Now().UnixMilli(),
		}
		if err := s.db.SaveMap(rec); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["map_id"] = rec.ID
		resp["source_hash"] = rec.SourceHash
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reduced string          `json:"reduced"`
		Map     json.RawMessage `json:"map"`
		MapID   string          `json:"map_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var mapData []byte
	switch {
	case len(req.Map) > 0:
		mapData = req.Map
	case req.MapID != "":
		if s.db == nil {
			writeError(w, http.StatusServiceUnavailable, "no database configured")
			return
		}
		rec, err := s.db.GetMap(req.MapID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "map not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		mapData = []byte(rec.MapJSON)
	default:
		writeError(w, http.StatusBadRequest, "map or map_id required")
		return
	}

	m, err := reduce.ParseMap(mapData)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := reduce.Reconstruct(req.Reduced, m)
	if err != nil {
		var syn *pytok.SyntaxError
		var corrupt *reduce.CorruptError
		if errors.As(err, &syn) || errors.As(err, &corrupt) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":          res.Text,
		"discrepancies": res.Discrepancies,
	})
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	maps, err := s.db.ListMaps(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type mapJSON struct {
		ID            string `json:"id"`
		SourceHash    string `json:"source_hash"`
		FilePath      string `json:"file_path,omitempty"`
		OriginalBytes int    `json:"original_bytes"`
		ReducedBytes  int    `json:"reduced_bytes"`
		CreatedAt     int64  `json:"created_at"`
	}
	out := make([]mapJSON, len(maps))
	for i, m := range maps {
		out[i] = mapJSON{m.ID, m.SourceHash, m.FilePath, m.OriginalBytes, m.ReducedBytes, m.CreatedAt}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(out),
		"maps":  out,
	})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	rec, err := s.db.GetMap(chi.URLParam(r, "mapID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "map not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":             rec.ID,
		"source_hash":    rec.SourceHash,
		"file_path":      rec.FilePath,
		"map":            json.RawMessage(rec.MapJSON),
		"original_bytes": rec.OriginalBytes,
		"reduced_bytes":  rec.ReducedBytes,
		"created_at":     rec.CreatedAt,
	})
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	err := s.db.DeleteMap(chi.URLParam(r, "mapID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "map not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
