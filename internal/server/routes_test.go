package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleSource = "# setup\nx = 1  # inline\ny = 2\n"

func postJSON(t *testing.T, srv *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestReduceEndpoint(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reduce", map[string]any{"source": sampleSource})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Reduced string          `json:"reduced"`
		Map     json.RawMessage `json:"map"`
		Stats   struct {
			OriginalBytes int `json:"original_bytes"`
			ReducedBytes  int `json:"reduced_bytes"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if strings.Contains(resp.Reduced, "#") {
		t.Errorf("reduced text still contains comments: %q", resp.Reduced)
	}
	if len(resp.Map) == 0 {
		t.Error("expected map in response")
	}
	if resp.Stats.OriginalBytes != len(sampleSource) {
		t.Errorf("original_bytes = %d, want %d", resp.Stats.OriginalBytes, len(sampleSource))
	}
	if resp.Stats.ReducedBytes >= resp.Stats.OriginalBytes {
		t.Errorf("reduced_bytes = %d, not smaller than %d", resp.Stats.ReducedBytes, resp.Stats.OriginalBytes)
	}
}

func TestReduceEndpointMissingSource(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reduce", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReduceEndpointInvalidJSON(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/reduce", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReduceEndpointSyntaxError(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reduce", map[string]any{"source": "x = 'unterminated\n"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnprocessableEntity, w.Body.String())
	}
}

func TestReduceReconstructRoundTrip(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reduce", map[string]any{"source": sampleSource})
	if w.Code != http.StatusOK {
		t.Fatalf("reduce status = %d; body: %s", w.Code, w.Body.String())
	}

	var reduced struct {
		Reduced string          `json:"reduced"`
		Map     json.RawMessage `json:"map"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reduced); err != nil {
		t.Fatalf("decode reduce body: %v", err)
	}

	w = postJSON(t, srv, "/api/reconstruct", map[string]any{
		"reduced": reduced.Reduced,
		"map":     json.RawMessage(reduced.Map),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reconstruct status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Text          string `json:"text"`
		Discrepancies []any  `json:"discrepancies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode reconstruct body: %v", err)
	}

	if resp.Text != sampleSource {
		t.Errorf("round trip = %q, want %q", resp.Text, sampleSource)
	}
	if len(resp.Discrepancies) != 0 {
		t.Errorf("discrepancies = %v, want none", resp.Discrepancies)
	}
}

func TestReconstructByMapID(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reduce", map[string]any{"source": sampleSource, "store": true})
	if w.Code != http.StatusOK {
		t.Fatalf("reduce status = %d; body: %s", w.Code, w.Body.String())
	}

	var reduced struct {
		Reduced string `json:"reduced"`
		MapID   string `json:"map_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reduced); err != nil {
		t.Fatalf("decode reduce body: %v", err)
	}
	if reduced.MapID == "" {
		t.Fatal("expected map_id when store requested")
	}

	w = postJSON(t, srv, "/api/reconstruct", map[string]any{
		"reduced": reduced.Reduced,
		"map_id":  reduced.MapID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reconstruct status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Text string `json:"text"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Text != sampleSource {
		t.Errorf("round trip via archive = %q, want %q", resp.Text, sampleSource)
	}
}

func TestReconstructMissingMap(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reconstruct", map[string]any{"reduced": "x = 1\n"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReconstructUnknownMapID(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reconstruct", map[string]any{
		"reduced": "x = 1\n",
		"map_id":  "no-such-map",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestReconstructCorruptMap(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reconstruct", map[string]any{
		"reduced": "x = 1\n",
		"map":     json.RawMessage(`{"version":0,"tokens":[],"edits":[]}`),
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnprocessableEntity, w.Body.String())
	}
}

func TestMapArchiveRoutes(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/api/reduce", map[string]any{
		"source": sampleSource,
		"path":   "/src/sample.py",
		"store":  true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reduce status = %d; body: %s", w.Code, w.Body.String())
	}
	var reduced struct {
		MapID string `json:"map_id"`
	}
	json.Unmarshal(w.Body.Bytes(), &reduced)

	// List
	req := httptest.NewRequest("GET", "/api/maps", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Count int `json:"count"`
		Maps  []struct {
			ID       string `json:"id"`
			FilePath string `json:"file_path"`
		} `json:"maps"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Count != 1 || len(list.Maps) != 1 {
		t.Fatalf("count = %d, want 1", list.Count)
	}
	if list.Maps[0].ID != reduced.MapID {
		t.Errorf("listed id = %q, want %q", list.Maps[0].ID, reduced.MapID)
	}
	if list.Maps[0].FilePath != "/src/sample.py" {
		t.Errorf("file_path = %q, want /src/sample.py", list.Maps[0].FilePath)
	}

	// Get
	req = httptest.NewRequest("GET", "/api/maps/"+reduced.MapID, nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// Delete
	req = httptest.NewRequest("DELETE", "/api/maps/"+reduced.MapID, nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	// Delete again
	req = httptest.NewRequest("DELETE", "/api/maps/"+reduced.MapID, nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
