package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusOK, map[string]bool{"ok": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if !body["ok"] {
		t.Error("body mismatch")
	}
}

func TestWriteErrorWithReason(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteForbidden(rec, "access denied", "insufficient_role")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Error != "access denied" || body.Reason != "insufficient_role" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteErrorOmitsEmptyReason(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNotFound(rec, "project not found")

	if strings.Contains(rec.Body.String(), "reason") {
		t.Errorf("empty reason should be omitted: %s", rec.Body.String())
	}
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		ProjectIDs []string `json:"project_ids"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"project_ids":["p-1","p-2"]}`))
	if err := ParseJSON(r, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dest.ProjectIDs) != 2 {
		t.Errorf("got %v", dest.ProjectIDs)
	}
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	var dest struct {
		ProjectIDs []string `json:"project_ids"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"bogus":1}`))
	if err := ParseJSON(r, &dest); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestParseJSONOrErrorWritesBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/", strings.NewReader("not json"))

	var dest map[string]string
	if ParseJSONOrError(rec, r, &dest) {
		t.Error("expected failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestParsePathString(t *testing.T) {
	router := mux.NewRouter()
	var got string
	var gotErr error
	router.HandleFunc("/projects/{project_id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = ParsePathString(r, "project_id")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/projects/proj-1", nil))
	if gotErr != nil || got != "proj-1" {
		t.Errorf("got %q, err %v", got, gotErr)
	}
}

func TestParsePathStringMissing(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if _, err := ParsePathString(r, "project_id"); err == nil {
		t.Error("expected error for missing parameter")
	}
}
