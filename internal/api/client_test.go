package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHealthcheck(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	if err := New(ts.URL, "").Healthcheck(); err != nil {
		t.Errorf("Healthcheck: %v", err)
	}
}

func TestHealthcheck_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	if err := New(ts.URL, "").Healthcheck(); err == nil {
		t.Errorf("expected error for non-200 status")
	}
}

func TestUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec1.json.gz")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotSecret, gotScenarioID, gotFilename string
	var gotFile []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/recordings/add" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotSecret = r.FormValue("secret")
		gotScenarioID = r.FormValue("scenarioId")
		gotFilename = r.FormValue("filename")
		file, _, err := r.FormFile("file")
		if err == nil {
			buf := make([]byte, 64)
			n, _ := file.Read(buf)
			gotFile = buf[:n]
			file.Close()
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := New(ts.URL, "key123")
	err := c.Upload(path, UploadMetadata{ScenarioID: "scn1", ScenarioName: "Test", DurationSecs: 300})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotSecret != "key123" {
		t.Errorf("secret = %q", gotSecret)
	}
	if gotScenarioID != "scn1" {
		t.Errorf("scenarioId = %q", gotScenarioID)
	}
	if gotFilename != "rec1.json.gz" {
		t.Errorf("filename = %q", gotFilename)
	}
	if string(gotFile) != "payload" {
		t.Errorf("file content = %q", gotFile)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	c := New("http://localhost:1", "")
	if err := c.Upload(filepath.Join(t.TempDir(), "nope.gz"), UploadMetadata{}); err == nil {
		t.Errorf("expected error for missing file")
	}
}
