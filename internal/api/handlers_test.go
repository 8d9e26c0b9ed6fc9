package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/contractkit/playbookd/internal/analysis"
	"github.com/contractkit/playbookd/internal/config"
	"github.com/contractkit/playbookd/internal/pipeline"
	"github.com/contractkit/playbookd/internal/playbook"
)

type stubClient struct{}

func (stubClient) Analyze(_ context.Context, _ analysis.Request) (*playbook.ChunkResult, error) {
	return &playbook.ChunkResult{
		Summary: &playbook.Summary{Title: "Stub Agreement", ExecutiveSummary: "ok"},
		Clauses: []playbook.ClauseEntry{{Title: "Term", RiskLevel: playbook.RiskGreen}},
	}, nil
}
func (stubClient) Provider() string { return "stub" }
func (stubClient) Model() string    { return "stub-model" }
func (stubClient) Close()           {}

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	cfg := config.Config{
		PlaybookAPIKey:    apiKey,
		UploadDir:         t.TempDir(),
		OutputDir:         t.TempDir(),
		MaxUploadBytes:    1 << 20,
		AllowedExtensions: []string{"pdf", "docx", "xlsx", "txt"},
		ChunkSize:         40000,
		JobTTL:            time.Hour,
	}
	render := func(_ *playbook.Playbook, path string) error {
		return os.WriteFile(path, []byte("xlsx"), 0o644)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := pipeline.NewRunner(cfg, stubClient{}, render, log)
	return NewServer(runner, analysis.NewCallStats(time.Minute), log, cfg)
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["provider"] != "stub" {
		t.Errorf("provider = %v", body["provider"])
	}
}

func TestUpload_RejectsDisallowedExtension(t *testing.T) {
	s := testServer(t, "")
	buf, ct := multipartUpload(t, "malware.exe", []byte("MZ"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	s := testServer(t, "")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("agreement_type", "NDA")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadProcessDownload_FullFlow(t *testing.T) {
	s := testServer(t, "")

	buf, ct := multipartUpload(t, "nda.txt", []byte("This agreement is made between the parties."), map[string]string{
		"agreement_type": "NDA",
		"user_role":      "customer",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}
	var up struct {
		JobID      string `json:"job_id"`
		ProcessURL string `json:"process_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &up); err != nil {
		t.Fatal(err)
	}
	if up.JobID == "" {
		t.Fatal("no job_id returned")
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, up.ProcessURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d: %s", rec.Code, rec.Body.String())
	}
	var proc struct {
		Status      string `json:"status"`
		Percent     int    `json:"percent"`
		DownloadURL string `json:"download_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &proc); err != nil {
		t.Fatal(err)
	}
	if proc.Status != "completed" {
		t.Fatalf("job status = %q: %s", proc.Status, rec.Body.String())
	}
	if proc.Percent != 100 {
		t.Errorf("percent = %d, want 100", proc.Percent)
	}
	if proc.DownloadURL == "" {
		t.Fatal("no download_url on completed job")
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, proc.DownloadURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="nda_playbook.xlsx"` {
		t.Errorf("content-disposition = %q", got)
	}
}

func TestProcess_IdempotentForFinishedJob(t *testing.T) {
	s := testServer(t, "")

	buf, ct := multipartUpload(t, "nda.txt", []byte("agreement text"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var up struct {
		JobID string `json:"job_id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &up)

	for range 2 {
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/jobs/"+up.JobID+"/process", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("process status = %d", rec.Code)
		}
	}
	var proc struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &proc)
	if proc.Status != "completed" {
		t.Errorf("status after reprocess = %q", proc.Status)
	}
}

func TestStatus_UnknownJob(t *testing.T) {
	s := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDownload_NotReady(t *testing.T) {
	s := testServer(t, "")

	buf, ct := multipartUpload(t, "nda.txt", []byte("agreement text"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var up struct {
		JobID string `json:"job_id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &up)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+up.JobID+"/download", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestAuth_RequiredWhenKeyConfigured(t *testing.T) {
	s := testServer(t, "secret")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/x/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/x/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/x/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status with good token = %d, want 404 (auth passed)", rec.Code)
	}

	// Health stays public.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestAnalysisStats(t *testing.T) {
	s := testServer(t, "")
	s.stats.Record(120, false)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/analysis", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Provider string `json:"provider"`
		Stats    struct {
			Count int `json:"count"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Provider != "stub" {
		t.Errorf("provider = %q", body.Provider)
	}
	if body.Stats.Count != 1 {
		t.Errorf("count = %d, want 1", body.Stats.Count)
	}
}
