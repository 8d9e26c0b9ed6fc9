package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contractkit/playbookd/internal/parser"
	"github.com/contractkit/playbookd/internal/pipeline"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.Allowed(filename, s.cfg.AllowedExtensions) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s (allowed: %s)",
			filepath.Ext(filename), strings.Join(s.cfg.AllowedExtensions, ", ")), http.StatusBadRequest)
		return
	}

	opts := pipeline.Options{
		AgreementType: r.FormValue("agreement_type"),
		UserRole:      r.FormValue("user_role"),
		RiskTolerance: r.FormValue("risk_tolerance"),
	}

	jobID := uuid.NewString()
	uploadPath, err := s.saveUpload(file, jobID, filename)
	if err != nil {
		s.log.Error("save upload", "error", err)
		if strings.Contains(err.Error(), "exceeds max size") {
			jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	job := pipeline.NewJob(jobID, filename, uploadPath, opts)
	s.runner.Jobs().Put(job)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"job_id":      job.ID,
		"status":      job.Snapshot().Status,
		"process_url": fmt.Sprintf("/api/jobs/%s/process", job.ID),
		"status_url":  fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

func (s *Server) saveUpload(file io.Reader, jobID, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.UploadDir,
		fmt.Sprintf("%d_%s_%s", time.Now().Unix(), jobID, filename))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > s.cfg.MaxUploadBytes {
		os.Remove(path)
		return "", fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return path, nil
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	job := s.runner.Jobs().Get(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	// Re-processing a finished job is a no-op; just report where it ended up.
	if status, _ := job.CurrentStatus(); status == pipeline.StatusProcessing {
		s.runner.Run(r.Context(), job)
	}

	s.writeJobStatus(w, job)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job := s.runner.Jobs().Get(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	s.writeJobStatus(w, job)
}

func (s *Server) writeJobStatus(w http.ResponseWriter, job *pipeline.Job) {
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":        snap.ID,
		"filename":      snap.Filename,
		"status":        snap.Status,
		"percent":       snap.Percent,
		"message":       snap.Message,
		"chunks_total":  snap.ChunksTotal,
		"chunks_failed": snap.ChunksFailed,
	}
	if snap.Error != "" {
		resp["error"] = snap.Error
	}
	if snap.Status == pipeline.StatusCompleted {
		resp["download_url"] = fmt.Sprintf("/api/jobs/%s/download", snap.ID)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job := s.runner.Jobs().Get(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	status, outPath := job.CurrentStatus()
	if status != pipeline.StatusCompleted || outPath == "" {
		jsonError(w, fmt.Sprintf("playbook not ready (status: %s)", status), http.StatusConflict)
		return
	}

	base := strings.TrimSuffix(job.Snapshot().Filename, filepath.Ext(job.Snapshot().Filename))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_playbook.xlsx"`, base))
	http.ServeFile(w, r, outPath)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
