package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/specdocx/internal/parser"
	"github.com/dgallion1/specdocx/internal/pipeline"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// uploadError carries the status code for a rejected upload part.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one markdown file is required", http.StatusBadRequest)
		return
	}

	inputs := make([]parser.Input, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}
		data, err := s.readPart(fh)
		if err != nil {
			writeUploadError(w, err)
			return
		}
		inputs = append(inputs, parser.Input{Name: filename, Data: data})
	}

	var template []byte
	if tpls := r.MultipartForm.File["template"]; len(tpls) > 0 {
		if ext := strings.ToLower(filepath.Ext(tpls[0].Filename)); ext != ".docx" {
			jsonError(w, fmt.Sprintf("template must be a .docx file, got %q", ext), http.StatusBadRequest)
			return
		}
		data, err := s.readPart(tpls[0])
		if err != nil {
			writeUploadError(w, err)
			return
		}
		template = data
	} else if !s.orchestrator.HasDefaultTemplate() {
		jsonError(w, "template is required", http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(inputs, template)
	if err := s.orchestrator.Submit(job); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}
	s.log.Info("job queued", "job_id", job.ID, "files", len(inputs), "custom_template", template != nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/convert/%s/status", job.ID),
	})
}

// readPart reads one uploaded file, enforcing the per-file size limit.
func (s *Server) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, &uploadError{msg: "failed to open " + fh.Filename, code: http.StatusBadRequest}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, &uploadError{msg: "failed to read " + fh.Filename, code: http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &uploadError{
			msg:  fmt.Sprintf("%s exceeds max size (%d bytes)", fh.Filename, s.cfg.MaxUploadBytes),
			code: http.StatusRequestEntityTooLarge,
		}
	}
	return data, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

// job resolves the {jobID} URL parameter, writing 404 when it is unknown.
func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleConvertDiagnostics(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":      snap.ID,
		"status":      snap.Status,
		"errors":      snap.Progress.Errors,
		"warnings":    snap.Progress.Warnings,
		"diagnostics": job.Diagnostics(),
	})
}

func (s *Server) handleConvertResult(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	doc, ok := job.Result()
	if !ok {
		jsonError(w, fmt.Sprintf("job is not completed (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}

	etag := `"` + pipeline.ContentHashHex(doc) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.docx"`, job.ID))
	w.Header().Set("ETag", etag)
	w.Write(doc)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
