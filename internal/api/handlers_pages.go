package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/lox/weatherdash/internal/export"
	"github.com/lox/weatherdash/internal/ingest"
	"github.com/lox/weatherdash/internal/metrics"
	"github.com/lox/weatherdash/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	rn, err := s.runPipeline(r)
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}
	s.render(w, http.StatusOK, s.dashboardFor(rn))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		s.renderError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		s.renderError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	table, err := ingest.ParseCSV(bytes.NewReader(content))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		log.Printf("api: rejected upload %q: %v", header.Filename, err)
		s.renderError(w, statusFor(err), err)
		return
	}

	now := time.Now().UTC()
	session := s.ensureSession(w, r)
	if _, err := s.store.SaveDataset(models.Dataset{
		SessionID:  session,
		Filename:   filepath.Base(header.Filename),
		Content:    content,
		UploadedAt: now,
	}); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		log.Printf("api: save upload: %v", err)
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}
	if n, err := s.store.PruneDatasets(now.Add(-s.cfg.SessionTTL)); err != nil {
		log.Printf("api: prune uploads: %v", err)
	} else if n > 0 {
		log.Printf("api: pruned %d expired uploads", n)
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	metrics.RowsIngested.Add(float64(table.Len()))
	log.Printf("api: accepted upload %q (%d rows, %d bytes)", header.Filename, table.Len(), len(content))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if id := sessionID(r); id != "" {
		if err := s.store.DeleteDataset(id); err != nil {
			log.Printf("api: reset session: %v", err)
			s.renderError(w, http.StatusInternalServerError, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "csv", export.Filename, export.ContentType, export.WriteCSV)
}

func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "xlsx", export.XLSXFilename, export.XLSXContentType, export.WriteXLSX)
}

// serveExport writes the filtered table of the caller's selection as an
// attachment.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, format, filename, contentType string, write func(io.Writer, *models.Table) error) {
	rn, err := s.runPipeline(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if rn == nil {
		http.Error(w, "no dataset uploaded", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, rn.Report.Filtered); err != nil {
		log.Printf("api: export %s: %v", format, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.DownloadsTotal.WithLabelValues(format).Inc()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

type HealthStatus struct {
	Status           string `json:"status"`
	MigrationVersion int    `json:"migration_version"`
	Datasets         int    `json:"datasets"`
	Error            string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	version, err := s.store.MigrationVersion()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(HealthStatus{Status: "error", Error: err.Error()})
		return
	}
	count, err := s.store.CountDatasets()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(HealthStatus{Status: "error", Error: err.Error()})
		return
	}

	health := HealthStatus{
		Status:           "ok",
		MigrationVersion: version,
		Datasets:         count,
	}
	if version == 0 {
		health.Status = "degraded"
	}
	json.NewEncoder(w).Encode(health)
}

// render buffers the dashboard template before writing any of the response.
func (s *Server) render(w http.ResponseWriter, status int, data *DashboardData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.Printf("api: template error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// renderError shows only the error message in the page shell.
func (s *Server) renderError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("api: %v", err)
	}
	d := s.newDashboard()
	d.Error = err.Error()
	s.render(w, status, d)
}
