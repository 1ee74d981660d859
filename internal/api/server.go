package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/weatherdash/internal/charts"
	"github.com/lox/weatherdash/internal/store"
)

// PageTitle is the browser title of every page.
const PageTitle = "Weather Data Analysis"

// Config holds the shell settings that are not per-request.
type Config struct {
	Port           string
	MaxUploadBytes int64
	// SessionTTL bounds how long an upload is retained after it was made.
	SessionTTL time.Duration
	Palette    charts.Palette
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		Port:           "8080",
		MaxUploadBytes: 32 << 20,
		SessionTTL:     24 * time.Hour,
		Palette:        charts.DefaultPalette,
	}
}

type Server struct {
	store    *store.Store
	cfg      Config
	tmpl     *template.Template
	validate *validator.Validate
}

func NewServer(st *store.Store, cfg Config) *Server {
	def := DefaultConfig()
	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.Palette == (charts.Palette{}) {
		cfg.Palette = def.Palette
	}
	return &Server{
		store:    st,
		cfg:      cfg,
		tmpl:     newTemplates(),
		validate: validator.New(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/download", s.handleDownload)
	mux.HandleFunc("/download.xlsx", s.handleDownloadXLSX)
	mux.HandleFunc("/charts/", s.handleChart)
	mux.HandleFunc("/og-image.png", s.handleOGImage)
	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
