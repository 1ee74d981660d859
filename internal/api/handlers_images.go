package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lox/weatherdash/internal/charts"
	"github.com/lox/weatherdash/internal/metrics"
)

// handleChart serves /charts/{name}.png for the caller's dataset and selection.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimPrefix(r.URL.Path, "/charts/")
	if !strings.HasSuffix(file, ".png") {
		http.NotFound(w, r)
		return
	}
	name := charts.Name(strings.TrimSuffix(file, ".png"))
	if !name.Valid() {
		http.NotFound(w, r)
		return
	}

	rn, err := s.runPipeline(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if rn == nil {
		http.Error(w, "no dataset uploaded", http.StatusNotFound)
		return
	}

	start := time.Now()
	data, err := charts.Render(name, rn.Report)
	metrics.ChartLatency.WithLabelValues(string(name)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChartRenders.WithLabelValues(string(name), "error").Inc()
		log.Printf("api: render %s chart: %v", name, err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}
	metrics.ChartRenders.WithLabelValues(string(name), "ok").Inc()
	servePNG(w, data, "no-store")
}

// handleOGImage serves the link preview card for the caller's dataset.
func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	card := charts.OGCardData{Title: PageTitle}

	rn, err := s.runPipeline(r)
	if err != nil {
		log.Printf("api: og image: %v", err)
	}
	if rn != nil {
		rep := rn.Report
		card.Rows = rep.Rows
		card.Start = rep.Bounds.MinDate
		card.End = rep.Bounds.MaxDate
		card.MeanTemp = rep.MeanTemp
		card.MeanRain = rep.MeanRain
	}

	data, err := charts.OGCard(card, s.cfg.Palette)
	if err != nil {
		log.Printf("api: og image: %v", err)
		http.Error(w, "image generation failed", http.StatusInternalServerError)
		return
	}
	servePNG(w, data, "public, max-age=300")
}

func servePNG(w http.ResponseWriter, data []byte, cacheControl string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.Write(data)
}
