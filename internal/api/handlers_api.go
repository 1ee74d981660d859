package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
)

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rn, err := s.runPipeline(r)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	if rn == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no dataset uploaded"})
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(summaryResponse(rn)); err != nil {
		log.Printf("api: encode summary: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "summary encoding failed"})
		return
	}
	w.Write(buf.Bytes())
}
