// Package server exposes the converter over HTTP: POST an SVG or PBM
// document to /convert and fetch recent conversions from /history.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heli2src/svg2pbm/internal/convert"
	"github.com/heli2src/svg2pbm/internal/journal"
	"github.com/heli2src/svg2pbm/pbm"
)

type Server struct {
	Converter *convert.Converter
	// Journal may be nil, in which case /history responds 404.
	Journal *journal.Repository
	// Defaults for requests that don't pass width/height/mode.
	Width, Height int
	Mode          pbm.Mode
}

func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/history", s.handleHistory)
	return mux
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST method is supported", http.StatusMethodNotAllowed)
		return
	}

	var svg bool
	switch r.Header.Get("Content-Type") {
	case "image/svg+xml":
		svg = true
	case "image/x-portable-bitmap", "application/octet-stream":
		svg = false
	default:
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	width, height, mode := s.Width, s.Height, s.Mode
	var err error
	if v := r.URL.Query().Get("width"); v != "" {
		if width, err = strconv.Atoi(v); err != nil || width <= 0 {
			http.Error(w, "Invalid width", http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("height"); v != "" {
		if height, err = strconv.Atoi(v); err != nil || height <= 0 {
			http.Error(w, "Invalid height", http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("mode"); v != "" {
		if mode, err = pbm.ParseMode(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	encoded, err := s.Converter.Bytes(body, svg, width, height, mode)
	if err != nil {
		slog.Error("Conversion failed", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/x-portable-bitmap")
	w.WriteHeader(http.StatusOK)
	w.Write(encoded)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Only GET method is supported", http.StatusMethodNotAllowed)
		return
	}
	if s.Journal == nil {
		http.Error(w, "No journal configured", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	entries, err := s.Journal.Recent(limit)
	if err != nil {
		slog.Error("Couldn't read journal", "err", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "journal unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Couldn't write history", "err", err)
	}
}
