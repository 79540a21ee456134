package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/types"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Stage string `json:"stage,omitempty"`
}

// writeJSON encodes v before committing status, so an unencodable value becomes a 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to encode response", err, "path", r.URL.Path)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorBody{
			Error: "internal server error",
			Kind:  string(apperr.KindInternal),
		})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn(r.Context(), "Failed to write response", "path", r.URL.Path, "error", err)
	}
}

// writeError maps err to its HTTP status. Unclassified errors are reported as internal without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		logger.ErrorWithErr(r.Context(), "Unhandled request error", err, "path", r.URL.Path)
		writeJSON(w, r, http.StatusInternalServerError, errorBody{
			Error: "internal server error",
			Kind:  string(apperr.KindInternal),
		})
		return
	}
	writeJSON(w, r, apperr.HTTPStatus(e.Kind), errorBody{
		Error: e.Error(),
		Kind:  string(e.Kind),
		Stage: e.Stage,
	})
}

// tickerParam reads ticker, falling back to symbol.
func tickerParam(r *http.Request) (string, error) {
	q := r.URL.Query()
	raw := q.Get("ticker")
	if raw == "" {
		raw = q.Get("symbol")
	}
	return market.NormalizeTicker(raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches, err := s.d.Searcher.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if matches == nil {
		matches = []types.SymbolMatch{}
	}
	writeJSON(w, r, http.StatusOK, matches)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker, err := tickerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.d.Analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ticker, err := tickerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	raw := q.Get("range")
	if raw == "" {
		raw = q.Get("period")
	}
	rng, err := market.ParseRange(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.d.History.Range(r.Context(), ticker, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, points)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ticker, err := tickerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.d.Metrics.Metrics(r.Context(), ticker)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}
