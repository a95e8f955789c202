package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/chain"
	"github.com/dgnsrekt/gexbot-analyzer/internal/data"
	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
	"github.com/dgnsrekt/gexbot-analyzer/internal/report"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Symbols   int       `json:"symbols"`
	Reloading bool      `json:"reloading"`
	LoadedAt  time.Time `json:"loaded_at"`
}

type symbolInfo struct {
	Symbol   string    `json:"symbol"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
}

type symbolsResponse struct {
	Symbols []symbolInfo `json:"symbols"`
	Count   int          `json:"count"`
}

type expirationsResponse struct {
	Symbol      string             `json:"symbol"`
	Expirations []chain.Expiration `json:"expirations"`
}

type analysisRequest struct {
	Spot float64 `json:"spot"`
	// nil selects every expiration; an empty list selects none
	Expirations []string `json:"expirations"`
	HalfWidth   float64  `json:"half_width"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Symbols:   len(s.loader.Symbols()),
		Reloading: s.reloader.IsReloading(),
		LoadedAt:  s.reloader.LoadedAt(),
	})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := s.loader.Symbols()
	infos := make([]symbolInfo, 0, len(symbols))
	for _, sym := range symbols {
		snap, err := s.loader.Get(sym)
		if err != nil {
			// Swapped out by a concurrent reload
			continue
		}
		infos = append(infos, symbolInfo{Symbol: snap.Symbol, Rows: len(snap.Rows), LoadedAt: snap.LoadedAt})
	}
	writeJSON(w, http.StatusOK, symbolsResponse{Symbols: infos, Count: len(infos)})
}

func (s *Server) handleExpirations(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	exps := chain.Expirations(snap.Rows, s.now())
	if s.calendar != nil {
		exps = s.calendar.Annotate(exps)
	}
	if exps == nil {
		exps = []chain.Expiration{}
	}
	writeJSON(w, http.StatusOK, expirationsResponse{Symbol: snap.Symbol, Expirations: exps})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p := gex.Params{
		Spot:        req.Spot,
		HalfWidth:   req.HalfWidth,
		Expirations: chain.CurrentSet(snap.Rows, s.now()),
	}
	if req.Expirations != nil {
		p.Expirations = chain.IncludeSet(req.Expirations)
	}

	started := time.Now()
	analysis, err := s.analyzer.Analyze(r.Context(), snap.Rows, p)
	s.metrics.ObserveAnalysis(snap.Symbol, started, err)
	if err != nil {
		s.writeAnalysisError(w, snap.Symbol, err)
		return
	}

	rep := report.FromAnalysis(analysis)
	rep.ID = uuid.NewString()
	rep.Symbol = snap.Symbol

	body, err := json.Marshal(rep)
	if err != nil {
		s.logger.Error("failed to encode report", zap.String("symbol", snap.Symbol), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode report")
		return
	}

	s.logger.Debug("analysis complete",
		zap.String("symbol", snap.Symbol),
		zap.String("id", rep.ID),
		zap.Int("strikes", len(rep.Rows)),
		zap.Duration("duration", time.Since(started)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)

	if s.hub != nil {
		s.hub.BroadcastReport(snap.Symbol, body)
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.reloader.Reload(r.Context())
	if errors.Is(err, ErrReloadInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// snapshot resolves the {symbol} path parameter, writing a 404 when it is not loaded.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*data.Snapshot, bool) {
	symbol := chi.URLParam(r, "symbol")
	snap, err := s.loader.Get(symbol)
	if errors.Is(err, data.ErrNotFound) {
		writeError(w, http.StatusNotFound, "symbol not found: "+symbol)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return snap, true
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, symbol string, err error) {
	var rowErrs *gex.RowErrors
	switch {
	case errors.As(err, &rowErrs):
		details := make([]string, 0, len(rowErrs.Rows))
		for _, row := range rowErrs.Rows {
			details = append(details, row.Error())
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "chain contains malformed rows", Details: details})
	case errors.Is(err, gex.ErrInvalidSpot), errors.Is(err, gex.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gex.ErrEmptyWindow):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("analysis failed", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
