package server

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/gexbot-analyzer/internal/chain"
	"github.com/dgnsrekt/gexbot-analyzer/internal/config"
	"github.com/dgnsrekt/gexbot-analyzer/internal/data"
	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
	"github.com/dgnsrekt/gexbot-analyzer/internal/metrics"
	"github.com/dgnsrekt/gexbot-analyzer/internal/ws"
)

type Server struct {
	loader   data.ChainLoader
	reloader *ReloadManager
	analyzer *gex.Analyzer
	calendar *chain.MarketCalendar
	metrics  *metrics.Metrics
	limiter  *rate.Limiter
	hub      *ws.Hub
	now      func() time.Time
	logger   *zap.Logger
}

func NewServer(
	reloader *ReloadManager,
	analyzer *gex.Analyzer,
	calendar *chain.MarketCalendar,
	cfg config.ServerConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	return &Server{
		loader:   reloader.Loader(),
		reloader: reloader,
		analyzer: analyzer,
		calendar: calendar,
		metrics:  m,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		now:      time.Now,
		logger:   logger,
	}
}

// AttachHub enables pushing every analysis to the hub's symbol group.
func (s *Server) AttachHub(hub *ws.Hub) {
	s.hub = hub
}

// KnownSymbol reports whether symbol is currently loaded. It is the hub's group validator.
func (s *Server) KnownSymbol(symbol string) bool {
	_, err := s.loader.Get(symbol)
	return err == nil
}
