package presence

import (
	"context"
	"time"

	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"go.uber.org/zap"
)

// SweepService runs the typing-indicator sweep on an interval. The sweep is
// pure storage reclamation; ListTyping stays correct whether or not it runs.
type SweepService struct {
	tracker  *Tracker
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
}

// NewSweepService creates a sweep service over the tracker.
func NewSweepService(tracker *Tracker, interval time.Duration) *SweepService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SweepService{
		tracker:  tracker,
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// Start begins the periodic sweep.
func (s *SweepService) Start() {
	logger.Log.Info("starting typing indicator sweep service",
		zap.Duration("interval", s.interval),
	)
	go s.run()
}

// Stop stops the sweep service.
func (s *SweepService) Stop() {
	s.cancel()
}

func (s *SweepService) run() {
	// Run immediately on startup
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *SweepService) sweep() {
	removed, err := s.tracker.Sweep(s.ctx)
	if err != nil {
		logger.ErrorWithFields("typing indicator sweep failed", err)
		return
	}
	if removed > 0 {
		metrics.Get().TypingSweepRemovals.WithLabelValues().Add(float64(removed))
		logger.Log.Debug("typing indicator sweep completed",
			zap.Int64("removed", removed),
		)
	}
}
