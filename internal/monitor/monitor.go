// Package monitor reports engine health at a fixed interval: simulation
// time, captured step count, and connected client count.
package monitor

import (
	"sync"
	"time"

	"github.com/opsim/engine/internal/logging"
)

// Dependencies holds all dependencies for the monitor service. The
// callbacks decouple it from the packages that own the numbers.
type Dependencies struct {
	LogManager  *logging.SlogManager
	SimTime     func() int64
	StepCount   func() int
	ClientCount func() int
}

// Status is one sampled report.
type Status struct {
	SimTime     int64 `json:"simTime"`
	StepCount   int   `json:"stepCount"`
	ClientCount int   `json:"clientCount"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus samples the current engine status.
func (s *Service) GetStatus() Status {
	st := Status{}
	if s.deps.SimTime != nil {
		st.SimTime = s.deps.SimTime()
	}
	if s.deps.StepCount != nil {
		st.StepCount = s.deps.StepCount()
	}
	if s.deps.ClientCount != nil {
		st.ClientCount = s.deps.ClientCount()
	}
	return st
}

// Start begins periodic status logging. A second Start is a no-op.
func (s *Service) Start(interval time.Duration) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				st := s.GetStatus()
				s.deps.LogManager.Logger().Info("Engine status",
					"simTime", st.SimTime,
					"steps", st.StepCount,
					"clients", st.ClientCount,
				)
			}
		}
	}()
}

// Stop halts status logging.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}
