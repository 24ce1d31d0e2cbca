package server

import (
	"sync"

	"github.com/edgefn/modelgate/internal/config"
	"github.com/edgefn/modelgate/internal/lang"
)

// state holds the reloadable runtime settings shared by all requests. Config
// file changes and SIGHUP swap values here; request handlers only read.
type state struct {
	mu            sync.RWMutex
	modelID       string
	ownedBy       string
	gate          *lang.Gate
	visionEnabled bool
	startedAt     int64
}

func (s *state) ModelID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modelID
}

func (s *state) OwnedBy() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownedBy
}

func (s *state) Gate() *lang.Gate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate
}

func (s *state) VisionEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visionEnabled
}

func (s *state) StartedAtUnix() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

func (s *state) SetStartedAtUnix(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedAt = ts
}

// ApplyConfig installs the reloadable subset of cfg. The language detector is
// kept; only the supported set is rebuilt.
func (s *state) ApplyConfig(cfg *config.Config, det lang.Detector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = cfg.Model.ID
	s.ownedBy = cfg.Model.OwnedBy
	s.gate = lang.NewGate(det, cfg.Languages)
	s.visionEnabled = cfg.Vision.Enabled
}
