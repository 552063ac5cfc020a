package app

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"stock-dashboard/models"
)

// Session holds one viewer's active symbol and its refresh job
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	dashboard  models.Dashboard
	generation uint64 // bumped whenever the active quote is replaced or discarded
	loadSeq    uint64 // latest LoadSymbol request; older completions are dropped
	refreshID  cron.EntryID
	lastSeen   time.Time
	closed     bool
}

func newSession(id string, demo bool, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		dashboard: models.Dashboard{Demo: demo, Series: []models.SeriesPoint{}, Insights: []models.Insight{}},
		lastSeen:  now,
	}
}

// snapshot returns a copy of the dashboard; callers must hold s.mu
func (s *Session) snapshot() models.Dashboard {
	return s.dashboard.Clone()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
