package discovery

import (
	"context"
	"sync"
	"time"

	"bookworld/internal/catalog"
	"bookworld/internal/notify"
	"bookworld/internal/platform/openlibrary"

	"go.uber.org/zap"
)

const DefaultMaxViews = 10000

// Searcher runs a catalog query.
type Searcher interface {
	Search(ctx context.Context, params openlibrary.SearchParams) ([]catalog.BookSummary, error)
}

type trackedView struct {
	view    *View
	touched time.Time
}

// Service keeps one discover View per visitor.
type Service struct {
	catalog  Searcher
	log      *zap.Logger
	now      func() time.Time
	maxViews int

	mu    sync.Mutex
	views map[string]*trackedView
}

func NewService(searcher Searcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog:  searcher,
		log:      log,
		now:      time.Now,
		maxViews: DefaultMaxViews,
		views:    make(map[string]*trackedView),
	}
}

// View returns the visitor's discover view, creating it on first use.
func (s *Service) View(visitorID string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if tv, ok := s.views[visitorID]; ok {
		tv.touched = now
		return tv.view
	}
	if len(s.views) >= s.maxViews {
		s.evictOldestLocked()
	}
	tv := &trackedView{view: NewView(), touched: now}
	s.views[visitorID] = tv
	return tv.view
}

func (s *Service) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, tv := range s.views {
		if oldestKey == "" || tv.touched.Before(oldest) {
			oldestKey, oldest = k, tv.touched
		}
	}
	delete(s.views, oldestKey)
}

// Search runs f for the visitor's view. stale is true when a newer search
// for the same view started before this one finished; the returned
// snapshot is then the view as it currently stands.
func (s *Service) Search(ctx context.Context, visitorID string, f Filters) (snap Snapshot, stale bool) {
	view := s.View(visitorID)
	f = f.Normalize()
	gen := view.Begin(f)

	results, err := s.catalog.Search(ctx, f.Params(s.now()))
	snap, applied := view.Complete(gen, results, err)
	if !applied {
		s.log.Debug("discard stale search result",
			zap.String("visitor_id", visitorID), zap.Uint64("generation", gen))
		return snap, true
	}
	if err != nil {
		s.log.Warn("catalog search failed",
			zap.String("visitor_id", visitorID), zap.String("q", f.SearchTerm()), zap.Error(err))
		notify.FromContext(ctx).Error("Error", "Failed to fetch books. Please try again.")
	}
	return snap, false
}
