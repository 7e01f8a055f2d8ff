package discovery

import (
	"sync"

	"bookworld/internal/catalog"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateEmpty   State = "empty"
	StateError   State = "error"
)

// Snapshot is what the discover page renders at one moment.
type Snapshot struct {
	State      State                 `json:"state"`
	Filters    Filters               `json:"filters"`
	URL        string                `json:"url"`
	Results    []catalog.BookSummary `json:"results"`
	Generation uint64                `json:"generation"`
}

// View is the discover page state machine. Every filter change starts a new
// generation; only the newest generation may complete.
type View struct {
	mu      sync.Mutex
	state   State
	filters Filters
	results []catalog.BookSummary
	gen     uint64
}

func NewView() *View {
	return &View{state: StateIdle, filters: Filters{}.Normalize()}
}

// Begin moves the view to loading for f and returns the ticket the
// matching Complete must present.
func (v *View) Begin(f Filters) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	v.state = StateLoading
	v.filters = f.Normalize()
	return v.gen
}

// Complete applies a finished fetch. It reports false, leaving the view
// untouched, when gen has been superseded.
//
// A failed fetch returns a snapshot in the error state carrying the last
// successful results; the view itself settles straight back to loaded or
// empty so the error is only ever seen once.
func (v *View) Complete(gen uint64, results []catalog.BookSummary, err error) (Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		return v.snapshotLocked(), false
	}

	if err != nil {
		v.state = settledState(v.results)
		snap := v.snapshotLocked()
		snap.State = StateError
		return snap, true
	}

	v.results = results
	v.state = settledState(results)
	return v.snapshotLocked(), true
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	results := v.results
	if results == nil {
		results = []catalog.BookSummary{}
	}
	return Snapshot{
		State:      v.state,
		Filters:    v.filters,
		URL:        v.filters.URL(),
		Results:    results,
		Generation: v.gen,
	}
}

func settledState(results []catalog.BookSummary) State {
	if len(results) == 0 {
		return StateEmpty
	}
	return StateLoaded
}
