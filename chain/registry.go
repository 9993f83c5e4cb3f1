// CLAUDE:SUMMARY In-memory run registry: status tracking for live and recently finished chains, bounded retention.
package chain

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus is a point-in-time view of one chain run.
type RunStatus struct {
	ID         string    `json:"id"`
	InitialURL string    `json:"initial_url"`
	State      string    `json:"state"` // running, done, failed
	Depth      int       `json:"depth"`
	CurrentURL string    `json:"current_url"`
	StartedAt  time.Time `json:"started_at"`
	Deadline   time.Time `json:"deadline"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Error      string    `json:"error,omitempty"`
}

// Registry tracks chain runs in memory. Retention is bounded: once maxRuns
// is exceeded the oldest finished runs are evicted; running chains are
// never dropped.
type Registry struct {
	mu      sync.Mutex
	runs    map[string]*RunStatus
	maxRuns int
}

// NewRegistry creates a Registry. maxRuns <= 0 means the default of 100.
func NewRegistry(maxRuns int) *Registry {
	if maxRuns <= 0 {
		maxRuns = 100
	}
	return &Registry{runs: make(map[string]*RunStatus), maxRuns: maxRuns}
}

// Create registers a new running chain and returns its ID.
func (r *Registry) Create(initialURL string, deadline time.Time) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[id] = &RunStatus{
		ID:         id,
		InitialURL: initialURL,
		State:      "running",
		CurrentURL: initialURL,
		StartedAt:  time.Now(),
		Deadline:   deadline,
	}
	r.evictLocked()
	return id
}

// Progress updates the run's position at the start of a round.
func (r *Registry) Progress(id, currentURL string, depth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.runs[id]; ok {
		st.CurrentURL = currentURL
		st.Depth = depth
	}
}

// Finish records a chain's terminal result.
func (r *Registry) Finish(id string, res *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.runs[id]
	if !ok {
		return
	}
	st.FinishedAt = time.Now()
	st.Depth = res.Depth
	st.CurrentURL = res.FinalURL
	if res.Completed {
		st.State = "done"
	} else {
		st.State = "failed"
		st.Error = errString(res.Err)
	}
}

// Get returns a copy of one run's status.
func (r *Registry) Get(id string) (RunStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.runs[id]
	if !ok {
		return RunStatus{}, false
	}
	return *st, true
}

// List returns all tracked runs, newest first.
func (r *Registry) List() []RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunStatus, 0, len(r.runs))
	for _, st := range r.runs {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

func (r *Registry) evictLocked() {
	if len(r.runs) <= r.maxRuns {
		return
	}
	var finished []*RunStatus
	for _, st := range r.runs {
		if st.State != "running" {
			finished = append(finished, st)
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].StartedAt.Before(finished[j].StartedAt) })
	for _, st := range finished {
		if len(r.runs) <= r.maxRuns {
			return
		}
		delete(r.runs, st.ID)
	}
}
