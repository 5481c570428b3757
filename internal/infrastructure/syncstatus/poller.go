// Package syncstatus polls the backend's data-sync status in the background.
package syncstatus

import (
	"context"
	"sync"
	"time"

	"invoicely/pkg/logger"
)

// State is the backend's sync state.
type State string

const (
	StateUnknown State = "unknown"
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateError   State = "error"
)

// Status is one sync-status reading.
type Status struct {
	State          State      `json:"state"`
	PendingChanges int        `json:"pending_changes"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
	Message        string     `json:"message,omitempty"`
	CheckedAt      time.Time  `json:"checked_at"`
	// Stale is set when the latest poll failed and the reading is carried over.
	Stale bool `json:"stale"`
}

// Fetcher reads the current status from the backend.
type Fetcher interface {
	SyncStatus(ctx context.Context) (Status, error)
}

// DefaultInterval is used when a Poller has no interval set.
const DefaultInterval = 30 * time.Second

// Poller fetches the sync status on a ticker and keeps the latest reading.
type Poller struct {
	Interval time.Duration

	fetcher Fetcher
	log     *logger.Logger
	now     func() time.Time

	mu     sync.RWMutex
	latest Status

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewPoller creates a poller. Nothing is fetched until Start.
func NewPoller(fetcher Fetcher, interval time.Duration, log *logger.Logger) *Poller {
	if log == nil {
		log = logger.NewNop()
	}
	return &Poller{
		Interval: interval,
		fetcher:  fetcher,
		log:      log.WithComponent("syncstatus"),
		now:      time.Now,
		latest:   Status{State: StateUnknown},
	}
}

// Latest returns the most recent reading.
func (p *Poller) Latest() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Start polls once immediately and then on every tick until ctx is done or
// Stop is called. Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.started {
		return
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true

	go p.run(ctx, interval, p.done)
	p.log.Infow("sync status poller started", "interval", interval)
}

// Stop cancels polling and waits for the loop to exit. Safe to call more than
// once and on a poller that never started.
func (p *Poller) Stop() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if !p.started {
		return
	}
	p.cancel()
	<-p.done
	p.started = false
	p.log.Infow("sync status poller stopped")
}

func (p *Poller) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll fetches one reading. On failure the previous reading is kept and
// marked stale.
func (p *Poller) Poll(ctx context.Context) {
	status, err := p.fetcher.SyncStatus(ctx)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	prev := p.latest
	if err != nil {
		p.latest.Stale = true
		p.latest.CheckedAt = p.now().UTC()
		p.mu.Unlock()
		if !prev.Stale {
			p.log.Warnw("sync status unavailable", "error", err)
		}
		return
	}
	if status.State == "" {
		status.State = StateUnknown
	}
	status.CheckedAt = p.now().UTC()
	status.Stale = false
	p.latest = status
	p.mu.Unlock()

	if prev.State != status.State || prev.Stale {
		p.log.Infow("sync state changed",
			"from", prev.State,
			"to", status.State,
			"pending_changes", status.PendingChanges,
		)
	}
}
