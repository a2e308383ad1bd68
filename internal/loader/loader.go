package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/logging"
)

// ErrNothingLoaded is returned by Reload before any view was loaded
var ErrNothingLoaded = errors.New("no view has been loaded yet")

// Getter issues one read. *gateway.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, ep gateway.Endpoint) (gateway.Envelope, error)
}

// Loader fetches everything a view needs in parallel and remembers the last
// view so it can be re-fetched after a successful action.
type Loader struct {
	getter Getter
	now    func() time.Time

	mu      sync.Mutex
	view    *View
	current *Snapshot
}

// New creates a loader backed by getter
func New(getter Getter) *Loader {
	return &Loader{
		getter: getter,
		now:    time.Now,
	}
}

// Load issues every read of v concurrently and waits for all of them. It
// never fails: a read that errors is recorded with an empty envelope and its
// cause, and the rest of the view still renders.
func (l *Loader) Load(ctx context.Context, v View) *Snapshot {
	start := l.now()
	results := make([]Result, len(v.Endpoints))

	var g errgroup.Group
	for i, ep := range v.Endpoints {
		i, ep := i, ep
		g.Go(func() error {
			env, err := l.getter.Get(ctx, ep)
			if err != nil {
				env = gateway.Envelope{}
			}
			results[i] = Result{Endpoint: ep, Envelope: env, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	byEndpoint := make(map[gateway.Endpoint]Result, len(results))
	for _, r := range results {
		byEndpoint[r.Endpoint] = r
	}

	snap := newSnapshot(v, byEndpoint, l.now())
	logging.LogLoad(v.Name, snap.Available, snap.Failures(), l.now().Sub(start))

	l.mu.Lock()
	view := v
	l.view = &view
	l.current = snap
	l.mu.Unlock()

	return snap
}

// Reload re-fetches the last loaded view
func (l *Loader) Reload(ctx context.Context) error {
	l.mu.Lock()
	v := l.view
	l.mu.Unlock()

	if v == nil {
		return ErrNothingLoaded
	}
	l.Load(ctx, *v)
	return nil
}

// Current returns the most recent snapshot, or nil
func (l *Loader) Current() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}
