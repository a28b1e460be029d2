// Package loader fetches page fragments and swaps them into the registry in
// place. It guarantees at most one in-flight fetch per page index and
// prefetches a budget of subsequent pages on every primary load.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/docview/pagekit/dom"
	"github.com/docview/pagekit/observability"
	"github.com/docview/pagekit/page"
)

// DefaultPreloadPages is the prefetch budget used when none is configured.
const DefaultPreloadPages = 3

// Config wires the loader's collaborators.
type Config struct {
	Container dom.Container
	Registry  *page.Registry
	Fetcher   Fetcher

	// IndicatorClass is the class of the element inserted into a frame
	// while its fetch is in flight.
	IndicatorClass string

	// PreloadPages is the default prefetch budget.
	PreloadPages int

	// Scale supplies the controller's current global scale, applied to
	// every freshly loaded page.
	Scale func() float64

	// Commit serializes a completion with the rest of the viewer's state
	// mutations. The default runs the function inline.
	Commit func(fn func())

	// Schedule requests a coalescing render after a successful install, so
	// the freshly loaded page becomes visible without further user input.
	// Runs inside Commit.
	Schedule func()

	Logger observability.Logger
	Tracer observability.Tracer
}

// Loader manages lazy page loads. Load must be called from the viewer's
// event context; completions re-enter through Commit.
type Loader struct {
	cfg Config

	mu      sync.Mutex
	tickets map[int]struct{}
	wg      sync.WaitGroup
}

func New(cfg Config) *Loader {
	if cfg.Fetcher == nil {
		cfg.Fetcher = &HTTPFetcher{}
	}
	if cfg.PreloadPages <= 0 {
		cfg.PreloadPages = DefaultPreloadPages
	}
	if cfg.Commit == nil {
		cfg.Commit = func(fn func()) { fn() }
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	return &Loader{cfg: cfg, tickets: make(map[int]struct{})}
}

// Load fetches the page at index unless it is out of range, already loaded
// or already ticketed; in those cases the whole call, prefetch included, is
// dropped silently. A second concurrent caller is not notified unless it won
// the race to ticket the index first.
//
// budget <= 0 selects the configured prefetch budget. Prefetch of the next
// budget-1 pages is issued regardless of the primary fetch's outcome.
func (l *Loader) Load(ctx context.Context, index, budget int, onLoad func(*page.Unit), onError func(error)) {
	u := l.cfg.Registry.At(index)
	if u == nil || u.Loaded() {
		return
	}

	l.mu.Lock()
	if _, inflight := l.tickets[index]; inflight {
		l.mu.Unlock()
		return
	}
	url, _ := u.Frame().Attr(l.cfg.Registry.Markup().SourceAttr)
	if url != "" {
		l.tickets[index] = struct{}{}
		l.mu.Unlock()
		ind := l.cfg.Container.CreateElement("div", l.cfg.IndicatorClass)
		u.Frame().PrependChild(ind)
		l.wg.Add(1)
		go l.fetch(ctx, index, url, u, ind, onLoad, onError)
	} else {
		// A frame with no source URL can never load; leave it alone.
		l.mu.Unlock()
	}

	if budget <= 0 {
		budget = l.cfg.PreloadPages
	}
	if budget-1 > 0 {
		l.Load(ctx, index+1, budget-1, nil, nil)
	}
}

// InFlight reports the number of outstanding fetches.
func (l *Loader) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tickets)
}

// Wait blocks until every in-flight fetch has settled and its completion has
// been committed.
func (l *Loader) Wait() { l.wg.Wait() }

func (l *Loader) fetch(ctx context.Context, index int, url string, old *page.Unit, ind dom.Node, onLoad func(*page.Unit), onError func(error)) {
	defer l.wg.Done()
	ctx, span := l.cfg.Tracer.StartSpan(ctx, "loader.fetch")
	defer span.Finish()
	span.SetTag("url", url)

	start := time.Now()
	data, err := l.cfg.Fetcher.Fetch(ctx, url)

	l.cfg.Commit(func() {
		l.mu.Lock()
		delete(l.tickets, index)
		l.mu.Unlock()
		old.Frame().RemoveChild(ind)

		if err == nil {
			var u *page.Unit
			u, err = l.install(index, old, data)
			if u != nil {
				l.cfg.Logger.Debug("page loaded",
					observability.Int("index", index),
					observability.String("url", url),
					observability.Float64(observability.MetricFetchTime, time.Since(start).Seconds()))
				if onLoad != nil {
					onLoad(u)
				}
				if l.cfg.Schedule != nil {
					l.cfg.Schedule()
				}
				return
			}
		}

		span.SetError(err)
		l.cfg.Logger.Warn("page load failed",
			observability.Int("index", index),
			observability.String("url", url),
			observability.Error("err", err))
		if onError != nil {
			onError(err)
		}
	})
}

// install swaps the fetched frame into the DOM and the registry. The new
// unit starts unshown even if its predecessor was visible; the next
// scheduled render re-establishes visibility.
func (l *Loader) install(index int, old *page.Unit, markup []byte) (*page.Unit, error) {
	m := l.cfg.Registry.Markup()
	frame, err := l.cfg.Container.ParseFrame(markup, m.Frame)
	if err != nil {
		return nil, err
	}
	l.cfg.Container.Replace(old.Frame(), frame)
	u := page.New(l.cfg.Container, frame, m)
	loadErr := u.Load()
	l.cfg.Registry.Swap(index, u)
	u.Hide()
	if l.cfg.Scale != nil {
		u.Rescale(l.cfg.Scale())
	}
	if loadErr != nil {
		// The node is swapped in but its data is unusable; the unit stays
		// unloaded until another load replaces the node again. Callers get
		// the error path, not a unit they cannot navigate.
		return nil, loadErr
	}
	return u, nil
}
