package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/capgallery/internal/client/feed"
	"github.com/dmitrijs2005/capgallery/internal/client/gate"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/client/upload"
	"github.com/dmitrijs2005/capgallery/internal/common"
	"github.com/dmitrijs2005/capgallery/internal/logging"
)

var mountSeq atomic.Uint64

// Mount is one live instance of a view. Every write it makes, to the session
// cell or to the feed of its kind, is checked against the closed flag under
// mu, so nothing lands after Close returns. A feed result is also dropped once
// a later load of the same mount has started. Session listeners run while mu
// is held and must not call back into the Mount.
type Mount struct {
	id      uint64
	kind    feed.Kind
	deps    Deps
	logger  logging.Logger
	feed    *feed.Store
	uploads *upload.Pipeline

	mu       sync.Mutex
	closed   bool
	gen      uint64
	fetchErr error
	loaded   chan struct{}
}

func mount(ctx context.Context, d Deps, kind feed.Kind) *Mount {
	id := mountSeq.Add(1)
	m := &Mount{
		id:     id,
		kind:   kind,
		deps:   d,
		logger: d.Logger.With("view", kind, "mount", id),
		feed:   d.Feed(kind),
	}
	if kind == feed.KindMine {
		m.uploads = upload.NewPipeline(d.Client, d.Sessions, m, d.Previews, m.logger, d.Metrics)
	}

	m.logger.Debug(ctx, "view mounted")
	m.loaded = m.load(ctx)
	return m
}

// load issues the probe and the feed fetch concurrently. The returned
// channel is closed once both have settled.
func (m *Mount) load(ctx context.Context) chan struct{} {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	ticket := m.deps.Sessions.Begin()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		verdict := m.deps.Probe.Probe(ctx)
		m.guard(ctx, "probe", func() {
			m.deps.Sessions.ApplyProbe(ticket, verdict)
		})
	}()

	go func() {
		defer wg.Done()
		posts, err := m.deps.Fetcher.Load(ctx, m.kind)
		m.guard(ctx, "fetch", func() {
			if gen != m.gen {
				m.logger.Debug(ctx, "dropping superseded fetch result", "load", gen)
				return
			}
			m.fetchErr = err
			if err == nil {
				m.feed.Replace(posts)
			}
		})
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func (m *Mount) guard(ctx context.Context, what string, write func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || ctx.Err() != nil {
		m.logger.Debug(ctx, "dropping result for closed view", "result", what)
		return
	}
	write()
}

// Wait blocks until the initial probe and fetch have settled.
func (m *Mount) Wait(ctx context.Context) error {
	m.mu.Lock()
	loaded := m.loaded
	m.mu.Unlock()

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh repeats the concurrent probe and fetch and waits for both.
func (m *Mount) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return common.ErrViewClosed
	}
	m.mu.Unlock()

	loaded := m.load(ctx)
	m.mu.Lock()
	m.loaded = loaded
	m.mu.Unlock()

	return m.Wait(ctx)
}

// Close tears the view down. Results still in flight are discarded and the
// pending upload preview, if any, is released.
func (m *Mount) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	if m.uploads != nil {
		_ = m.uploads.Reset()
	}
	m.logger.Debug(context.Background(), "view closed")
}

func (m *Mount) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Prepend puts a freshly created post at the front of this view's feed
// unless the view has been closed.
func (m *Mount) Prepend(p models.Post) {
	m.guard(context.Background(), "prepend", func() {
		m.feed.Prepend(p)
	})
}

func (m *Mount) Kind() feed.Kind {
	return m.kind
}

func (m *Mount) Session() models.Session {
	return m.deps.Sessions.Current()
}

// View is the gate's decision for the current session.
func (m *Mount) View() models.View {
	return gate.Render(m.Session())
}

// RequiresRedirect reports whether the probe has confirmed there is no user.
// A failed fetch never causes a redirect.
func (m *Mount) RequiresRedirect() bool {
	return gate.RequiresRedirect(m.Session())
}

// Posts returns the feed as loaded, whatever the session. A failed fetch
// leaves the posts of an earlier entry in place.
func (m *Mount) Posts() []models.Post {
	return m.feed.Snapshot()
}

// Visible returns the posts to render: the feed when the gate shows the
// gallery, nothing otherwise.
func (m *Mount) Visible() []models.Post {
	if m.View() != models.ViewGallery {
		return nil
	}
	return m.feed.Snapshot()
}

func (m *Mount) Populated() bool {
	return m.feed.Populated()
}

// FetchErr returns the error of the latest feed fetch, for information only.
func (m *Mount) FetchErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchErr
}

// Uploads returns the upload pipeline of a profile mount, nil otherwise.
func (m *Mount) Uploads() *upload.Pipeline {
	return m.uploads
}
