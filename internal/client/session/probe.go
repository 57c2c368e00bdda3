package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
)

// Probe asks the backend who the current session belongs to. It fails closed:
// every transport or authorization failure resolves to an anonymous session.
type Probe struct {
	client  client.Client
	store   *Store
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewProbe(c client.Client, store *Store, logger logging.Logger, m *metrics.Metrics) *Probe {
	return &Probe{client: c, store: store, logger: logger, metrics: m}
}

// Probe issues one identity read and returns the verdict. It never returns
// an error and does not touch the Store.
func (p *Probe) Probe(ctx context.Context) models.Session {
	username, err := p.client.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			p.logger.Debug(ctx, "session probe: not authenticated")
		} else {
			p.logger.Warn(ctx, "session probe failed, treating as anonymous", "error", err)
		}
		p.metrics.ObserveProbe(string(models.StatusAnonymous))
		return models.AnonymousSession()
	}

	sess := models.AuthenticatedSession(username)
	p.metrics.ObserveProbe(string(sess.Status))
	return sess
}

// Refresh probes and applies the verdict to the Store under a fresh ticket.
// It returns the Store's session afterwards and whether the verdict won. A
// verdict obtained after ctx ended is dropped.
func (p *Probe) Refresh(ctx context.Context) (models.Session, bool) {
	t := p.store.Begin()
	verdict := p.Probe(ctx)
	if ctx.Err() != nil {
		return p.store.Current(), false
	}
	applied := p.store.ApplyProbe(t, verdict)
	return p.store.Current(), applied
}

// Watch re-probes every interval until ctx is done. This is the path by which
// an expired session turns an authenticated view anonymous. A zero interval
// disables watching.
func (p *Probe) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			before := p.store.Current()
			after, _ := p.Refresh(ctx)
			if before.Status != after.Status {
				p.logger.Info(ctx, "session status changed", "from", before.Status, "to", after.Status)
			}
		case <-ctx.Done():
			return
		}
	}
}
