package feed

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
)

// Kind names which backend listing a feed mirrors.
type Kind string

const (
	KindAll  Kind = "all"
	KindMine Kind = "mine"
)

// Fetcher loads feeds from the backend into a Store. A failed fetch leaves
// the Store as it was; the error is logged and returned for information only
// and never changes the session.
type Fetcher struct {
	client  client.Client
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewFetcher(c client.Client, logger logging.Logger, m *metrics.Metrics) *Fetcher {
	return &Fetcher{client: c, logger: logger, metrics: m}
}

// FetchAll replaces store with the global feed.
func (f *Fetcher) FetchAll(ctx context.Context, store *Store) error {
	return f.fetch(ctx, KindAll, store)
}

// FetchMine replaces store with the current user's posts.
func (f *Fetcher) FetchMine(ctx context.Context, store *Store) error {
	return f.fetch(ctx, KindMine, store)
}

// Load returns the posts of kind without touching any Store. Callers that
// need to check whether the result is still wanted apply it themselves.
func (f *Fetcher) Load(ctx context.Context, kind Kind) ([]models.Post, error) {
	list := f.client.AllPosts
	if kind == KindMine {
		list = f.client.MyPosts
	}

	posts, err := list(ctx)
	f.metrics.ObserveFeedFetch(string(kind), err)
	if err != nil {
		f.logger.Warn(ctx, "feed fetch failed, keeping previous data", "feed", kind, "error", err)
		return nil, fmt.Errorf("fetch %s posts: %w", kind, err)
	}

	f.logger.Debug(ctx, "feed fetched", "feed", kind, "posts", len(posts))
	return posts, nil
}

func (f *Fetcher) fetch(ctx context.Context, kind Kind, store *Store) error {
	posts, err := f.Load(ctx, kind)
	if err != nil {
		return err
	}
	store.Replace(posts)
	return nil
}
