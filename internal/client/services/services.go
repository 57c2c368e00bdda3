// Package services mounts the gallery and profile views. A mount issues the
// session probe and its feed fetch concurrently and drops every result that
// arrives after the view was closed.
package services

import (
	"context"

	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/feed"
	"github.com/dmitrijs2005/capgallery/internal/client/session"
	"github.com/dmitrijs2005/capgallery/internal/client/upload"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
)

// Deps are the collaborators shared by every view. Sessions must be the
// store Probe writes to. AllFeed and MyFeed outlive the mounts that write
// them, so a view entered again starts from what it showed last time.
type Deps struct {
	Client   client.Client
	Sessions *session.Store
	Probe    *session.Probe
	Fetcher  *feed.Fetcher
	AllFeed  *feed.Store
	MyFeed   *feed.Store
	Previews *upload.Previews
	Logger   logging.Logger
	Metrics  *metrics.Metrics
}

// NewDeps wires the default collaborators around c.
func NewDeps(c client.Client, logger logging.Logger, m *metrics.Metrics) Deps {
	sessions := session.NewStore(m)
	return Deps{
		Client:   c,
		Sessions: sessions,
		Probe:    session.NewProbe(c, sessions, logger, m),
		Fetcher:  feed.NewFetcher(c, logger, m),
		AllFeed:  feed.NewStore(),
		MyFeed:   feed.NewStore(),
		Previews: upload.NewPreviews(),
		Logger:   logger,
		Metrics:  m,
	}
}

// Feed returns the shared store for kind.
func (d Deps) Feed(kind feed.Kind) *feed.Store {
	if kind == feed.KindMine {
		return d.MyFeed
	}
	return d.AllFeed
}

// GalleryView shows the global feed to an authenticated user.
type GalleryView struct {
	deps Deps
}

func NewGalleryView(d Deps) *GalleryView {
	return &GalleryView{deps: d}
}

func (v *GalleryView) Mount(ctx context.Context) *Mount {
	return mount(ctx, v.deps, feed.KindAll)
}

// ProfileView shows the user's own posts and carries the upload form.
type ProfileView struct {
	deps Deps
}

func NewProfileView(d Deps) *ProfileView {
	return &ProfileView{deps: d}
}

func (v *ProfileView) Mount(ctx context.Context) *Mount {
	return mount(ctx, v.deps, feed.KindMine)
}
