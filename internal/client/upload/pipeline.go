// Package upload drives a new post from file selection to its optimistic
// insertion at the front of the user's feed.
package upload

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/client/session"
	"github.com/dmitrijs2005/capgallery/internal/common"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type State string

// Target receives the created post. *feed.Store satisfies it.
type Target interface {
	Prepend(models.Post)
}

const (
	StateIdle         State = "idle"
	StateFileSelected State = "fileSelected"
	StateSubmitting   State = "submitting"
)

// Pipeline is the upload form's state machine:
//
//	idle -> fileSelected -> submitting -> idle          (success)
//	                                   -> fileSelected  (failure, retry allowed)
//
// Submitting is one opaque wait covering both transfer and caption generation.
type Pipeline struct {
	client   client.Client
	sessions *session.Store
	target   Target
	previews *Previews
	logger   logging.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	state   State
	pending *models.PendingUpload
}

func NewPipeline(c client.Client, sessions *session.Store, target Target, previews *Previews, logger logging.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		client:   c,
		sessions: sessions,
		target:   target,
		previews: previews,
		logger:   logger,
		metrics:  m,
		state:    StateIdle,
	}
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns a copy of the selected upload, or nil.
func (p *Pipeline) Pending() *models.PendingUpload {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil
	}
	cp := *p.pending
	return &cp
}

// Select makes name/data the pending upload, replacing and releasing any
// earlier selection. Non-image content is rejected without changing state.
func (p *Pipeline) Select(name string, data []byte) (*models.PendingUpload, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateSubmitting {
		return nil, ErrBusy
	}

	if p.pending != nil {
		p.previews.Revoke(p.pending.PreviewURL)
	}

	contentType := mt.String()
	p.pending = &models.PendingUpload{
		ID:          uuid.NewString(),
		FileName:    name,
		ContentType: contentType,
		Data:        data,
		PreviewURL:  p.previews.Create(contentType, data),
	}
	p.state = StateFileSelected

	cp := *p.pending
	return &cp, nil
}

// Submit posts the pending upload. Without a selection it returns ErrNoFile
// and makes no request; without an authenticated session it returns
// common.ErrUnauthorized. On success the created post is prepended to the
// feed, the preview is released and the pipeline goes back to idle. On
// failure the selection is kept so the user can resubmit.
func (p *Pipeline) Submit(ctx context.Context) (models.Post, error) {
	p.mu.Lock()
	switch {
	case p.state == StateSubmitting:
		p.mu.Unlock()
		return models.Post{}, ErrBusy
	case p.pending == nil:
		p.mu.Unlock()
		return models.Post{}, ErrNoFile
	case !p.sessions.Current().IsAuthenticated():
		p.mu.Unlock()
		return models.Post{}, common.ErrUnauthorized
	}
	pending := p.pending
	p.state = StateSubmitting
	p.mu.Unlock()

	p.logger.Info(ctx, "submitting post", "file", pending.FileName, "bytes", pending.Size())
	post, err := p.client.CreatePost(ctx, pending)
	p.metrics.ObserveUpload(err)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.state = StateFileSelected
		p.logger.Error(ctx, "post submission failed", "file", pending.FileName, "error", err)
		return models.Post{}, fmt.Errorf("submit %s: %w", pending.FileName, err)
	}

	p.previews.Revoke(pending.PreviewURL)
	p.pending = nil
	p.state = StateIdle
	p.target.Prepend(post)

	p.logger.Info(ctx, "post created", "id", post.ID, "caption", post.CaptionText())
	return post, nil
}

// Reset drops the selection and releases its preview. It is refused while a
// submission is in flight.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateSubmitting {
		return ErrBusy
	}
	if p.pending != nil {
		p.previews.Revoke(p.pending.PreviewURL)
		p.pending = nil
	}
	p.state = StateIdle
	return nil
}
