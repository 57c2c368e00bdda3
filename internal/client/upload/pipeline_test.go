package upload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/client/backendtest"
	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/feed"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/client/session"
	"github.com/dmitrijs2005/capgallery/internal/common"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeClient struct {
	client.Client

	mu      sync.Mutex
	calls   int
	post    models.Post
	err     error
	mine    []models.Post
	release chan struct{}
	started chan struct{}
}

func (f *fakeClient) CreatePost(ctx context.Context, up *models.PendingUpload) (models.Post, error) {
	f.mu.Lock()
	f.calls++
	release, started := f.release, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return f.post, f.err
}

func (f *fakeClient) MyPosts(context.Context) ([]models.Post, error) { return f.mine, nil }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func caption(s string) *string { return &s }

type fixture struct {
	client   *fakeClient
	sessions *session.Store
	feed     *feed.Store
	previews *Previews
	pipeline *Pipeline
}

func newFixture(t *testing.T, authenticated bool) *fixture {
	t.Helper()
	fx := &fixture{
		client:   &fakeClient{},
		sessions: session.NewStore(nil),
		feed:     feed.NewStore(),
		previews: NewPreviews(),
	}
	if authenticated {
		fx.sessions.ApplyCredentials("alice")
	}
	fx.pipeline = NewPipeline(fx.client, fx.sessions, fx.feed, fx.previews, logging.NewNop(), nil)
	return fx
}

func TestPipeline_SubmitWithoutFile(t *testing.T) {
	fx := newFixture(t, true)

	_, err := fx.pipeline.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoFile)
	assert.Zero(t, fx.client.callCount())
	assert.Equal(t, StateIdle, fx.pipeline.State())
}

func TestPipeline_SubmitWhileAnonymous(t *testing.T) {
	fx := newFixture(t, false)
	_, err := fx.pipeline.Select("photo.jpg", pngBytes)
	require.NoError(t, err)

	_, err = fx.pipeline.Submit(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Zero(t, fx.client.callCount())
	assert.Equal(t, StateFileSelected, fx.pipeline.State())
}

func TestPipeline_SelectRejectsNonImage(t *testing.T) {
	fx := newFixture(t, true)

	_, err := fx.pipeline.Select("notes.txt", []byte("hello, world"))
	require.ErrorIs(t, err, ErrNotImage)

	_, err = fx.pipeline.Select("empty.png", nil)
	require.ErrorIs(t, err, ErrEmpty)

	assert.Equal(t, StateIdle, fx.pipeline.State())
	assert.Nil(t, fx.pipeline.Pending())
}

func TestPipeline_ReselectReleasesPreviousPreview(t *testing.T) {
	fx := newFixture(t, true)

	first, err := fx.pipeline.Select("a.png", pngBytes)
	require.NoError(t, err)
	second, err := fx.pipeline.Select("b.png", pngBytes)
	require.NoError(t, err)

	_, _, ok := fx.previews.Get(first.PreviewURL)
	assert.False(t, ok)
	_, _, ok = fx.previews.Get(second.PreviewURL)
	assert.True(t, ok)
	assert.Equal(t, "b.png", fx.pipeline.Pending().FileName)
	assert.Equal(t, "image/png", fx.pipeline.Pending().ContentType)
}

func TestPipeline_SuccessPrependsAndResets(t *testing.T) {
	fx := newFixture(t, true)
	fx.client.post = models.Post{ID: "p9", ImageURL: "https://img/p9", Caption: caption("a cat on a sofa")}
	fx.client.mine = []models.Post{fx.client.post, {ID: "p1"}}
	fx.feed.Replace([]models.Post{{ID: "p1"}})

	_, err := fx.pipeline.Select("photo.jpg", pngBytes)
	require.NoError(t, err)

	post, err := fx.pipeline.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p9", post.ID)

	snap := fx.feed.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "p9", snap[0].ID)
	assert.Equal(t, "a cat on a sofa", snap[0].CaptionText())

	assert.Equal(t, StateIdle, fx.pipeline.State())
	assert.Nil(t, fx.pipeline.Pending())
	assert.Zero(t, fx.previews.Len())

	fetcher := feed.NewFetcher(fx.client, logging.NewNop(), nil)
	require.NoError(t, fetcher.FetchMine(context.Background(), fx.feed))
	snap = fx.feed.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "p9", snap[0].ID)
	assert.Equal(t, "p1", snap[1].ID)
}

func TestPipeline_FailureKeepsSelection(t *testing.T) {
	fx := newFixture(t, true)
	fx.client.err = client.ErrUnavailable
	fx.feed.Replace([]models.Post{{ID: "p1"}})

	selected, err := fx.pipeline.Select("photo.jpg", pngBytes)
	require.NoError(t, err)

	_, err = fx.pipeline.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnavailable))

	assert.Equal(t, StateFileSelected, fx.pipeline.State())
	require.NotNil(t, fx.pipeline.Pending())
	assert.Equal(t, selected.ID, fx.pipeline.Pending().ID)
	_, _, ok := fx.previews.Get(selected.PreviewURL)
	assert.True(t, ok)
	assert.Len(t, fx.feed.Snapshot(), 1)

	fx.client.err = nil
	fx.client.post = models.Post{ID: "p2"}
	_, err = fx.pipeline.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fx.client.callCount())
	assert.Equal(t, "p2", fx.feed.Snapshot()[0].ID)
}

func TestPipeline_SubmittingBlocksSecondSubmitAndSelect(t *testing.T) {
	fx := newFixture(t, true)
	fx.client.release = make(chan struct{})
	fx.client.started = make(chan struct{})
	fx.client.post = models.Post{ID: "p3"}

	_, err := fx.pipeline.Select("photo.jpg", pngBytes)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := fx.pipeline.Submit(context.Background())
		done <- err
	}()

	select {
	case <-fx.client.started:
	case <-time.After(time.Second):
		t.Fatal("submission did not start")
	}
	assert.Equal(t, StateSubmitting, fx.pipeline.State())

	_, err = fx.pipeline.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = fx.pipeline.Select("other.png", pngBytes)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, fx.pipeline.Reset(), ErrBusy)

	close(fx.client.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fx.client.callCount())
	assert.Equal(t, StateIdle, fx.pipeline.State())
}

func TestPipeline_Reset(t *testing.T) {
	fx := newFixture(t, true)
	_, err := fx.pipeline.Select("photo.jpg", pngBytes)
	require.NoError(t, err)

	require.NoError(t, fx.pipeline.Reset())
	assert.Equal(t, StateIdle, fx.pipeline.State())
	assert.Nil(t, fx.pipeline.Pending())
	assert.Zero(t, fx.previews.Len())
}

func TestPipeline_AgainstBackend(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	srv.AddUser("alice", "secret1")
	srv.Captioner = func(string, []byte) string { return "a cat on a sofa" }

	c, err := client.NewHTTPClient(srv.Config())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), models.Credentials{Username: "alice", Password: "secret1"}))

	sessions := session.NewStore(nil)
	sessions.ApplyCredentials("alice")
	mine := feed.NewStore()
	p := NewPipeline(c, sessions, mine, NewPreviews(), logging.NewNop(), nil)

	_, err = p.Select("photo.jpg", pngBytes)
	require.NoError(t, err)
	post, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a cat on a sofa", post.CaptionText())

	up := srv.LastUpload()
	require.NotNil(t, up)
	assert.Equal(t, "image", up.FieldName)
	assert.Equal(t, "photo.jpg", up.FileName)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, pngBytes, up.Data)

	fetcher := feed.NewFetcher(c, logging.NewNop(), nil)
	require.NoError(t, fetcher.FetchMine(context.Background(), mine))
	snap := mine.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, post.ID, snap[0].ID)
}
