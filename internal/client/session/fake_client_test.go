package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/capgallery/internal/client/models"
)

// fakeClient implements client.Client; only CurrentUser is exercised here.
type fakeClient struct {
	mu sync.Mutex

	user    string
	userErr error
	calls   int
}

func (f *fakeClient) set(user string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user, f.userErr = user, err
}

func (f *fakeClient) CurrentUser(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.user, f.userErr
}

func (f *fakeClient) Login(context.Context, models.Credentials) error    { return nil }
func (f *fakeClient) Register(context.Context, models.Credentials) error { return nil }
func (f *fakeClient) AllPosts(context.Context) ([]models.Post, error)    { return nil, nil }
func (f *fakeClient) MyPosts(context.Context) ([]models.Post, error)     { return nil, nil }
func (f *fakeClient) CreatePost(context.Context, *models.PendingUpload) (models.Post, error) {
	return models.Post{}, nil
}
