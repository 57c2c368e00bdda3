package client

import (
	"context"

	"github.com/dmitrijs2005/capgallery/internal/client/models"
)

// Client is the backend API contract consumed by the coordination layer.
// Every call carries the session cookie.
type Client interface {
	// CurrentUser returns the username of the session, or "" with a nil error
	// when the backend answers with a falsy payload.
	CurrentUser(ctx context.Context) (string, error)
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, creds models.Credentials) error
	AllPosts(ctx context.Context) ([]models.Post, error)
	MyPosts(ctx context.Context) ([]models.Post, error)
	// CreatePost uploads the pending image and returns the created post, which
	// already carries the generated caption.
	CreatePost(ctx context.Context, upload *models.PendingUpload) (models.Post, error)
}
