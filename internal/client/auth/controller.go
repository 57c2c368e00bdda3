// Package auth implements the login/register form: mode toggling, local
// field validation and credential submission.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/client/session"
	"github.com/dmitrijs2005/capgallery/internal/logging"
)

type Controller struct {
	client   client.Client
	sessions *session.Store
	logger   logging.Logger

	mu     sync.Mutex
	mode   models.AuthMode
	values models.Credentials
}

func NewController(c client.Client, sessions *session.Store, logger logging.Logger) *Controller {
	return &Controller{
		client:   c,
		sessions: sessions,
		logger:   logger,
		mode:     models.AuthModeLogin,
	}
}

func (c *Controller) Mode() models.AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Toggle switches between login and register and returns the new mode.
func (c *Controller) Toggle() models.AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Toggle()
	return c.mode
}

func (c *Controller) SetMode(mode models.AuthMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Values returns the last submitted form values. They survive a failed
// submission and are cleared by a successful one.
func (c *Controller) Values() models.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Validate checks creds against the current mode.
func (c *Controller) Validate(creds models.Credentials) FieldErrors {
	return Validate(c.Mode(), creds)
}

// Submit validates creds and posts them to the login or register endpoint,
// depending on the current mode. On success the session becomes
// authenticated as creds.Username, superseding any probe still in flight.
// On failure the session is left untouched and the entered values are kept.
func (c *Controller) Submit(ctx context.Context, creds models.Credentials) (models.Session, error) {
	c.mu.Lock()
	mode := c.mode
	c.values = creds
	c.mu.Unlock()

	if fe := Validate(mode, creds); fe != nil {
		return c.sessions.Current(), fe
	}

	var err error
	if mode == models.AuthModeRegister {
		err = c.client.Register(ctx, creds)
	} else {
		err = c.client.Login(ctx, creds)
	}
	if err != nil {
		c.logger.Error(ctx, "auth submission failed", "mode", mode, "username", creds.Username, "error", err)
		return c.sessions.Current(), fmt.Errorf("%s: %w", mode, err)
	}

	sess := c.sessions.ApplyCredentials(creds.Username)
	c.logger.Info(ctx, "authenticated", "mode", mode, "username", creds.Username)

	c.mu.Lock()
	c.values = models.Credentials{}
	c.mu.Unlock()

	return sess, nil
}
