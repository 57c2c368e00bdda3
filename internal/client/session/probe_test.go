package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProbe(fc *fakeClient) (*Probe, *Store) {
	store := NewStore(nil)
	return NewProbe(fc, store, logging.NewNop(), nil), store
}

func TestProbe_Verdicts(t *testing.T) {
	tests := []struct {
		name string
		user string
		err  error
		want models.Session
	}{
		{name: "authenticated", user: "alice", want: models.AuthenticatedSession("alice")},
		{name: "falsy payload", user: "", want: models.AnonymousSession()},
		{name: "unauthorized", err: fmt.Errorf("%w: 401", client.ErrUnauthorized), want: models.AnonymousSession()},
		{name: "unavailable", err: client.ErrUnavailable, want: models.AnonymousSession()},
		{name: "anything else", err: errors.New("boom"), want: models.AnonymousSession()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{user: tt.user, userErr: tt.err}
			p, store := newProbe(fc)

			assert.Equal(t, tt.want, p.Probe(context.Background()))
			assert.Equal(t, 1, fc.calls)
			assert.Equal(t, models.StatusUnknown, store.Current().Status, "Probe must not write the store")
		})
	}
}

func TestProbe_NoCaching(t *testing.T) {
	fc := &fakeClient{user: "alice"}
	p, _ := newProbe(fc)

	p.Probe(context.Background())
	p.Probe(context.Background())
	assert.Equal(t, 2, fc.calls)
}

func TestRefresh_AppliesVerdict(t *testing.T) {
	fc := &fakeClient{user: "alice"}
	p, store := newProbe(fc)

	sess, applied := p.Refresh(context.Background())
	require.True(t, applied)
	assert.Equal(t, models.AuthenticatedSession("alice"), sess)
	assert.Equal(t, sess, store.Current())
}

func TestRefresh_CancelledContextDoesNotWrite(t *testing.T) {
	fc := &fakeClient{userErr: context.Canceled}
	p, store := newProbe(fc)
	store.ApplyCredentials("alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess, applied := p.Refresh(ctx)
	assert.False(t, applied)
	assert.Equal(t, "alice", sess.Username)
}

func TestWatch_ExpiredSessionTurnsAnonymous(t *testing.T) {
	fc := &fakeClient{user: "alice"}
	p, store := newProbe(fc)
	store.ApplyCredentials("alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Watch(ctx, 5*time.Millisecond)
	}()

	fc.set("", client.ErrUnauthorized)

	require.Eventually(t, func() bool {
		return store.Current().Status == models.StatusAnonymous
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_ZeroIntervalReturnsImmediately(t *testing.T) {
	fc := &fakeClient{}
	p, _ := newProbe(fc)

	p.Watch(context.Background(), 0)
	assert.Zero(t, fc.calls)
}
