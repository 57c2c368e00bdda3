package session

import (
	"testing"

	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StartsUnknown(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, models.UnknownSession(), s.Current())
}

func TestStore_LoginSupersedesInFlightProbe(t *testing.T) {
	t.Run("probe resolves after login", func(t *testing.T) {
		s := NewStore(nil)
		ticket := s.Begin()

		s.ApplyCredentials("alice")
		applied := s.ApplyProbe(ticket, models.AnonymousSession())

		assert.False(t, applied)
		assert.Equal(t, models.AuthenticatedSession("alice"), s.Current())
	})

	t.Run("probe resolves before login", func(t *testing.T) {
		s := NewStore(nil)
		ticket := s.Begin()

		require.True(t, s.ApplyProbe(ticket, models.AnonymousSession()))
		assert.Equal(t, models.StatusAnonymous, s.Current().Status)

		s.ApplyCredentials("alice")
		assert.Equal(t, models.AuthenticatedSession("alice"), s.Current())
	})
}

func TestStore_NewerProbeWins(t *testing.T) {
	s := NewStore(nil)
	older := s.Begin()
	newer := s.Begin()

	require.True(t, s.ApplyProbe(newer, models.AuthenticatedSession("bob")))
	assert.False(t, s.ApplyProbe(older, models.AnonymousSession()))
	assert.Equal(t, "bob", s.Current().Username)
}

func TestStore_ProbeAfterLoginStillApplies(t *testing.T) {
	s := NewStore(nil)
	s.ApplyCredentials("alice")

	ticket := s.Begin()
	require.True(t, s.ApplyProbe(ticket, models.AnonymousSession()))
	assert.Equal(t, models.StatusAnonymous, s.Current().Status)
}

func TestStore_InvalidVerdictsBecomeAnonymous(t *testing.T) {
	s := NewStore(nil)

	require.True(t, s.ApplyProbe(s.Begin(), models.Session{Status: models.StatusAuthenticated}))
	assert.Equal(t, models.AnonymousSession(), s.Current())

	require.True(t, s.ApplyProbe(s.Begin(), models.UnknownSession()))
	assert.Equal(t, models.AnonymousSession(), s.Current())
}

func TestStore_InvariantHoldsForEveryOutcome(t *testing.T) {
	verdicts := []models.Session{
		models.AnonymousSession(),
		models.AuthenticatedSession("alice"),
		{Status: models.StatusAuthenticated},
		{Status: models.StatusAnonymous, Username: "ghost"},
		{Status: "garbage", Username: "x"},
	}

	s := NewStore(nil)
	for _, v := range verdicts {
		s.ApplyProbe(s.Begin(), v)
		cur := s.Current()
		assert.True(t, cur.Valid(), "%+v", cur)
		assert.Equal(t, cur.Status == models.StatusAuthenticated, cur.Username != "")
	}
}

func TestStore_SubscribeNotifiesOnChangeOnly(t *testing.T) {
	s := NewStore(nil)
	var got []models.Session
	unsubscribe := s.Subscribe(func(sess models.Session) { got = append(got, sess) })

	s.ApplyProbe(s.Begin(), models.AnonymousSession())
	s.ApplyProbe(s.Begin(), models.AnonymousSession())
	s.ApplyCredentials("alice")

	require.Len(t, got, 2)
	assert.Equal(t, models.StatusAnonymous, got[0].Status)
	assert.Equal(t, "alice", got[1].Username)

	unsubscribe()
	s.ApplyProbe(s.Begin(), models.AnonymousSession())
	assert.Len(t, got, 2)
}

func TestStore_CountsStaleWrites(t *testing.T) {
	m := metrics.New()
	s := NewStore(m)

	ticket := s.Begin()
	s.ApplyCredentials("alice")
	s.ApplyProbe(ticket, models.AnonymousSession())

	n, err := testutil.GatherAndCount(m.Registry, "capgallery_session_writes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
