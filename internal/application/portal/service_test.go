package portal_test

import (
	"context"
	"testing"

	"planner-backend/internal/application/portal"
	"planner-backend/internal/contracts"
	"planner-backend/internal/testsupport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	stack *testsupport.Stack
	svc   *portal.Service
	alice portal.Viewer
	bob   portal.Viewer
	carol portal.Viewer
}

func newFixture(t *testing.T) *fixture {
	s := testsupport.NewStack(t)
	viewer := func(name string) portal.Viewer {
		u := s.Register(t, name)
		return portal.Viewer{UserID: u.UserID, Username: u.Username}
	}
	return &fixture{
		stack: s,
		svc:   &portal.Service{Gateway: s.GatewayClient()},
		alice: viewer("alice"),
		bob:   viewer("bob"),
		carol: viewer("carol"),
	}
}

func TestHome_ListsPublicEvents(t *testing.T) {
	f := newFixture(t)
	f.stack.CreateEvent(t, f.alice.UserID, "BBQ", true)
	f.stack.CreateEvent(t, f.alice.UserID, "Surprise", false)

	rows, err := f.svc.Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BBQ", rows[0].Title)
	assert.Equal(t, "alice", rows[0].Organizer)
	assert.Equal(t, "2025-06-14", rows[0].Date)
}

func TestCreateEvent_InvitesKnownUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateEvent(ctx, f.alice, portal.EventForm{
		Title:      "Party",
		Date:       "2025-07-01",
		Visibility: "private",
		Invites:    "bob; alice; nobody; bob",
	})
	require.NoError(t, err)
	assert.False(t, created.Event.IsPublic)
	assert.Equal(t, []string{"bob"}, created.Invited)
	assert.ElementsMatch(t, []string{"alice", "nobody"}, created.Skipped)

	rows, err := f.svc.Invites(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Party", rows[0].Title)
	assert.Equal(t, "Private", rows[0].Visibility)
	assert.Equal(t, "alice", rows[0].Organizer)

	rows, err = f.svc.Invites(ctx, f.carol)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRSVP_RemovesPendingInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	party := f.stack.CreateEvent(t, f.alice.UserID, "Party", false)
	f.stack.Invite(t, f.alice.UserID, party.EventID, f.bob.UserID)

	res, err := f.svc.RSVP(ctx, f.bob, party.EventID, "Participate")
	require.NoError(t, err)
	assert.Equal(t, contracts.ActionCreated, res.Action)

	rows, err := f.svc.Invites(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.svc.RSVP(ctx, f.carol, party.EventID, "Participate")
	assert.Error(t, err)
}

func TestCalendar_RequiresShare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bbq := f.stack.CreateEvent(t, f.alice.UserID, "BBQ", true)
	_, err := f.svc.RSVP(ctx, f.alice, bbq.EventID, "Maybe")
	require.NoError(t, err)

	own, err := f.svc.Calendar(ctx, f.alice, "")
	require.NoError(t, err)
	assert.True(t, own.Success)
	require.Len(t, own.Calendar, 1)
	assert.Equal(t, "maybe", own.Calendar[0].Status)
	assert.Equal(t, "Public", own.Calendar[0].Visibility)

	view, err := f.svc.Calendar(ctx, f.bob, "alice")
	require.NoError(t, err)
	assert.False(t, view.Success)
	assert.Empty(t, view.Calendar)

	_, err = f.svc.Share(ctx, f.alice, "bob")
	require.NoError(t, err)

	view, err = f.svc.Calendar(ctx, f.bob, "alice")
	require.NoError(t, err)
	assert.True(t, view.Success)
	assert.Len(t, view.Calendar, 1)

	view, err = f.svc.Calendar(ctx, f.bob, "ghost")
	require.NoError(t, err)
	assert.False(t, view.Success)
}

func TestShare_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Share(ctx, f.alice, " ")
	assert.ErrorIs(t, err, portal.ErrEmptyUsername)
	_, err = f.svc.Share(ctx, f.alice, "alice")
	assert.ErrorIs(t, err, portal.ErrSelfShare)
	_, err = f.svc.Share(ctx, f.alice, "ghost")
	assert.ErrorIs(t, err, portal.ErrUnknownUser)
}

func TestEventDetail_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	party := f.stack.CreateEvent(t, f.alice.UserID, "Party", false)
	f.stack.Invite(t, f.alice.UserID, party.EventID, f.bob.UserID)
	_, err := f.svc.RSVP(ctx, f.bob, party.EventID, "Participate")
	require.NoError(t, err)

	detail, err := f.svc.EventDetail(ctx, f.bob, party.EventID)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.Organizer)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, portal.Participant{Username: "bob", Status: "accepted"}, detail.Participants[0])

	_, err = f.svc.EventDetail(ctx, f.alice, party.EventID)
	require.NoError(t, err)

	_, err = f.svc.EventDetail(ctx, f.carol, party.EventID)
	assert.ErrorIs(t, err, portal.ErrNotVisible)

	_, err = f.svc.EventDetail(ctx, f.carol, 999)
	assert.ErrorIs(t, err, portal.ErrEventNotFound)
}
