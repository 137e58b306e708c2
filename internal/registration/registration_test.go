package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rkRashik/deltacrown-registration/internal/submit"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
		// good: no snapshot
	}
}

// fakeSubmitter records payloads and answers with err, after release is
// closed when it is set.
type fakeSubmitter struct {
	got     chan submit.Payload
	release chan struct{}
	err     error
}

func newFakeSubmitter(err error) *fakeSubmitter {
	return &fakeSubmitter{got: make(chan submit.Payload, 4), err: err}
}

func (f *fakeSubmitter) Submit(ctx context.Context, p submit.Payload) error {
	f.got <- p
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func soloSession(t *testing.T) *wizard.Session {
	t.Helper()
	s, err := wizard.NewSession(wizard.Config{Tournament: "Dhaka Valorant Cup", Mode: wizard.ModeSolo})
	require.NoError(t, err)
	return s
}

func startRegistration(t *testing.T, opts ...Option) *Registration {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, "AB12CD", "valorant-cup", soloSession(t), opts...)
}

func do(t *testing.T, r *Registration, cmd wizard.Command) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := r.Do(ctx, cmd)
	require.NoError(t, err)
	return res
}

func fillSolo(t *testing.T, r *Registration) {
	t.Helper()
	do(t, r, wizard.Command{Type: wizard.CmdSetField, Field: wizard.FieldGameID, Value: "Sova#EUW"})
	do(t, r, wizard.Command{Type: wizard.CmdSetField, Field: wizard.FieldAcceptTerms, Value: "on"})
}

func TestRegistration_CommandBroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	r := startRegistration(t)

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvSnapshot(t, out, 100*time.Millisecond)
	assert.Equal(t, 0, first.Version)
	assert.Equal(t, wizard.StepProfile, first.View.Wizard.CurrentKey)

	r.Inbox() <- FromClient{Cmd: wizard.Command{Type: wizard.CmdSetField, Field: wizard.FieldGameID, Value: "Sova#EUW"}}

	next := recvSnapshot(t, out, 100*time.Millisecond)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, "Sova#EUW", next.View.Wizard.Form[wizard.FieldGameID])
	assert.True(t, wizard.ContainsEvent(next.Events, wizard.EvtStepValidated))

	r.Inbox() <- Shutdown{}
}

func TestRegistration_RejectedCommandRepliesWithoutBroadcast(t *testing.T) {
	r := startRegistration(t)

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	res := do(t, r, wizard.Command{Type: wizard.CmdAddMember})
	assert.ErrorIs(t, res.Err, wizard.ErrRosterLocked)
	assert.Equal(t, 0, res.Version)

	recvNoSnapshot(t, out, 100*time.Millisecond)
}

func TestRegistration_DropSlowClient(t *testing.T) {
	r := startRegistration(t)

	clientOut := make(chan Snapshot, 1)
	r.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}

	// the join snapshot fills the buffer, so the next broadcast drops c1
	r.Inbox() <- FromClient{Cmd: wizard.Command{Type: wizard.CmdNext}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	view, err := r.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, view.NumClients)
}

func TestRegistration_AcceptedSubmissionHandsOff(t *testing.T) {
	sub := newFakeSubmitter(nil)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := startRegistration(t, WithSubmitter(sub), WithClock(func() time.Time { return at }))

	out := make(chan Snapshot, 8)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	fillSolo(t, r)
	_ = recvSnapshot(t, out, 100*time.Millisecond)
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	res := do(t, r, wizard.Command{Type: wizard.CmdSubmit})
	require.NoError(t, res.Err)
	assert.True(t, wizard.ContainsEvent(res.Events, wizard.EvtSubmissionAccepted))
	assert.Equal(t, StatusPending, res.View.Status)

	var p submit.Payload
	select {
	case p = <-sub.got:
	case <-time.After(time.Second):
		t.Fatal("submitter was not called")
	}
	assert.Equal(t, "AB12CD", p.Code)
	assert.Equal(t, "valorant-cup", p.Tournament)
	assert.Equal(t, "Sova#EUW", p.Form[wizard.FieldGameID])
	assert.Equal(t, at, p.SubmittedAt)

	pending := recvSnapshot(t, out, 100*time.Millisecond)
	assert.Equal(t, StatusPending, pending.View.Status)
	done := recvSnapshot(t, out, time.Second)
	assert.Equal(t, StatusSubmitted, done.View.Status)
	assert.Equal(t, pending.Version+1, done.Version)

	// submitted registrations no longer accept edits
	res = do(t, r, wizard.Command{Type: wizard.CmdSetField, Field: wizard.FieldGameID, Value: "other"})
	assert.ErrorIs(t, res.Err, ErrLocked)
	assert.Equal(t, "Sova#EUW", res.View.Wizard.Form[wizard.FieldGameID])
}

func TestRegistration_FailedHandOffUnlocks(t *testing.T) {
	sub := newFakeSubmitter(errors.New("intake down"))
	r := startRegistration(t, WithSubmitter(sub))

	out := make(chan Snapshot, 8)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	fillSolo(t, r)
	do(t, r, wizard.Command{Type: wizard.CmdSubmit})
	for i := 0; i < 3; i++ {
		_ = recvSnapshot(t, out, 100*time.Millisecond)
	}

	failed := recvSnapshot(t, out, time.Second)
	assert.Equal(t, StatusFailed, failed.View.Status)
	assert.Equal(t, "intake down", failed.View.SubmitError)

	res := do(t, r, wizard.Command{Type: wizard.CmdSubmit})
	require.NoError(t, res.Err, "a failed hand-off can be retried")
	assert.Equal(t, StatusPending, res.View.Status)
	assert.Empty(t, res.View.SubmitError)
}

func TestRegistration_RejectedSubmissionStaysDraft(t *testing.T) {
	sub := newFakeSubmitter(nil)
	r := startRegistration(t, WithSubmitter(sub))

	res := do(t, r, wizard.Command{Type: wizard.CmdSubmit})
	require.NoError(t, res.Err)
	assert.True(t, wizard.ContainsEvent(res.Events, wizard.EvtSubmissionRejected))
	assert.Equal(t, StatusDraft, res.View.Status)
	assert.Equal(t, wizard.FieldGameID, res.View.Wizard.Focus)

	select {
	case <-sub.got:
		t.Fatal("rejected submission reached the submitter")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRegistration_ShutdownCancelsPendingHandOff(t *testing.T) {
	sub := newFakeSubmitter(nil)
	sub.release = make(chan struct{})
	r := startRegistration(t, WithSubmitter(sub))

	out := make(chan Snapshot, 8)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	fillSolo(t, r)
	do(t, r, wizard.Command{Type: wizard.CmdSubmit})
	<-sub.got

	r.Inbox() <- Shutdown{}
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("registration did not stop")
	}

	// drain what was sent before shutdown; the outbox must end closed
	for range out {
	}

	_, err := r.Do(context.Background(), wizard.Command{Type: wizard.CmdNext})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistration_LeaveClosesOutbox(t *testing.T) {
	r := startRegistration(t)

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	r.Inbox() <- Leave{ClientID: "c1"}
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("outbox not closed on leave")
	}
}

func TestRegistration_RejoinClosesPreviousOutbox(t *testing.T) {
	r := startRegistration(t)

	old := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: old}
	recvSnapshot(t, old, 100*time.Millisecond)

	fresh := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: fresh}
	snap := recvSnapshot(t, fresh, 100*time.Millisecond)
	assert.Equal(t, 1, snap.View.NumClients)

	select {
	case _, ok := <-old:
		assert.False(t, ok, "old outbox should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("old outbox was left open")
	}
}

func TestRegistration_UnbufferedOutboxIsRefused(t *testing.T) {
	r := startRegistration(t)

	out := make(chan Snapshot)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := r.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, v.NumClients)

	_, ok := <-out
	assert.False(t, ok)
}

func TestRegistration_IdleWithoutClientsStops(t *testing.T) {
	r := startRegistration(t, WithIdleTimeout(20*time.Millisecond))

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("idle registration still running")
	}
}

func TestRegistration_AttachedClientKeepsItAlive(t *testing.T) {
	r := startRegistration(t, WithIdleTimeout(20*time.Millisecond))

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	recvSnapshot(t, out, 100*time.Millisecond)

	select {
	case <-r.Done():
		t.Fatal("registration stopped with a client attached")
	case <-time.After(100 * time.Millisecond):
	}

	r.Inbox() <- Leave{ClientID: "c1"}
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("registration outlived its last client")
	}
}
