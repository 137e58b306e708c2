package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func samplePayload() Payload {
	return NewPayload("AB12CD", "valorant-cup", wizard.Submission{
		Tournament: "DeltaCrown Valorant Cup",
		Mode:       wizard.ModeGuestTeam,
		Form:       map[string]string{wizard.FieldTeamName: "Crimson Owls"},
		Roster:     []wizard.RosterMember{{ID: "m1", Role: wizard.RoleStarter, GameID: "owl#1"}},
	}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("BST", 6*3600)))
}

func TestNewPayload(t *testing.T) {
	p := samplePayload()
	assert.Equal(t, "valorant-cup", p.Tournament)
	assert.Equal(t, "DeltaCrown Valorant Cup", p.TournamentName)
	assert.Equal(t, time.UTC, p.SubmittedAt.Location())
	assert.Equal(t, 6, p.SubmittedAt.Hour())
}

func TestLogSubmitter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSubmitter(zap.New(core))

	require.NoError(t, s.Submit(context.Background(), samplePayload()))
	entries := logs.FilterMessage("registration submitted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "AB12CD", entries[0].ContextMap()["code"])
}

func TestHTTPSubmitter(t *testing.T) {
	var got Payload
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := samplePayload()
	require.NoError(t, NewHTTPSubmitter(srv.URL, srv.Client()).Submit(context.Background(), p))
	assert.Equal(t, "AB12CD", key)
	assert.Equal(t, p.Form, got.Form)
	assert.Equal(t, p.Roster, got.Roster)
}

func TestHTTPSubmitter_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate registration", http.StatusConflict)
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL, srv.Client()).Submit(context.Background(), samplePayload())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "duplicate registration")
}

func TestHTTPSubmitter_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewHTTPSubmitter(srv.URL, srv.Client()).Submit(ctx, samplePayload())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func startNATS(t *testing.T) *nats.Conn {
	t.Helper()
	ns, err := server.NewServer(&server.Options{DontListen: true})
	require.NoError(t, err)
	go ns.Start()
	t.Cleanup(ns.Shutdown)
	require.True(t, ns.ReadyForConnections(4*time.Second), "nats server not ready")

	nc, err := nats.Connect("", nats.InProcessServer(ns))
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestNATSSubmitter(t *testing.T) {
	nc := startNATS(t)
	s := NewNATSSubmitter(nc, "registrations")
	assert.Equal(t, "registrations.valorant-cup", s.SubjectFor("valorant-cup"))

	sub, err := nc.SubscribeSync("registrations.>")
	require.NoError(t, err)

	p := samplePayload()
	require.NoError(t, s.Submit(context.Background(), p))

	msg, err := sub.NextMsg(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "registrations.valorant-cup", msg.Subject)
	assert.Equal(t, "AB12CD", msg.Header.Get(nats.MsgIdHdr))

	var got Payload
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, p.Code, got.Code)
	assert.Equal(t, p.Mode, got.Mode)
}

func TestNATSSubmitter_ClosedConnection(t *testing.T) {
	nc := startNATS(t)
	nc.Close()

	err := NewNATSSubmitter(nc, "registrations").Submit(context.Background(), samplePayload())
	assert.Error(t, err)
}
