// Package registration runs one wizard session as an actor: a single
// goroutine owns the session and every caller talks to it through Inbox.
package registration

import (
	"context"
	"errors"
	"time"

	"github.com/rkRashik/deltacrown-registration/internal/submit"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"go.uber.org/zap"
)

var (
	ErrLocked = errors.New("registration is already submitted")
	ErrClosed = errors.New("registration is closed")
)

type Msg interface{ isRegistrationMsg() }

// FromClient applies one wizard command. Reply, when set, must be buffered;
// it receives the outcome before the broadcast goes out.
type FromClient struct {
	Cmd   wizard.Command
	Reply chan Result
}

func (FromClient) isRegistrationMsg() {}

// Join attaches a client. Outbox must be buffered: an unbuffered or full one
// is closed straight away and the client is not attached. Joining again
// with the same ClientID closes the outbox it had before.
type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRegistrationMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRegistrationMsg() {}

type Shutdown struct{}

func (Shutdown) isRegistrationMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRegistrationMsg() {}

// submitted reports the outcome of the hand-off started on acceptance.
type submitted struct{ err error }

func (submitted) isRegistrationMsg() {}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

type Result struct {
	Version int            `json:"version"`
	Events  []wizard.Event `json:"events"`
	View    View           `json:"view"`
	Err     error          `json:"-"`
}

type Snapshot struct {
	Version int            `json:"version"`
	Events  []wizard.Event `json:"events,omitempty"`
	View    View           `json:"view"`
}

type View struct {
	Code        string      `json:"code"`
	Tournament  string      `json:"tournament"`
	Version     int         `json:"version"`
	NumClients  int         `json:"num_clients"`
	Status      Status      `json:"status"`
	SubmitError string      `json:"submit_error,omitempty"`
	Wizard      wizard.View `json:"wizard"`
}

type Registration struct {
	code       string
	tournament string
	inbox      chan Msg
	session    *wizard.Session
	version    int
	clients    map[string]chan Snapshot
	status     Status
	submitErr  string

	submitter submit.Submitter
	timeout   time.Duration
	idle      time.Duration
	now       func() time.Time
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Registration)

func WithSubmitter(s submit.Submitter) Option {
	return func(r *Registration) { r.submitter = s }
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(r *Registration) { r.timeout = d }
}

// WithIdleTimeout stops the actor once it has gone d without a message while
// no client is attached and no hand-off is in flight. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registration) { r.idle = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registration) { r.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registration) { r.now = now }
}

// New starts the actor for session s. tournament is the catalog slug the
// registration belongs to.
func New(parent context.Context, code, tournament string, s *wizard.Session, opts ...Option) *Registration {
	ctx, cancel := context.WithCancel(parent)

	r := &Registration{
		code:       code,
		tournament: tournament,
		inbox:      make(chan Msg, 64),
		session:    s,
		clients:    make(map[string]chan Snapshot),
		status:     StatusDraft,
		timeout:    10 * time.Second,
		now:        time.Now,
		log:        zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.submitter == nil {
		r.submitter = submit.NewLogSubmitter(r.log)
	}
	r.log = r.log.With(zap.String("code", code), zap.String("tournament", tournament))

	go r.loop()
	return r
}

func (r *Registration) loop() {
	defer close(r.done)

	var (
		timer *time.Timer
		idle  <-chan time.Time
	)
	if r.idle > 0 {
		timer = time.NewTimer(r.idle)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-idle:
			if len(r.clients) == 0 && r.status != StatusPending {
				r.log.Info("registration idle, stopping", zap.Duration("idle", r.idle))
				r.shutdown()
				return
			}
			timer.Reset(r.idle)

		case m := <-r.inbox:
			if timer != nil {
				timer.Reset(r.idle)
			}
			switch msg := m.(type) {
			case Join:
				r.join(msg)

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case FromClient:
				r.apply(msg)

			case submitted:
				r.finishSubmit(msg.err)

			case GetState:
				msg.Reply <- r.view()

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Registration) join(msg Join) {
	if old, ok := r.clients[msg.ClientID]; ok {
		delete(r.clients, msg.ClientID)
		if old != msg.Outbox {
			close(old)
		}
	}
	if cap(msg.Outbox) == 0 {
		r.log.Warn("join refused, outbox is unbuffered", zap.String("client", msg.ClientID))
		close(msg.Outbox)
		return
	}
	// Register client + send current snapshot immediately
	r.clients[msg.ClientID] = msg.Outbox
	select {
	case msg.Outbox <- Snapshot{Version: r.version, View: r.view()}:
	default:
		close(msg.Outbox)
		delete(r.clients, msg.ClientID)
	}
}

func (r *Registration) apply(msg FromClient) {
	if r.status == StatusPending || r.status == StatusSubmitted {
		r.reply(msg, Result{Version: r.version, View: r.view(), Err: ErrLocked})
		return
	}

	events, err := wizard.Apply(r.session, msg.Cmd)
	if err != nil {
		r.log.Debug("command rejected", zap.String("cmd", string(msg.Cmd.Type)), zap.Error(err))
		r.reply(msg, Result{Version: r.version, View: r.view(), Err: err})
		return
	}

	if wizard.ContainsEvent(events, wizard.EvtSubmissionAccepted) {
		r.startSubmit()
	}
	r.version++
	v := r.view()
	r.reply(msg, Result{Version: r.version, Events: events, View: v})
	r.broadcast(Snapshot{Version: r.version, Events: events, View: v})
}

// startSubmit hands the payload to the submitter off the actor goroutine.
// The outcome comes back through the inbox as a submitted message.
func (r *Registration) startSubmit() {
	r.status = StatusPending
	r.submitErr = ""
	p := submit.NewPayload(r.code, r.tournament, r.session.Submission(), r.now())

	go func() {
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		defer cancel()
		err := r.submitter.Submit(ctx, p)
		select {
		case r.inbox <- submitted{err: err}:
		case <-r.ctx.Done():
		}
	}()
}

func (r *Registration) finishSubmit(err error) {
	if err != nil {
		r.status = StatusFailed
		r.submitErr = err.Error()
		r.log.Warn("registration hand-off failed", zap.Error(err))
	} else {
		r.status = StatusSubmitted
		r.log.Info("registration handed off")
	}
	r.version++
	r.broadcast(Snapshot{Version: r.version, View: r.view()})
}

func (r *Registration) reply(msg FromClient, res Result) {
	if msg.Reply != nil {
		msg.Reply <- res
	}
}

func (r *Registration) view() View {
	return View{
		Code:        r.code,
		Tournament:  r.tournament,
		Version:     r.version,
		NumClients:  len(r.clients),
		Status:      r.status,
		SubmitError: r.submitErr,
		Wizard:      r.session.View(),
	}
}

func (r *Registration) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Registration) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Registration) Code() string { return r.code }

// Inbox accepts messages for the actor. Sends block once the buffer fills.
func (r *Registration) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the actor has stopped.
func (r *Registration) Done() <-chan struct{} { return r.done }

// Send delivers m unless ctx ends or the actor has stopped first.
func (r *Registration) Send(ctx context.Context, m Msg) error {
	select {
	case r.inbox <- m:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do applies cmd and waits for the outcome. A rejected command comes back
// as Result.Err with the unchanged view.
func (r *Registration) Do(ctx context.Context, cmd wizard.Command) (Result, error) {
	reply := make(chan Result, 1)
	if err := r.Send(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return Result{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-r.done:
		select {
		case res := <-reply:
			return res, nil
		default:
			return Result{}, ErrClosed
		}
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Registration) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := r.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		select {
		case v := <-reply:
			return v, nil
		default:
			return View{}, ErrClosed
		}
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
