package hub

import (
	"context"

	"github.com/rkRashik/deltacrown-registration/internal/registration"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// CreateRegistration starts a registration under Code. Reply receives nil
// when the code is already taken.
type CreateRegistration struct {
	Code       string
	Tournament string
	Session    *wizard.Session
	Reply      chan *registration.Registration
}

type GetRegistration struct {
	Code  string
	Reply chan *registration.Registration
}

// RemoveRegistration stops and forgets the registration under Code. When Reg
// is set only that exact registration is removed.
type RemoveRegistration struct {
	Code string
	Reg  *registration.Registration
}

type CountRegistrations struct {
	Reply chan int
}

type ShutdownHub struct{}

type Hub struct {
	inbox         chan HubMsg
	registrations map[string]*registration.Registration
	opts          []registration.Option
	log           *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
}

func (CreateRegistration) isHubMsg() {}
func (GetRegistration) isHubMsg()    {}
func (RemoveRegistration) isHubMsg() {}
func (CountRegistrations) isHubMsg() {}
func (ShutdownHub) isHubMsg()        {}

// NewHub starts the directory. opts apply to every registration it creates.
func NewHub(parent context.Context, log *zap.Logger, opts ...registration.Option) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:         make(chan HubMsg, 64),
		registrations: make(map[string]*registration.Registration),
		opts:          append([]registration.Option{registration.WithLogger(log)}, opts...),
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub and its registrations have been told to stop.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRegistration:
				if h.registrations[msg.Code] != nil {
					msg.Reply <- nil
					break
				}
				reg := registration.New(h.ctx, msg.Code, msg.Tournament, msg.Session, h.opts...)
				h.registrations[msg.Code] = reg
				go h.reap(msg.Code, reg)
				h.log.Info("registration opened",
					zap.String("code", msg.Code),
					zap.String("tournament", msg.Tournament),
					zap.String("mode", string(msg.Session.Config().Mode)))
				msg.Reply <- reg

			case GetRegistration:
				msg.Reply <- h.registrations[msg.Code] // May be nil

			case RemoveRegistration:
				if reg := h.registrations[msg.Code]; reg != nil && (msg.Reg == nil || msg.Reg == reg) {
					stop(reg)
					delete(h.registrations, msg.Code)
				}

			case CountRegistrations:
				msg.Reply <- len(h.registrations)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for code, reg := range h.registrations {
		stop(reg)
		delete(h.registrations, code)
	}
	h.cancel()
}

// reap forgets a registration that stopped on its own, for example after
// going idle.
func (h *Hub) reap(code string, reg *registration.Registration) {
	select {
	case <-reg.Done():
	case <-h.done:
		return
	}
	select {
	case h.inbox <- RemoveRegistration{Code: code, Reg: reg}:
	case <-h.done:
	}
}

func stop(reg *registration.Registration) {
	select {
	case reg.Inbox() <- registration.Shutdown{}:
	case <-reg.Done():
	}
}

// Create asks the hub to start a registration and waits for the answer.
func (h *Hub) Create(ctx context.Context, code, tournament string, s *wizard.Session) (*registration.Registration, error) {
	reply := make(chan *registration.Registration, 1)
	if err := h.send(ctx, CreateRegistration{Code: code, Tournament: tournament, Session: s, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

// Get returns the registration for code, or nil.
func (h *Hub) Get(ctx context.Context, code string) (*registration.Registration, error) {
	reply := make(chan *registration.Registration, 1)
	if err := h.send(ctx, GetRegistration{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return registration.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) await(ctx context.Context, reply chan *registration.Registration) (*registration.Registration, error) {
	select {
	case reg := <-reply:
		return reg, nil
	case <-h.done:
		return nil, registration.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
