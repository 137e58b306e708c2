package submit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go"
)

// NATSSubmitter publishes each registration on <subject>.<tournament> and
// flushes so a dead connection surfaces as an error.
type NATSSubmitter struct {
	nc      *nats.Conn
	subject string
}

func NewNATSSubmitter(nc *nats.Conn, subject string) *NATSSubmitter {
	return &NATSSubmitter{nc: nc, subject: subject}
}

// SubjectFor returns the subject registrations for tournament go to.
func (s *NATSSubmitter) SubjectFor(tournament string) string {
	return fmt.Sprintf("%s.%s", s.subject, slug.Make(tournament))
}

func (s *NATSSubmitter) Submit(ctx context.Context, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	msg := nats.NewMsg(s.SubjectFor(p.Tournament))
	msg.Header.Set(nats.MsgIdHdr, p.Code)
	msg.Data = data
	if err := s.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish registration: %w", err)
	}
	if err := s.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush registration: %w", err)
	}
	return nil
}
