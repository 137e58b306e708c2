// Package submit delivers accepted registrations to whatever system takes
// them from here.
package submit

import (
	"context"
	"time"

	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"go.uber.org/zap"
)

// Payload is one accepted registration.
type Payload struct {
	Code           string                `json:"code"`
	Tournament     string                `json:"tournament"`
	TournamentName string                `json:"tournament_name"`
	Mode           wizard.Mode           `json:"mode"`
	Form           map[string]string     `json:"form"`
	Roster         []wizard.RosterMember `json:"roster,omitempty"`
	SubmittedAt    time.Time             `json:"submitted_at"`
}

// NewPayload wraps the session's submission for the registration with code
// in tournament (a catalog slug).
func NewPayload(code, tournament string, s wizard.Submission, at time.Time) Payload {
	return Payload{
		Code:           code,
		Tournament:     tournament,
		TournamentName: s.Tournament,
		Mode:           s.Mode,
		Form:           s.Form,
		Roster:         s.Roster,
		SubmittedAt:    at.UTC(),
	}
}

type Submitter interface {
	Submit(ctx context.Context, p Payload) error
}

// LogSubmitter only records the registration. It never fails.
type LogSubmitter struct {
	log *zap.Logger
}

func NewLogSubmitter(log *zap.Logger) *LogSubmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSubmitter{log: log}
}

func (s *LogSubmitter) Submit(_ context.Context, p Payload) error {
	s.log.Info("registration submitted",
		zap.String("code", p.Code),
		zap.String("tournament", p.Tournament),
		zap.String("mode", string(p.Mode)),
		zap.Int("roster", len(p.Roster)))
	return nil
}
