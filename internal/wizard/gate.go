package wizard

import "go.uber.org/zap"

// Decision is the submission gate's verdict. When Accepted is false,
// StepIndex is the lowest-indexed failing step and Field the field to focus.
type Decision struct {
	Accepted  bool    `json:"accepted"`
	StepIndex int     `json:"step_index"`
	StepKey   StepKey `json:"step_key,omitempty"`
	Field     string  `json:"field,omitempty"`
}

// TrySubmit replays every rule from scratch in step order. The first failure
// moves the wizard to that step and rejects; the validity vector is only a
// hint and is never trusted here.
func (s *Session) TrySubmit() Decision {
	for i := range s.steps {
		res := s.check(i)
		if s.validity[i] != res.Valid {
			s.validity[i] = res.Valid
			s.emit(Event{Type: EvtStepValidated, Index: i, Key: s.steps[i].Key, Valid: res.Valid, Field: res.Field})
		}
		if res.Valid {
			continue
		}

		s.focus = focus{index: i, field: res.Field}
		if i != s.current {
			s.enter(i)
		}
		d := Decision{StepIndex: i, StepKey: s.steps[i].Key, Field: res.Field}
		s.emit(Event{Type: EvtSubmissionRejected, Index: i, Key: d.StepKey, Field: d.Field})
		s.log.Debug("submission rejected",
			zap.String("step", string(d.StepKey)),
			zap.String("field", d.Field))
		return d
	}

	s.focus = focus{index: -1}
	s.emit(Event{Type: EvtSubmissionAccepted, Index: s.current, Valid: true})
	return Decision{Accepted: true, StepIndex: -1}
}
