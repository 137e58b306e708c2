package wizard

import "errors"

type CommandType string

const (
	CmdSetField     CommandType = "SetField"
	CmdNext         CommandType = "Next"
	CmdPrev         CommandType = "Prev"
	CmdGotoIndex    CommandType = "GotoIndex"
	CmdGotoKey      CommandType = "GotoKey"
	CmdAddMember    CommandType = "AddMember"
	CmdRemoveMember CommandType = "RemoveMember"
	CmdUpdateMember CommandType = "UpdateMember"
	CmdSync         CommandType = "Sync"
	CmdSubmit       CommandType = "Submit"
)

type Command struct {
	Type     CommandType
	Field    string
	Value    string
	Index    int
	Key      StepKey
	MemberID string
}

type EventType string

const (
	EvtStepChanged        EventType = "StepChanged"
	EvtStepValidated      EventType = "StepValidated"
	EvtReviewSynced       EventType = "ReviewSynced"
	EvtRosterChanged      EventType = "RosterChanged"
	EvtRosterFull         EventType = "RosterFull"
	EvtNavigationBlocked  EventType = "NavigationBlocked"
	EvtSubmissionAccepted EventType = "SubmissionAccepted"
	EvtSubmissionRejected EventType = "SubmissionRejected"
)

type Event struct {
	Type     EventType `json:"type"`
	Index    int       `json:"index"`
	Key      StepKey   `json:"key,omitempty"`
	Valid    bool      `json:"valid"`
	Field    string    `json:"field,omitempty"`
	MemberID string    `json:"member_id,omitempty"`
}

/*
	CmdSetField     -> EvtStepValidated (if the owning step flipped) [-> EvtReviewSynced on review]
	CmdNext/Prev/Goto* -> EvtStepChanged [-> EvtReviewSynced] | EvtNavigationBlocked (strict) | nothing (out of range)
	CmdAddMember    -> EvtRosterChanged | EvtRosterFull (warning, not an error)
	CmdRemoveMember -> EvtRosterChanged
	CmdSubmit       -> EvtSubmissionAccepted | EvtStepChanged + EvtSubmissionRejected
*/

// Apply runs one command against the session and returns the events it
// produced. Errors are reserved for malformed commands; failed validation and
// a full roster come back as events.
func Apply(s *Session, cmd Command) ([]Event, error) {
	s.pending = nil

	switch cmd.Type {
	case CmdSetField:
		if cmd.Field == "" {
			return nil, ErrUnsupportedCommand
		}
		s.SetField(cmd.Field, cmd.Value)

	case CmdNext:
		s.Next()

	case CmdPrev:
		s.Prev()

	case CmdGotoIndex:
		s.GotoIndex(cmd.Index)

	case CmdGotoKey:
		s.GotoKey(cmd.Key)

	case CmdAddMember:
		if _, err := s.AddMember(); err != nil && !errors.Is(err, ErrRosterFull) {
			return nil, err
		}

	case CmdRemoveMember:
		if err := s.RemoveMember(cmd.MemberID); err != nil {
			return nil, err
		}

	case CmdUpdateMember:
		if err := s.UpdateMember(cmd.MemberID, cmd.Field, cmd.Value); err != nil {
			return nil, err
		}

	case CmdSync:
		s.Sync()

	case CmdSubmit:
		s.TrySubmit()

	default:
		return nil, ErrUnsupportedCommand
	}

	return s.drain(), nil
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
