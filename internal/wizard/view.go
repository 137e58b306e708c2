package wizard

// View is a self-contained copy of the session for rendering or sending over
// the wire. Mutating it does not affect the session.
type View struct {
	Tournament string            `json:"tournament"`
	Mode       Mode              `json:"mode"`
	Current    int               `json:"current"`
	CurrentKey StepKey           `json:"current_key"`
	Steps      []StepStatus      `json:"steps"`
	Progress   Progress          `json:"progress"`
	Form       map[string]string `json:"form"`
	Roster     []RosterMember    `json:"roster,omitempty"`
	Counts     RosterCounts      `json:"counts"`
	RosterFull bool              `json:"roster_full"`
	Review     *ReviewProjection `json:"review,omitempty"`
	Focus      string            `json:"focus,omitempty"`
}

func (s *Session) View() View {
	v := View{
		Tournament: s.cfg.Tournament,
		Mode:       s.cfg.Mode,
		Current:    s.current,
		CurrentKey: s.steps[s.current].Key,
		Steps:      stepStatuses(s.steps, s.validity),
		Progress:   s.Progress(),
		Form:       s.form.Values(),
		Roster:     s.roster.Members(),
		Counts:     s.roster.Counts(),
		RosterFull: s.roster.Full(),
		Focus:      s.focus.field,
	}
	if p, ok := s.Review(); ok {
		v.Review = &p
	}
	return v
}
