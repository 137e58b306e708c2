package wizard

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Session is the wizard controller for one registration. It owns the form,
// the roster, the current step and the validity vector; nothing else writes
// to them.
type Session struct {
	cfg      Config
	steps    []StepDescriptor
	form     FormState
	roster   *Roster
	validity []bool
	current  int
	review   *ReviewProjection
	focus    focus
	strict   bool

	flows   Flows
	newID   func() string
	log     *zap.Logger
	pending []Event
}

type focus struct {
	index int
	field string
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithStrictNavigation blocks forward navigation past a step that does not
// validate. The default lets users jump anywhere and gates only submission.
func WithStrictNavigation() Option {
	return func(s *Session) { s.strict = true }
}

func WithFlows(f Flows) Option {
	return func(s *Session) { s.flows = f }
}

func WithFormState(fs FormState) Option {
	return func(s *Session) { s.form = fs }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// NewSession builds the flow for cfg.Mode, evaluates every step once and
// enters step 0. Malformed configuration fails with a *ConfigError.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:   cfg,
		flows: DefaultFlows(),
		log:   zap.NewNop(),
		focus: focus{index: -1},
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, configf("%v", err)
	}
	if err := validateRosterConfig(cfg.Roster); err != nil {
		return nil, err
	}
	steps, err := s.flows.Load(cfg.Mode)
	if err != nil {
		return nil, err
	}
	s.steps = trimFlow(steps, cfg)

	if s.form == nil {
		s.form = NewMapState(nil)
	}
	if hasStep(s.steps, StepCoordinator) && s.form.Get(FieldCoordinatorMode) == "" {
		s.form.Set(FieldCoordinatorMode, CoordinatorSelf)
	}
	s.roster = NewRoster(cfg.Roster, s.newID)
	if cfg.Mode == ModeTeam {
		s.roster.seed(cfg.TeamMembers)
	}

	s.validity = make([]bool, len(s.steps))
	for i := range s.steps {
		s.validity[i] = s.check(i).Valid
	}
	s.enter(0)
	s.pending = nil

	s.log.Debug("wizard session created",
		zap.String("mode", string(cfg.Mode)),
		zap.String("tournament", cfg.Tournament),
		zap.Int("steps", len(s.steps)))
	return s, nil
}

func validateRosterConfig(rc RosterConfig) error {
	switch {
	case rc.MinTeamSize < 0:
		return configf("min team size %d is negative", rc.MinTeamSize)
	case rc.MaxRosterSize < 0:
		return configf("max roster size %d is negative", rc.MaxRosterSize)
	case rc.MaxRosterSize > 0 && rc.MaxRosterSize < rc.MinTeamSize:
		return configf("max roster size %d is below min team size %d", rc.MaxRosterSize, rc.MinTeamSize)
	}
	return nil
}

func (s *Session) Config() Config { return s.cfg }

// Steps returns a copy of the active flow.
func (s *Session) Steps() []StepDescriptor { return renumberSteps(s.steps) }

func (s *Session) Current() int { return s.current }

func (s *Session) CurrentStep() StepDescriptor { return s.steps[s.current] }

// Validity returns a copy of the per-step validity vector.
func (s *Session) Validity() []bool { return slices.Clone(s.validity) }

func (s *Session) Progress() Progress { return progressOf(s.validity) }

func (s *Session) Value(field string) string { return s.form.Get(field) }

func (s *Session) Members() []RosterMember { return s.roster.Members() }

func (s *Session) RosterCounts() RosterCounts { return s.roster.Counts() }

// Review returns the latest projection, if the review step has been synced.
func (s *Session) Review() (ReviewProjection, bool) {
	if s.review == nil {
		return ReviewProjection{}, false
	}
	return *s.review, true
}

// Focus is the field the last rejected submission pointed at.
func (s *Session) Focus() string { return s.focus.field }

func (s *Session) IndexOf(key StepKey) int {
	return slices.IndexFunc(s.steps, func(st StepDescriptor) bool { return st.Key == key })
}

// GotoIndex shows step i. Out-of-range targets are ignored. In strict mode a
// forward jump past an invalid step is refused. It reports whether the
// wizard moved.
func (s *Session) GotoIndex(i int) bool {
	if i < 0 || i >= len(s.steps) {
		s.log.Debug("navigation out of range", zap.Int("index", i), zap.Int("steps", len(s.steps)))
		return false
	}
	s.revalidate(s.current)
	if s.strict && i > s.current {
		for j := s.current; j < i; j++ {
			if !s.validity[j] {
				s.emit(Event{Type: EvtNavigationBlocked, Index: j, Key: s.steps[j].Key})
				return false
			}
		}
	}
	s.enter(i)
	return true
}

func (s *Session) GotoKey(key StepKey) bool {
	i := s.IndexOf(key)
	if i < 0 {
		return false
	}
	return s.GotoIndex(i)
}

func (s *Session) Next() bool {
	if s.current+1 >= len(s.steps) {
		return false
	}
	return s.GotoIndex(s.current + 1)
}

func (s *Session) Prev() bool {
	if s.current == 0 {
		return false
	}
	return s.GotoIndex(s.current - 1)
}

// SetField writes one form field and re-validates every step that owns or
// requires it, or the active step when no step claims the field. The result
// is that of the first such step.
func (s *Session) SetField(field, value string) Result {
	if field == FieldTransactionID {
		value = strings.TrimSpace(value)
		// Only a well-formed id is upper-cased; anything else is stored as
		// typed so the payment rule still rejects it.
		if transactionIDPattern.MatchString(value) {
			value = strings.ToUpper(value)
		}
	}
	s.form.Set(field, value)

	owners := s.ownersOf(field)
	if len(owners) == 0 {
		owners = []int{s.current}
	}
	res := s.revalidate(owners[0])
	for _, i := range owners[1:] {
		s.revalidate(i)
	}
	s.resyncReview()
	return res
}

// AddMember appends a guest roster member. A full roster yields ErrRosterFull
// and a RosterFull event; the roster is unchanged.
func (s *Session) AddMember() (RosterMember, error) {
	if s.cfg.Mode != ModeGuestTeam {
		return RosterMember{}, ErrRosterLocked
	}
	m, err := s.roster.Add()
	if err != nil {
		s.emit(Event{Type: EvtRosterFull})
		s.log.Debug("roster full", zap.Int("max", s.cfg.Roster.MaxRosterSize))
		return RosterMember{}, err
	}
	s.emit(Event{Type: EvtRosterChanged, MemberID: m.ID})
	s.rosterChanged()
	return m, nil
}

// RemoveMember drops a guest roster member. A coordinator delegation that
// pointed at the member is cleared with it.
func (s *Session) RemoveMember(id string) error {
	if s.cfg.Mode != ModeGuestTeam {
		return ErrRosterLocked
	}
	if !s.roster.Remove(id) {
		return ErrUnknownMember
	}
	if s.form.Get(FieldCoordinatorMember) == id {
		s.form.Set(FieldCoordinatorMember, "")
	}
	s.emit(Event{Type: EvtRosterChanged, MemberID: id})
	s.rosterChanged()
	return nil
}

func (s *Session) UpdateMember(id, field, value string) error {
	if err := s.roster.Update(id, field, value); err != nil {
		return err
	}
	s.emit(Event{Type: EvtRosterChanged, MemberID: id})
	s.rosterChanged()
	return nil
}

// Sync re-validates every step and rebuilds the review projection.
func (s *Session) Sync() ReviewProjection {
	for i := range s.steps {
		s.revalidate(i)
	}
	p := Project(s.steps, s.validity, s.form, s.roster, s.cfg)
	s.review = &p
	s.emit(Event{Type: EvtReviewSynced, Index: s.current, Valid: p.Ready})
	return p
}

// Submission is the payload handed to the external submit action.
func (s *Session) Submission() Submission {
	return Submission{
		Tournament: s.cfg.Tournament,
		Mode:       s.cfg.Mode,
		Form:       s.form.Values(),
		Roster:     s.roster.Members(),
	}
}

type Submission struct {
	Tournament string            `json:"tournament"`
	Mode       Mode              `json:"mode"`
	Form       map[string]string `json:"form"`
	Roster     []RosterMember    `json:"roster,omitempty"`
}

func (s *Session) check(i int) Result {
	return Check(s.steps[i].Key, Input{Form: s.form, Roster: s.roster, Config: s.cfg})
}

func (s *Session) revalidate(i int) Result {
	res := s.check(i)
	if s.validity[i] != res.Valid {
		s.validity[i] = res.Valid
		s.emit(Event{Type: EvtStepValidated, Index: i, Key: s.steps[i].Key, Valid: res.Valid, Field: res.Field})
	}
	if res.Valid && s.focus.index == i {
		s.focus = focus{index: -1}
	}
	return res
}

// enter makes i the active step; the review step is synced on entry.
func (s *Session) enter(i int) {
	s.current = i
	s.emit(Event{Type: EvtStepChanged, Index: i, Key: s.steps[i].Key, Valid: s.validity[i]})
	if s.steps[i].Key == StepReview {
		s.Sync()
	}
}

func (s *Session) resyncReview() {
	if s.steps[s.current].Key == StepReview {
		s.Sync()
	}
}

func (s *Session) rosterChanged() {
	for i, st := range s.steps {
		switch st.Key {
		case StepGuestTeam, StepRoster, StepCoordinator:
			s.revalidate(i)
		}
	}
	s.resyncReview()
}

// ownersOf lists the step claiming field in its descriptor first, followed by
// steps the organizer configured it as required on.
func (s *Session) ownersOf(field string) []int {
	var out []int
	if i := slices.IndexFunc(s.steps, func(st StepDescriptor) bool { return st.owns(field) }); i >= 0 {
		out = append(out, i)
	}
	for i, st := range s.steps {
		if slices.Contains(s.cfg.RequiredFields[st.Key], field) && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	return out
}

func (s *Session) emit(e Event) { s.pending = append(s.pending, e) }

func (s *Session) drain() []Event {
	out := s.pending
	s.pending = nil
	return out
}
