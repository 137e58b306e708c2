package wizard

import (
	"regexp"
	"strings"
)

// Result is the outcome of one step rule. Field names the first field to
// focus when Valid is false; it may be empty when no single field is at fault
// (e.g. too few roster members).
type Result struct {
	Valid bool   `json:"valid"`
	Field string `json:"field,omitempty"`
}

var pass = Result{Valid: true}

func fail(field string) Result { return Result{Field: field} }

// Input is what a rule may read. Rules never write to it.
type Input struct {
	Form   FormState
	Roster *Roster
	Config Config
}

type rule func(in Input) Result

var rules = map[StepKey]rule{
	StepTeam:        teamRule,
	StepGuestTeam:   guestTeamRule,
	StepProfile:     profileRule,
	StepRoster:      rosterRule,
	StepCoordinator: coordinatorRule,
	StepExtras:      extrasRule,
	StepPayment:     paymentRule,
	StepReview:      reviewRule,
}

// mobilePaymentMethods need a transaction id and the paying number.
var mobilePaymentMethods = map[string]bool{
	"bkash":  true,
	"nagad":  true,
	"rocket": true,
}

var transactionIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)

// Check evaluates the rule for key, then any extra required fields the
// tournament configured for that step. Unknown keys never pass.
func Check(key StepKey, in Input) Result {
	r, ok := rules[key]
	if !ok {
		return Result{}
	}
	if in.Roster == nil {
		in.Roster = NewRoster(in.Config.Roster, nil)
	}
	if res := r(in); !res.Valid {
		return res
	}
	return requireFields(in.Form, in.Config.RequiredFields[key]...)
}

// Validate is Check reduced to pass/fail.
func Validate(key StepKey, form FormState, roster *Roster, cfg Config) bool {
	return Check(key, Input{Form: form, Roster: roster, Config: cfg}).Valid
}

func requireFields(form FormState, fields ...string) Result {
	for _, f := range fields {
		if !filled(form, f) {
			return fail(f)
		}
	}
	return pass
}

// teamRule passes when exactly one team is selected. Multi-select widgets
// report their selection comma separated.
func teamRule(in Input) Result {
	selected := 0
	for _, part := range strings.Split(in.Form.Get(FieldTeamID), ",") {
		if strings.TrimSpace(part) != "" {
			selected++
		}
	}
	if selected != 1 {
		return fail(FieldTeamID)
	}
	return pass
}

func guestTeamRule(in Input) Result {
	if res := requireFields(in.Form, FieldTeamName, FieldTeamTag); !res.Valid {
		return res
	}
	cfg := in.Config.Roster
	n := in.Roster.Len()
	if n < cfg.MinTeamSize || (cfg.MaxRosterSize > 0 && n > cfg.MaxRosterSize) {
		return fail("")
	}
	if m, field, ok := in.Roster.firstIncomplete(); ok {
		return fail(MemberFieldName(m.ID, field))
	}
	return pass
}

func profileRule(in Input) Result {
	return requireFields(in.Form, FieldGameID)
}

func rosterRule(in Input) Result {
	if in.Roster.Counts().Starters < in.Config.Roster.MinTeamSize {
		return fail("")
	}
	return pass
}

func coordinatorRule(in Input) Result {
	switch in.Form.Get(FieldCoordinatorMode) {
	case CoordinatorSelf:
		return pass
	case CoordinatorDelegate:
		id := strings.TrimSpace(in.Form.Get(FieldCoordinatorMember))
		if id == "" {
			return fail(FieldCoordinatorMember)
		}
		if _, ok := in.Roster.Member(id); !ok {
			return fail(FieldCoordinatorMember)
		}
		return pass
	default:
		return fail(FieldCoordinatorMode)
	}
}

func extrasRule(in Input) Result {
	for _, cf := range in.Config.CustomFields {
		if cf.Required && !filled(in.Form, CustomFieldName(cf.Name)) {
			return fail(CustomFieldName(cf.Name))
		}
	}
	return pass
}

func paymentRule(in Input) Result {
	if !in.Config.HasEntryFee {
		return pass
	}
	method := strings.ToLower(strings.TrimSpace(in.Form.Get(FieldPaymentMethod)))
	if method == "" {
		return fail(FieldPaymentMethod)
	}
	if mobilePaymentMethods[method] {
		if !transactionIDPattern.MatchString(strings.TrimSpace(in.Form.Get(FieldTransactionID))) {
			return fail(FieldTransactionID)
		}
		if !filled(in.Form, FieldPaymentMobile) {
			return fail(FieldPaymentMobile)
		}
	}
	if in.Config.RequireProof && !filled(in.Form, FieldPaymentProof) {
		return fail(FieldPaymentProof)
	}
	return pass
}

func reviewRule(in Input) Result {
	if !IsChecked(in.Form.Get(FieldAcceptTerms)) {
		return fail(FieldAcceptTerms)
	}
	return pass
}
