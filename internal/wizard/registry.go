package wizard

import (
	"slices"

	"go.uber.org/multierr"
)

var stepCatalog = map[StepKey]StepDescriptor{
	StepTeam: {
		Key: StepTeam, Label: "Team", Subtitle: "Pick the team you are entering", Icon: "shield",
		Fields: []string{FieldTeamID},
	},
	StepGuestTeam: {
		Key: StepGuestTeam, Label: "Team Details", Subtitle: "Name your team and build the lineup", Icon: "user-plus",
		Fields: []string{FieldTeamName, FieldTeamTag},
	},
	StepProfile: {
		Key: StepProfile, Label: "Player Profile", Subtitle: "Your in-game identity", Icon: "user",
		Fields: []string{FieldGameID, FieldDisplayName, "profile_*"},
	},
	StepRoster: {
		Key: StepRoster, Label: "Roster", Subtitle: "Assign starters and substitutes", Icon: "users",
	},
	StepCoordinator: {
		Key: StepCoordinator, Label: "Coordinator", Subtitle: "Who speaks for the team", Icon: "headset",
		Fields: []string{FieldCoordinatorMode, FieldCoordinatorMember, "coordinator_*"},
	},
	StepExtras: {
		Key: StepExtras, Label: "Additional Info", Subtitle: "Questions from the organizer", Icon: "list",
		Fields: []string{customFieldPrefix + "*"},
	},
	StepPayment: {
		Key: StepPayment, Label: "Payment", Subtitle: "Entry fee", Icon: "wallet",
		Fields: []string{"payment_*"},
	},
	StepReview: {
		Key: StepReview, Label: "Review", Subtitle: "Confirm and submit", Icon: "check",
		Fields: []string{FieldAcceptTerms},
	},
}

// FlowOrder is the built-in step order for each mode.
var FlowOrder = map[Mode][]StepKey{
	ModeTeam:      {StepTeam, StepRoster, StepCoordinator, StepExtras, StepPayment, StepReview},
	ModeSolo:      {StepProfile, StepExtras, StepPayment, StepReview},
	ModeGuestTeam: {StepGuestTeam, StepCoordinator, StepExtras, StepPayment, StepReview},
}

// Flows maps each mode onto its ordered steps.
type Flows map[Mode][]StepDescriptor

func DefaultFlows() Flows {
	f := make(Flows, len(FlowOrder))
	for mode, keys := range FlowOrder {
		steps := make([]StepDescriptor, 0, len(keys))
		for _, k := range keys {
			steps = append(steps, describe(k))
		}
		f[mode] = steps
	}
	return f
}

// LoadSteps returns the built-in flow for mode.
func LoadSteps(mode Mode) ([]StepDescriptor, error) {
	return DefaultFlows().Load(mode)
}

// Load returns a copy of the flow for mode with Order set to each step's
// position. Malformed flows fail with a *ConfigError.
func (f Flows) Load(mode Mode) ([]StepDescriptor, error) {
	steps, ok := f[mode]
	if !ok {
		return nil, configf("no flow for mode %q", mode)
	}
	out := renumberSteps(steps)
	if err := validateFlow(mode, out); err != nil {
		return nil, err
	}
	return out, nil
}

func describe(k StepKey) StepDescriptor {
	d := stepCatalog[k]
	d.Fields = slices.Clone(d.Fields)
	return d
}

func renumberSteps(steps []StepDescriptor) []StepDescriptor {
	out := make([]StepDescriptor, len(steps))
	for i, st := range steps {
		st.Fields = slices.Clone(st.Fields)
		st.Order = i
		out[i] = st
	}
	return out
}

// validateFlow reports every problem in one flow rather than the first.
func validateFlow(mode Mode, steps []StepDescriptor) error {
	if len(steps) == 0 {
		return configf("flow %q is empty", mode)
	}

	var err error
	seen := make(map[StepKey]bool, len(steps))
	for i, st := range steps {
		if _, known := stepCatalog[st.Key]; !known {
			err = multierr.Append(err, configf("flow %q: unknown step %q at position %d", mode, st.Key, i))
			continue
		}
		if seen[st.Key] {
			err = multierr.Append(err, configf("flow %q: duplicate step %q", mode, st.Key))
		}
		seen[st.Key] = true
	}
	if last := steps[len(steps)-1].Key; last != StepReview {
		err = multierr.Append(err, configf("flow %q must end with %q, ends with %q", mode, StepReview, last))
	}
	return err
}

// trimFlow drops the extras step when the tournament asks nothing extra.
func trimFlow(steps []StepDescriptor, cfg Config) []StepDescriptor {
	if len(cfg.CustomFields) > 0 || len(cfg.RequiredFields[StepExtras]) > 0 {
		return steps
	}
	kept := slices.DeleteFunc(slices.Clone(steps), func(st StepDescriptor) bool {
		return st.Key == StepExtras
	})
	return renumberSteps(kept)
}
