package wizard

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadSteps_BuiltInFlows(t *testing.T) {
	cases := []struct {
		mode Mode
		want []StepKey
	}{
		{ModeTeam, []StepKey{StepTeam, StepRoster, StepCoordinator, StepExtras, StepPayment, StepReview}},
		{ModeSolo, []StepKey{StepProfile, StepExtras, StepPayment, StepReview}},
		{ModeGuestTeam, []StepKey{StepGuestTeam, StepCoordinator, StepExtras, StepPayment, StepReview}},
	}

	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			steps, err := LoadSteps(tc.mode)
			require.NoError(t, err)

			got := make([]StepKey, len(steps))
			for i, st := range steps {
				got[i] = st.Key
				assert.Equal(t, i, st.Order)
				assert.NotEmpty(t, st.Label)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadSteps_ReturnsCopies(t *testing.T) {
	a, err := LoadSteps(ModeSolo)
	require.NoError(t, err)
	a[0].Label = "mutated"
	a[0].Fields[0] = "mutated"

	b, err := LoadSteps(ModeSolo)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", b[0].Label)
	assert.NotEqual(t, "mutated", b[0].Fields[0])
}

func TestFlowsLoad_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		flows Flows
		mode  Mode
		msg   string
	}{
		{
			name:  "missing mode",
			flows: Flows{},
			mode:  ModeSolo,
			msg:   "no flow",
		},
		{
			name:  "empty flow",
			flows: Flows{ModeSolo: {}},
			mode:  ModeSolo,
			msg:   "is empty",
		},
		{
			name:  "duplicate key",
			flows: Flows{ModeSolo: {describe(StepProfile), describe(StepProfile), describe(StepReview)}},
			mode:  ModeSolo,
			msg:   "duplicate step",
		},
		{
			name:  "unknown key",
			flows: Flows{ModeSolo: {{Key: "bracket"}, describe(StepReview)}},
			mode:  ModeSolo,
			msg:   "unknown step",
		},
		{
			name:  "review not last",
			flows: Flows{ModeSolo: {describe(StepReview), describe(StepProfile)}},
			mode:  ModeSolo,
			msg:   "must end with",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.flows.Load(tc.mode)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "want ErrInvalidConfig, got %v", err)
			assert.Contains(t, err.Error(), tc.msg)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestParseFlows_OverridesOneMode(t *testing.T) {
	src := `
flows:
  solo:
    - key: profile
      label: Player Card
    - key: review
`
	flows, err := ParseFlows(strings.NewReader(src))
	require.NoError(t, err)

	solo, err := flows.Load(ModeSolo)
	require.NoError(t, err)
	require.Len(t, solo, 2)
	assert.Equal(t, "Player Card", solo[0].Label)
	assert.Equal(t, stepCatalog[StepProfile].Fields, solo[0].Fields, "fields default from the catalog")
	assert.Equal(t, stepCatalog[StepReview].Label, solo[1].Label)

	team, err := flows.Load(ModeTeam)
	require.NoError(t, err)
	assert.Len(t, team, len(FlowOrder[ModeTeam]), "modes absent from the file keep the built-in flow")
}

func TestParseFlows_ReportsEveryProblem(t *testing.T) {
	src := `
flows:
  solo:
    - key: profile
    - key: profile
    - key: review
  guest_team: []
  duo:
    - key: review
`
	_, err := ParseFlows(strings.NewReader(src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Len(t, multierr.Errors(err), 3)
}

func TestParseFlows_RejectsUnknownYAMLFields(t *testing.T) {
	src := `
flows:
  solo:
    - key: review
      colour: red
`
	_, err := ParseFlows(strings.NewReader(src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestParseFlows_Empty(t *testing.T) {
	_, err := ParseFlows(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestStepDescriptorOwns(t *testing.T) {
	d := StepDescriptor{Fields: []string{FieldTeamName, "payment_*"}}
	assert.True(t, d.owns(FieldTeamName))
	assert.True(t, d.owns(FieldTransactionID))
	assert.True(t, d.owns("payment_"))
	assert.False(t, d.owns("payment"))
	assert.False(t, d.owns(FieldTeamTag))
}

func TestTrimFlow_DropsExtrasWithoutCustomFields(t *testing.T) {
	steps, err := LoadSteps(ModeSolo)
	require.NoError(t, err)

	trimmed := trimFlow(steps, soloConfig())
	require.Len(t, trimmed, 3)
	assert.Equal(t, StepPayment, trimmed[1].Key)
	assert.Equal(t, 1, trimmed[1].Order)

	cfg := soloConfig()
	cfg.CustomFields = []CustomField{{Name: "discord", Required: true}}
	assert.Len(t, trimFlow(steps, cfg), 4)
}
