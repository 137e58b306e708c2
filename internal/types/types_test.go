package types

import (
	"encoding/json"
	"testing"

	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMessage_Command(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want wizard.Command
		ok   bool
	}{
		{
			name: "set field",
			raw:  `{"type":"SetField","field":"game_id","value":"Sova#EUW"}`,
			want: wizard.Command{Type: wizard.CmdSetField, Field: "game_id", Value: "Sova#EUW"},
			ok:   true,
		},
		{
			name: "goto key",
			raw:  `{"type":"GotoKey","key":"review"}`,
			want: wizard.Command{Type: wizard.CmdGotoKey, Key: wizard.StepReview},
			ok:   true,
		},
		{
			name: "update member",
			raw:  `{"type":"UpdateMember","member_id":"m1","field":"role","value":"coach"}`,
			want: wizard.Command{Type: wizard.CmdUpdateMember, MemberID: "m1", Field: "role", Value: "coach"},
			ok:   true,
		},
		{
			name: "unknown type",
			raw:  `{"type":"LockPick"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m ClientMessage
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &m))
			cmd, ok := m.Command()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, cmd)
		})
	}
}

func TestEveryClientTypeIsAWizardCommand(t *testing.T) {
	s, err := wizard.NewSession(wizard.Config{Mode: wizard.ModeGuestTeam})
	require.NoError(t, err)

	for _, typ := range []string{"Next", "Prev", "Sync", "Submit", "AddMember"} {
		cmd, ok := ClientMessage{Type: typ}.Command()
		require.True(t, ok, typ)
		_, err := wizard.Apply(s, cmd)
		assert.NoError(t, err, typ)
	}
}

func TestErrorMessage(t *testing.T) {
	raw, err := json.Marshal(ErrorMessage("locked", "registration is already submitted"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Error","error":{"code":"locked","message":"registration is already submitted"}}`, string(raw))
}
