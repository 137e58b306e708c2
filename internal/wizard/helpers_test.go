package wizard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// seqIDs returns a deterministic member id generator: m1, m2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}
}

func soloConfig() Config {
	return Config{
		Tournament:  "Dhaka Valorant Cup",
		Mode:        ModeSolo,
		GameIDLabel: "Riot ID",
	}
}

func guestConfig() Config {
	return Config{
		Tournament: "DeltaCrown PUBG Open",
		Mode:       ModeGuestTeam,
		Roster:     RosterConfig{MinTeamSize: 5, MaxRosterSize: 7},
	}
}

func teamConfig() Config {
	members := make([]TeamMember, 0, 6)
	for i := 1; i <= 6; i++ {
		members = append(members, TeamMember{
			ID:          fmt.Sprintf("p%d", i),
			DisplayName: fmt.Sprintf("Player %d", i),
			GameID:      fmt.Sprintf("GID%d", i),
		})
	}
	return Config{
		Tournament:  "DeltaCrown League",
		Mode:        ModeTeam,
		Roster:      RosterConfig{MinTeamSize: 5, MaxRosterSize: 8, AllowCoaches: true},
		TeamMembers: members,
	}
}

func newSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithIDGenerator(seqIDs())}, opts...)
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

// addValidMembers adds n guest members with both identity fields filled.
func addValidMembers(t *testing.T, s *Session, n int) []RosterMember {
	t.Helper()
	out := make([]RosterMember, 0, n)
	for i := 0; i < n; i++ {
		m, err := s.AddMember()
		require.NoError(t, err)
		require.NoError(t, s.UpdateMember(m.ID, MemberGameID, "gid-"+m.ID))
		require.NoError(t, s.UpdateMember(m.ID, MemberDisplayName, "name-"+m.ID))
		out = append(out, m)
	}
	return out
}
