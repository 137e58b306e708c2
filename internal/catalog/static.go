package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"gopkg.in/yaml.v3"
)

// StaticCatalog serves tournaments from memory. It is read-only after
// construction and safe for concurrent use.
type StaticCatalog struct {
	tournaments map[string]Tournament
}

func NewStaticCatalog(ts ...Tournament) *StaticCatalog {
	c := &StaticCatalog{tournaments: make(map[string]Tournament, len(ts))}
	for _, t := range ts {
		c.tournaments[t.Slug] = t
	}
	return c
}

func (c *StaticCatalog) Lookup(_ context.Context, slug string) (Tournament, error) {
	t, ok := c.tournaments[slug]
	if !ok {
		return Tournament{}, fmt.Errorf("%w: %s", ErrTournamentNotFound, slug)
	}
	return t, nil
}

type tournamentEntry struct {
	Slug              string               `yaml:"slug"`
	Name              string               `yaml:"name"`
	Modes             []wizard.Mode        `yaml:"modes"`
	Roster            wizard.RosterConfig  `yaml:"roster"`
	RosterRoles       []wizard.RosterRole  `yaml:"roster_roles"`
	EntryFee          bool                 `yaml:"entry_fee"`
	RequireProof      bool                 `yaml:"require_proof"`
	GameIDLabel       string               `yaml:"game_id_label"`
	GameIDPlaceholder string               `yaml:"game_id_placeholder"`
	CustomFields      []wizard.CustomField `yaml:"custom_fields"`
	RequiredFields    map[string][]string  `yaml:"required_fields"`
}

func (e tournamentEntry) tournament() Tournament {
	var required map[wizard.StepKey][]string
	if len(e.RequiredFields) > 0 {
		required = make(map[wizard.StepKey][]string, len(e.RequiredFields))
		for k, v := range e.RequiredFields {
			required[wizard.StepKey(k)] = v
		}
	}
	return Tournament{
		Slug:  e.Slug,
		Name:  e.Name,
		Modes: e.Modes,
		Base: wizard.Config{
			Roster:            e.Roster,
			RosterRoles:       e.RosterRoles,
			HasEntryFee:       e.EntryFee,
			RequireProof:      e.RequireProof,
			GameIDLabel:       e.GameIDLabel,
			GameIDPlaceholder: e.GameIDPlaceholder,
			CustomFields:      e.CustomFields,
			RequiredFields:    required,
		},
	}
}

// LoadStaticFile reads a YAML list of tournaments:
//
//	tournaments:
//	  - slug: valorant-cup
//	    name: Dhaka Valorant Cup
//	    modes: [solo, guest_team]
//	    roster: {min_team_size: 5, max_roster_size: 7}
func LoadStaticFile(path string) (*StaticCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Tournaments []tournamentEntry `yaml:"tournaments"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	ts := make([]Tournament, 0, len(doc.Tournaments))
	for i, e := range doc.Tournaments {
		if e.Slug == "" {
			return nil, fmt.Errorf("catalog %s: tournament %d has no slug", path, i)
		}
		for _, m := range e.Modes {
			if _, err := wizard.ParseMode(string(m)); err != nil {
				return nil, fmt.Errorf("catalog %s: %s: %w", path, e.Slug, err)
			}
		}
		ts = append(ts, e.tournament())
	}
	return NewStaticCatalog(ts...), nil
}

// Demo is the catalog served when nothing else is configured.
func Demo() *StaticCatalog {
	return NewStaticCatalog(
		Tournament{
			Slug:  "valorant-cup",
			Name:  "DeltaCrown Valorant Cup",
			Modes: []wizard.Mode{wizard.ModeTeam, wizard.ModeSolo, wizard.ModeGuestTeam},
			Base: wizard.Config{
				Roster:      wizard.RosterConfig{MinTeamSize: 5, MaxRosterSize: 7, AllowCoaches: true},
				RosterRoles: []wizard.RosterRole{{Code: "duelist", Name: "Duelist"}, {Code: "controller", Name: "Controller"}, {Code: "initiator", Name: "Initiator"}, {Code: "sentinel", Name: "Sentinel"}},
				HasEntryFee: true,
				GameIDLabel: "Riot ID",
				CustomFields: []wizard.CustomField{
					{Name: "discord", Label: "Discord username", Required: true},
				},
				RequiredFields: map[wizard.StepKey][]string{
					wizard.StepCoordinator: {wizard.FieldCoordinatorPhone},
				},
			},
		},
		Tournament{
			Slug:  "efootball-open",
			Name:  "eFootball Open",
			Modes: []wizard.Mode{wizard.ModeSolo},
			Base: wizard.Config{
				GameIDLabel:       "Konami ID",
				GameIDPlaceholder: "123-456-789",
			},
		},
	)
}
