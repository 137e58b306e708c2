package wizard

import (
	"math"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// ReviewProjection is the read-only summary shown on the review step. It is a
// pure function of the form, the roster and the validity vector.
type ReviewProjection struct {
	Tournament    string          `json:"tournament"`
	Mode          Mode            `json:"mode"`
	Team          *TeamSummary    `json:"team,omitempty"`
	Player        *PlayerSummary  `json:"player,omitempty"`
	Roster        []RosterLine    `json:"roster,omitempty"`
	Counts        RosterCounts    `json:"counts"`
	Coordinator   string          `json:"coordinator,omitempty"`
	Extras        []FieldAnswer   `json:"extras,omitempty"`
	Payment       *PaymentSummary `json:"payment,omitempty"`
	Steps         []StepStatus    `json:"steps"`
	Progress      Progress        `json:"progress"`
	TermsAccepted bool            `json:"terms_accepted"`
	Ready         bool            `json:"ready"`
}

type TeamSummary struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Tag  string `json:"tag,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type PlayerSummary struct {
	GameIDLabel string `json:"game_id_label"`
	GameID      string `json:"game_id"`
	DisplayName string `json:"display_name,omitempty"`
}

type RosterLine struct {
	Index       int    `json:"index"`
	Role        Role   `json:"role"`
	GameID      string `json:"game_id"`
	DisplayName string `json:"display_name"`
	GameRole    string `json:"game_role,omitempty"`
}

type FieldAnswer struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type PaymentSummary struct {
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
}

type StepStatus struct {
	Key   StepKey `json:"key"`
	Label string  `json:"label"`
	Icon  string  `json:"icon,omitempty"`
	Valid bool    `json:"valid"`
}

type Progress struct {
	Valid   int     `json:"valid"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

func progressOf(validity []bool) Progress {
	p := Progress{Total: len(validity)}
	for _, ok := range validity {
		if ok {
			p.Valid++
		}
	}
	if p.Total > 0 {
		p.Percent = math.Round(float64(p.Valid)/float64(p.Total)*1000) / 10
	}
	return p
}

// Project builds the review summary.
func Project(steps []StepDescriptor, validity []bool, form FormState, roster *Roster, cfg Config) ReviewProjection {
	p := ReviewProjection{
		Tournament:    cfg.Tournament,
		Mode:          cfg.Mode,
		Steps:         stepStatuses(steps, validity),
		Progress:      progressOf(validity),
		TermsAccepted: IsChecked(form.Get(FieldAcceptTerms)),
	}
	p.Ready = p.Progress.Total > 0 && p.Progress.Valid == p.Progress.Total

	switch cfg.Mode {
	case ModeSolo:
		label := cfg.GameIDLabel
		if label == "" {
			label = "Game ID"
		}
		p.Player = &PlayerSummary{
			GameIDLabel: label,
			GameID:      clean(form.Get(FieldGameID)),
			DisplayName: clean(form.Get(FieldDisplayName)),
		}
	case ModeTeam:
		p.Team = &TeamSummary{ID: clean(form.Get(FieldTeamID))}
	case ModeGuestTeam:
		name := clean(form.Get(FieldTeamName))
		p.Team = &TeamSummary{
			Name: name,
			Tag:  strings.ToUpper(clean(form.Get(FieldTeamTag))),
			Slug: slug.Make(name),
		}
	}

	if roster != nil && roster.Len() > 0 {
		roleNames := make(map[string]string, len(cfg.RosterRoles))
		for _, rr := range cfg.RosterRoles {
			roleNames[rr.Code] = rr.Name
		}
		for _, m := range roster.Members() {
			gameRole := m.GameRole
			if name, ok := roleNames[gameRole]; ok {
				gameRole = name
			}
			p.Roster = append(p.Roster, RosterLine{
				Index:       m.Index,
				Role:        m.Role,
				GameID:      clean(m.GameID),
				DisplayName: clean(m.DisplayName),
				GameRole:    gameRole,
			})
		}
		p.Counts = roster.Counts()
	}

	if hasStep(steps, StepCoordinator) {
		p.Coordinator = coordinatorName(form, roster)
	}

	for _, cf := range cfg.CustomFields {
		v := clean(form.Get(CustomFieldName(cf.Name)))
		if v == "" {
			continue
		}
		label := cf.Label
		if label == "" {
			label = cf.Name
		}
		p.Extras = append(p.Extras, FieldAnswer{Label: label, Value: v})
	}

	if cfg.HasEntryFee {
		if method := clean(form.Get(FieldPaymentMethod)); method != "" {
			p.Payment = &PaymentSummary{
				Method:        method,
				TransactionID: clean(form.Get(FieldTransactionID)),
				Mobile:        maskMobile(clean(form.Get(FieldPaymentMobile))),
			}
		}
	}
	return p
}

func stepStatuses(steps []StepDescriptor, validity []bool) []StepStatus {
	out := make([]StepStatus, len(steps))
	for i, st := range steps {
		out[i] = StepStatus{Key: st.Key, Label: st.Label, Icon: st.Icon, Valid: i < len(validity) && validity[i]}
	}
	return out
}

func coordinatorName(form FormState, roster *Roster) string {
	switch form.Get(FieldCoordinatorMode) {
	case CoordinatorSelf:
		return "You"
	case CoordinatorDelegate:
		if roster == nil {
			return ""
		}
		if m, ok := roster.Member(form.Get(FieldCoordinatorMember)); ok {
			return clean(m.DisplayName)
		}
	}
	return ""
}

func hasStep(steps []StepDescriptor, key StepKey) bool {
	for _, st := range steps {
		if st.Key == key {
			return true
		}
	}
	return false
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// maskMobile keeps the last three digits.
func maskMobile(s string) string {
	if len(s) <= 3 {
		return s
	}
	return strings.Repeat("*", len(s)-3) + s[len(s)-3:]
}
