package wizard

import "fmt"

type Mode string

const (
	ModeTeam      Mode = "team"
	ModeSolo      Mode = "solo"
	ModeGuestTeam Mode = "guest_team"
)

// ParseMode maps the wire spelling of a mode onto Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTeam, ModeSolo, ModeGuestTeam:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

type StepKey string

const (
	StepTeam        StepKey = "team"
	StepGuestTeam   StepKey = "guest_team"
	StepProfile     StepKey = "profile"
	StepRoster      StepKey = "roster"
	StepCoordinator StepKey = "coordinator"
	StepExtras      StepKey = "extras"
	StepPayment     StepKey = "payment"
	StepReview      StepKey = "review"
)

// StepDescriptor is one position in a flow. Fields lists the form fields the
// step owns; an entry ending in "*" matches every field with that prefix.
type StepDescriptor struct {
	Key      StepKey  `yaml:"key" json:"key"`
	Label    string   `yaml:"label" json:"label"`
	Subtitle string   `yaml:"subtitle" json:"subtitle,omitempty"`
	Icon     string   `yaml:"icon" json:"icon,omitempty"`
	Order    int      `yaml:"-" json:"order"`
	Fields   []string `yaml:"fields" json:"fields,omitempty"`
}

func (d StepDescriptor) owns(field string) bool {
	for _, f := range d.Fields {
		if n := len(f); n > 0 && f[n-1] == '*' {
			if len(field) >= n-1 && field[:n-1] == f[:n-1] {
				return true
			}
			continue
		}
		if f == field {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleStarter    Role = "starter"
	RoleSubstitute Role = "substitute"
	RoleCoach      Role = "coach"
)

func parseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStarter, RoleSubstitute, RoleCoach:
		return Role(s), true
	}
	return "", false
}

// RosterRole is an in-game role a member can declare (e.g. "jungle").
type RosterRole struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type RosterConfig struct {
	MinTeamSize   int  `json:"min_team_size" yaml:"min_team_size"`
	MaxRosterSize int  `json:"max_roster_size" yaml:"max_roster_size"`
	AllowCoaches  bool `json:"allow_coaches" yaml:"allow_coaches"`
}

// CustomField is an organizer-defined question shown on the extras step.
// Its form field name is CustomFieldName(Name).
type CustomField struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label" yaml:"label"`
	Required bool   `json:"required" yaml:"required"`
}

// TeamMember is an existing member of a registered team, used to seed the
// roster in team mode.
type TeamMember struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	GameID      string `json:"game_id"`
}

// Config is everything the page/backend hands the wizard at load time.
type Config struct {
	Tournament        string               `json:"tournament"`
	Mode              Mode                 `json:"mode"`
	Roster            RosterConfig         `json:"roster"`
	RosterRoles       []RosterRole         `json:"roster_roles,omitempty"`
	HasEntryFee       bool                 `json:"has_entry_fee"`
	RequireProof      bool                 `json:"require_proof"`
	GameIDLabel       string               `json:"game_id_label,omitempty"`
	GameIDPlaceholder string               `json:"game_id_placeholder,omitempty"`
	CustomFields      []CustomField        `json:"custom_fields,omitempty"`
	RequiredFields    map[StepKey][]string `json:"required_fields,omitempty"`
	TeamMembers       []TeamMember         `json:"team_members,omitempty"`
}

// Form field names shared by rules, the review projection and clients.
const (
	FieldTeamID            = "team_id"
	FieldTeamName          = "team_name"
	FieldTeamTag           = "team_tag"
	FieldGameID            = "game_id"
	FieldDisplayName       = "display_name"
	FieldCoordinatorMode   = "coordinator_mode"
	FieldCoordinatorMember = "coordinator_member"
	FieldCoordinatorPhone  = "coordinator_phone"
	FieldPaymentMethod     = "payment_method"
	FieldTransactionID     = "payment_transaction_id"
	FieldPaymentMobile     = "payment_mobile"
	FieldPaymentProof      = "payment_proof"
	FieldAcceptTerms       = "accept_terms"

	customFieldPrefix = "custom_"
)

const (
	CoordinatorSelf     = "self"
	CoordinatorDelegate = "delegate"
)

func CustomFieldName(name string) string { return customFieldPrefix + name }
