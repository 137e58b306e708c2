package wizard

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// RosterMember is one lineup entry. ID is stable for the member's lifetime and
// is what field updates bind to; Index is display order only.
type RosterMember struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Role        Role   `json:"role"`
	GameID      string `json:"game_id"`
	DisplayName string `json:"display_name"`
	GameRole    string `json:"game_role,omitempty"`
}

// Member field names accepted by Roster.Update.
const (
	MemberRole        = "role"
	MemberGameID      = "game_id"
	MemberDisplayName = "display_name"
	MemberGameRole    = "game_role"
)

type RosterCounts struct {
	Starters    int `json:"starters"`
	Substitutes int `json:"substitutes"`
	Coaches     int `json:"coaches"`
	Total       int `json:"total"`
}

type Roster struct {
	cfg     RosterConfig
	members []RosterMember
	newID   func() string
}

func NewRoster(cfg RosterConfig, newID func() string) *Roster {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Roster{cfg: cfg, newID: newID}
}

// Add appends a starter. At capacity it returns ErrRosterFull and leaves the
// roster untouched.
func (r *Roster) Add() (RosterMember, error) {
	if r.cfg.MaxRosterSize > 0 && len(r.members) >= r.cfg.MaxRosterSize {
		return RosterMember{}, ErrRosterFull
	}
	m := RosterMember{ID: r.newID(), Index: len(r.members), Role: RoleStarter}
	r.members = append(r.members, m)
	return m, nil
}

// seed binds existing team members as substitutes, ignoring capacity.
func (r *Roster) seed(team []TeamMember) {
	for _, tm := range team {
		id := tm.ID
		if id == "" {
			id = r.newID()
		}
		r.members = append(r.members, RosterMember{
			ID:          id,
			Index:       len(r.members),
			Role:        RoleSubstitute,
			GameID:      tm.GameID,
			DisplayName: tm.DisplayName,
		})
	}
}

// Remove deletes the member with id and renumbers the rest in the same step.
func (r *Roster) Remove(id string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.members = slices.Delete(r.members, i, i+1)
	r.renumber()
	return true
}

func (r *Roster) RemoveAt(index int) bool {
	if index < 0 || index >= len(r.members) {
		return false
	}
	return r.Remove(r.members[index].ID)
}

// Update sets one field of a member. Nothing changes when it fails.
func (r *Roster) Update(id, field, value string) error {
	i := r.indexOf(id)
	if i < 0 {
		return ErrUnknownMember
	}
	m := &r.members[i]
	switch field {
	case MemberRole:
		role, ok := parseRole(value)
		if !ok {
			return ErrInvalidRole
		}
		if role == RoleCoach && !r.cfg.AllowCoaches {
			return ErrCoachesNotAllowed
		}
		m.Role = role
	case MemberGameID:
		m.GameID = value
	case MemberDisplayName:
		m.DisplayName = value
	case MemberGameRole:
		m.GameRole = value
	default:
		return ErrUnknownRosterField
	}
	return nil
}

func (r *Roster) Member(id string) (RosterMember, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return RosterMember{}, false
	}
	return r.members[i], true
}

// Members returns a copy in display order.
func (r *Roster) Members() []RosterMember { return slices.Clone(r.members) }

func (r *Roster) Len() int { return len(r.members) }

func (r *Roster) Full() bool {
	return r.cfg.MaxRosterSize > 0 && len(r.members) >= r.cfg.MaxRosterSize
}

// Counts tallies members by role.
func (r *Roster) Counts() RosterCounts {
	c := RosterCounts{Total: len(r.members)}
	for _, m := range r.members {
		switch m.Role {
		case RoleStarter:
			c.Starters++
		case RoleSubstitute:
			c.Substitutes++
		case RoleCoach:
			c.Coaches++
		}
	}
	return c
}

// firstIncomplete returns the first member missing a required identity field
// and the name of that field.
func (r *Roster) firstIncomplete() (RosterMember, string, bool) {
	for _, m := range r.members {
		if strings.TrimSpace(m.GameID) == "" {
			return m, MemberGameID, true
		}
		if strings.TrimSpace(m.DisplayName) == "" {
			return m, MemberDisplayName, true
		}
	}
	return RosterMember{}, "", false
}

func (r *Roster) indexOf(id string) int {
	return slices.IndexFunc(r.members, func(m RosterMember) bool { return m.ID == id })
}

func (r *Roster) renumber() {
	for i := range r.members {
		r.members[i].Index = i
	}
}

// MemberFieldName is the form binding for a member field; it is keyed by the
// member's stable id, never by position.
func MemberFieldName(id, field string) string {
	return "member_" + field + "_" + id
}
