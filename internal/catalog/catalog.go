// Package catalog looks up the registration setup a tournament publishes:
// which modes it accepts and the wizard configuration for each.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rkRashik/deltacrown-registration/internal/wizard"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrModeNotOffered     = errors.New("registration mode not offered")
)

type Catalog interface {
	Lookup(ctx context.Context, slug string) (Tournament, error)
}

// Tournament is one registration setup. Base holds everything except Mode
// and TeamMembers, which are filled per registration.
type Tournament struct {
	Slug  string        `json:"slug"`
	Name  string        `json:"name"`
	Modes []wizard.Mode `json:"modes"`
	Base  wizard.Config `json:"config"`
}

// ConfigFor returns the wizard configuration for registering in mode.
func (t Tournament) ConfigFor(mode string) (wizard.Config, error) {
	m, err := wizard.ParseMode(mode)
	if err != nil {
		return wizard.Config{}, err
	}
	if !slices.Contains(t.Modes, m) {
		return wizard.Config{}, fmt.Errorf("%w: %s does not accept %s registrations", ErrModeNotOffered, t.Slug, m)
	}
	cfg := t.Base
	cfg.Tournament = t.Name
	cfg.Mode = m
	cfg.TeamMembers = nil
	return cfg, nil
}
