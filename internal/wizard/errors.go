package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig      = errors.New("invalid wizard configuration")
	ErrUnknownMode        = errors.New("unknown registration mode")
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrRosterFull         = errors.New("roster is full")
	ErrUnknownMember      = errors.New("unknown roster member")
	ErrUnknownRosterField = errors.New("unknown roster field")
	ErrInvalidRole        = errors.New("invalid roster role")
	ErrCoachesNotAllowed  = errors.New("coaches are not allowed")
	// ErrRosterLocked: members are added or removed only in guest-team mode;
	// otherwise the lineup comes from the existing team.
	ErrRosterLocked = errors.New("roster is fixed for this mode")
)

// ConfigError reports a malformed flow or roster configuration. It is fatal
// at construction time.
type ConfigError struct {
	Kind error
	Msg  string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Kind }

func configf(format string, args ...any) error {
	return &ConfigError{Kind: ErrInvalidConfig, Msg: fmt.Sprintf(format, args...)}
}
