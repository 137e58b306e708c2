package wizard

import (
	"maps"
	"strings"
)

// FormState is the field store the engine reads and the session writes.
// Adapters over a real UI implement it; MapState is the in-memory one.
type FormState interface {
	Get(field string) string
	Set(field, value string)
	// Values returns a copy of every field.
	Values() map[string]string
}

type MapState struct {
	values map[string]string
}

func NewMapState(initial map[string]string) *MapState {
	m := &MapState{values: make(map[string]string, len(initial))}
	maps.Copy(m.values, initial)
	return m
}

func (m *MapState) Get(field string) string { return m.values[field] }

func (m *MapState) Set(field, value string) {
	if value == "" {
		delete(m.values, field)
		return
	}
	m.values[field] = value
}

func (m *MapState) Values() map[string]string { return maps.Clone(m.values) }

// IsChecked reports whether a checkbox-style value is set.
func IsChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func filled(form FormState, field string) bool {
	return strings.TrimSpace(form.Get(field)) != ""
}
