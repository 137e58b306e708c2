package types

import (
	"slices"

	"github.com/rkRashik/deltacrown-registration/internal/registration"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	wire "github.com/rkRashik/deltacrown-registration/pkg/types"
)

type ClientMessage struct {
	Type     string `json:"type"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	Index    int    `json:"index,omitempty"`
	Key      string `json:"key,omitempty"`
	MemberID string `json:"member_id,omitempty"`
}

type ServerMessage struct {
	Type    string             `json:"type"` // "Snapshot" | "Error"
	Version int                `json:"version,omitempty"`
	Events  []wizard.Event     `json:"events,omitempty"`
	View    *registration.View `json:"view,omitempty"`
	Error   *ErrorBody         `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func SnapshotMessage(snap registration.Snapshot) ServerMessage {
	return ServerMessage{Type: wire.MsgSnapshot, Version: snap.Version, Events: snap.Events, View: &snap.View}
}

func ErrorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: wire.MsgError, Error: &ErrorBody{Code: code, Message: message}}
}

// Command maps a client message onto a wizard command. Unknown types are
// refused; field-level checks are left to the wizard.
func (m ClientMessage) Command() (wizard.Command, bool) {
	if !slices.Contains(wire.ClientMessageTypes, m.Type) {
		return wizard.Command{}, false
	}
	return wizard.Command{
		Type:     wizard.CommandType(m.Type),
		Field:    m.Field,
		Value:    m.Value,
		Index:    m.Index,
		Key:      wizard.StepKey(m.Key),
		MemberID: m.MemberID,
	}, true
}
