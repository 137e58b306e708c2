package types

// Client -> Server (websocket text frames, or the body of
// POST /registrations/{code}/commands)
//
// SetField:
//   field: string        // e.g. "game_id", "payment_transaction_id", "custom_discord"
//   value: string        // "" clears the field; checkboxes use "on"
//
// Next / Prev / Sync / Submit / AddMember: {}
//
// GotoIndex:
//   index: number
//
// GotoKey:
//   key: "team" | "guest_team" | "profile" | "roster" | "coordinator" |
//        "extras" | "payment" | "review"
//
// RemoveMember:
//   member_id: string
//
// UpdateMember:
//   member_id: string
//   field: "role" | "game_id" | "display_name" | "game_role"
//   value: string

const (
	MsgSetField     = "SetField"
	MsgNext         = "Next"
	MsgPrev         = "Prev"
	MsgGotoIndex    = "GotoIndex"
	MsgGotoKey      = "GotoKey"
	MsgAddMember    = "AddMember"
	MsgRemoveMember = "RemoveMember"
	MsgUpdateMember = "UpdateMember"
	MsgSync         = "Sync"
	MsgSubmit       = "Submit"
)

// ClientMessageTypes lists every type a client may send.
var ClientMessageTypes = []string{
	MsgSetField, MsgNext, MsgPrev, MsgGotoIndex, MsgGotoKey,
	MsgAddMember, MsgRemoveMember, MsgUpdateMember, MsgSync, MsgSubmit,
}
