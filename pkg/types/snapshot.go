package types

// Server -> Client
//
// Snapshot (on join and after every applied command or hand-off result):
//   version: number
//   events: Event[]      // what the command changed; empty on join
//   view: {
//     code, tournament, version, num_clients,
//     status: "draft" | "pending" | "submitted" | "failed",
//     submit_error?: string,
//     wizard: {
//       current, current_key, steps: [{key,label,icon,valid}],
//       progress: {valid,total,percent}, form: {field: value},
//       roster: [{id,index,role,game_id,display_name,game_role}],
//       counts, roster_full, review?, focus?
//     }
//   }
//
// Error (only to the client whose command failed):
//   code: string
//   message: string

const (
	MsgSnapshot = "Snapshot"
	MsgError    = "Error"
)

// Error codes shared by the websocket and the HTTP API.
const (
	CodeBadRequest     = "bad_request"
	CodeUnknownType    = "unknown_type"
	CodeRejected       = "rejected"
	CodeLocked         = "locked"
	CodeNotFound       = "not_found"
	CodeModeNotOffered = "mode_not_offered"
	CodeInvalidConfig  = "invalid_config"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal"
)
