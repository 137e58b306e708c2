// Package wizard is the registration wizard engine: the ordered step flow for a
// registration mode, one validation rule per step, the controller that owns the
// current step and the validity vector, the guest roster, the review projection
// and the submission gate.
//
// A Session is single-owner state. Callers that share one across goroutines
// must serialize access themselves; internal/registration does this with an
// actor loop.
package wizard
