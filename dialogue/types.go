package dialogue

import (
	"context"

	"github.com/tbxark/hotelagent/types"
)

type Kind string

const (
	// KindResponse answers the user during collection or off-topic turns.
	KindResponse Kind = "response"
	// KindSummary summarizes the booking after a check or change.
	KindSummary Kind = "summary"
	// KindCorrection asks the user to fix invalid fields.
	KindCorrection Kind = "correction"
)

// Request carries the curated subset of the session a generator may see.
type Request struct {
	Kind    Kind
	Intent  types.Intent
	Booking types.BookingInfo
	Missing []types.Slot
	Errors  []string
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}
