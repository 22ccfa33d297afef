// Package extract pulls booking fields out of free-text messages.
package extract

import (
	"context"

	"github.com/tbxark/hotelagent/patch"
	"github.com/tbxark/hotelagent/types"
)

// Extractor returns only the fields mentioned in message. It must not invent
// values.
type Extractor interface {
	Extract(ctx context.Context, message string) (*types.BookingInfo, error)
}

// ChangeExtractor returns RFC 6902 operations for only the fields the user
// asks to change or withdraw, given the booking as it currently stands.
type ChangeExtractor interface {
	ExtractChanges(ctx context.Context, message string, current types.BookingInfo) ([]patch.Operation, error)
}
