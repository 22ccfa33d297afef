package intent

import (
	"context"

	"github.com/tbxark/hotelagent/types"
)

// Request pairs the assistant's last message with the user's reply.
type Request struct {
	AssistantQuestion string
	Answer            string
}

type Classifier interface {
	Classify(ctx context.Context, req *Request) (types.Intent, error)
}
