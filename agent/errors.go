package agent

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUserMessage = errors.New("user_message is required")
	ErrEmptyResponse    = errors.New("generator returned an empty response")
	ErrSessionNotFound  = errors.New("session not found")
)

// NodeError reports a capability failure inside a graph node.
type NodeError struct {
	Node Node
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s failed: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
