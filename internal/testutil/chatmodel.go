// Package testutil provides fakes shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var _ model.ToolCallingChatModel = (*ChatModel)(nil)

// ChatModel replays canned replies and records every request.
type ChatModel struct {
	mu      sync.Mutex
	replies []*schema.Message
	err     error
	calls   [][]*schema.Message
	options []*model.Options
	tools   []*schema.ToolInfo
}

func NewChatModel(replies ...*schema.Message) *ChatModel {
	return &ChatModel{replies: replies}
}

// NewFailingChatModel returns a model whose every call fails with err.
func NewFailingChatModel(err error) *ChatModel {
	return &ChatModel{err: err}
}

// ToolCallReply builds an assistant message carrying a single tool call.
func ToolCallReply(name, arguments string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: schema.FunctionCall{
				Name:      name,
				Arguments: arguments,
			},
		}},
	}
}

func TextReply(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, input)
	m.options = append(m.options, model.GetCommonOptions(nil, opts...))
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return TextReply(""), nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = tools
	return m, nil
}

// Calls returns the prompts received so far.
func (m *ChatModel) Calls() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*schema.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastPrompt joins the contents of the most recent request.
func (m *ChatModel) LastPrompt() string {
	calls := m.Calls()
	if len(calls) == 0 {
		return ""
	}
	var out string
	for _, msg := range calls[len(calls)-1] {
		out += msg.Content + "\n"
	}
	return out
}

func (m *ChatModel) Options() []*model.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Options, len(m.options))
	copy(out, m.options)
	return out
}
