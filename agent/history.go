package agent

import (
	"context"
	"slices"

	"github.com/cloudwego/eino/schema"
)

type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps system messages and the last N others.
// When N <= 0, only system messages survive.
type KeepSystemLastNTrimmer struct {
	N int
}

func (t KeepSystemLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	others := 0
	for _, m := range history {
		if m.Role != schema.System {
			others++
		}
	}
	drop := others - max(t.N, 0)
	if drop <= 0 {
		return history
	}
	out := make([]*schema.Message, 0, len(history)-drop)
	for _, m := range history {
		if m.Role != schema.System && drop > 0 {
			drop--
			continue
		}
		out = append(out, m)
	}
	return out
}

// HistoryReadWriter keeps the chat transcript of the context's session.
type HistoryReadWriter interface {
	Load(ctx context.Context) ([]*schema.Message, error)
	Save(ctx context.Context, history []*schema.Message) error
	Clear(ctx context.Context) error

	// Append adds msgs, skipping an exact repeat of the last message, and
	// returns the saved history to pass as adk.AgentInput.
	Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error)
}

type HistoryStore struct {
	store   Store[[]*schema.Message]
	trimmer Trimmer
}

func NewHistoryStore(core Cache[[]*schema.Message], trimmer Trimmer) *HistoryStore {
	return &HistoryStore{
		store:   NewStore(core, "agent:history", sessionKeyOrDefault),
		trimmer: trimmer,
	}
}

func NewMemoryHistoryStore(trimmer Trimmer) *HistoryStore {
	return NewHistoryStore(NewMemoryCache(slices.Clone[[]*schema.Message]), trimmer)
}

func (s *HistoryStore) Load(ctx context.Context) ([]*schema.Message, error) {
	hist, _, err := s.store.Get(ctx)
	return hist, err
}

func (s *HistoryStore) Save(ctx context.Context, history []*schema.Message) error {
	_, err := s.save(ctx, history)
	return err
}

func (s *HistoryStore) save(ctx context.Context, history []*schema.Message) ([]*schema.Message, error) {
	history = slices.DeleteFunc(slices.Clone(history), func(m *schema.Message) bool { return m == nil })
	if s.trimmer != nil {
		history = s.trimmer.Trim(history)
	}
	return history, s.store.Set(ctx, history)
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}

func (s *HistoryStore) Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error) {
	hist, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if n := len(hist); n > 0 && hist[n-1].Role == msg.Role && hist[n-1].Content == msg.Content {
			continue
		}
		hist = append(hist, msg)
	}
	return s.save(ctx, hist)
}

var _ HistoryReadWriter = (*HistoryStore)(nil)
