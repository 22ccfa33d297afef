package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/hotelagent/types"
)

func TestSessionStoreNotFound(t *testing.T) {
	store := NewMemorySessionStore()
	_, err := store.Load(WithSessionKey(context.Background(), "missing"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreDoesNotAlias(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := WithSessionKey(context.Background(), "s1")
	s := types.NewSession("hi")
	require.NoError(t, store.Save(ctx, s))
	s.NotFilledKeys[0] = "mutated"

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.AllSlots(), loaded.NotFilledKeys)

	ok, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Delete(ctx))
	ok, err = store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionKeyFromContext(t *testing.T) {
	_, ok := SessionKeyFromContext(context.Background())
	assert.False(t, ok)
	key, ok := SessionKeyFromContext(WithSessionKey(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", key)
}

func TestSessionManagerTurnPersists(t *testing.T) {
	f := newFixture(t, types.IntentMakeReservation, &types.BookingInfo{NumGuests: ptr(2)})
	store := NewMemorySessionStore()
	m := NewSessionManager(f.engine, store)
	ctx := WithSessionKey(context.Background(), "s1")

	turn, err := m.Turn(ctx, "2 guests")
	require.NoError(t, err)
	assert.Equal(t, "response", turn.Session.Response)

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.NumGuests.OrElse(0))
	assert.Equal(t, "2 guests", loaded.UserMessage)

	_, err = m.Load(WithSessionKey(context.Background(), "other"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, m.Reset(ctx))
	_, err = m.Load(ctx)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManagerFailedTurnKeepsStoredSession(t *testing.T) {
	f := newFixture(t, types.IntentOther, nil)
	m := NewSessionManager(f.engine, NewMemorySessionStore())
	ctx := WithSessionKey(context.Background(), "s1")

	_, err := m.Turn(ctx, "hello")
	require.NoError(t, err)

	f.responder.reply = ""
	_, err = m.Turn(ctx, "hello again")
	require.ErrorIs(t, err, ErrEmptyResponse)

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.UserMessage)
	assert.Equal(t, "response", loaded.Response)
}

func TestSessionManagerCreate(t *testing.T) {
	f := newFixture(t, types.IntentOther, nil)
	m := NewSessionManager(f.engine, NewMemorySessionStore())
	ctx := WithSessionKey(context.Background(), "fresh")
	s, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.AllSlots(), s.NotFilledKeys)

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.NotFilledKeys, loaded.NotFilledKeys)
}

func TestSessionManagerContinueRequiresSession(t *testing.T) {
	f := newFixture(t, types.IntentOther, nil)
	m := NewSessionManager(f.engine, NewMemorySessionStore())
	ctx := WithSessionKey(context.Background(), "missing")

	_, err := m.Continue(ctx, "hello")
	require.ErrorIs(t, err, ErrSessionNotFound)
	exists, err := m.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.classifier.reqs)
}

func TestSessionManagerContinueSeesDeleteUnderLock(t *testing.T) {
	f := newFixture(t, types.IntentOther, nil)
	store := NewMemorySessionStore()
	m := NewSessionManager(f.engine, store)
	ctx := WithSessionKey(context.Background(), "s1")
	_, err := m.Create(ctx)
	require.NoError(t, err)

	result := make(chan error, 1)
	err = m.WithLock(ctx, func(ctx context.Context) error {
		go func() {
			_, err := m.Continue(ctx, "hello")
			result <- err
		}()
		assert.Eventually(t, func() bool {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.locks["s1"] != nil && m.locks["s1"].refs == 2
		}, time.Second, time.Millisecond)
		return store.Delete(ctx)
	})
	require.NoError(t, err)

	require.ErrorIs(t, <-result, ErrSessionNotFound)
	exists, err := m.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSessionManagerWithLockReleasesEntries(t *testing.T) {
	f := newFixture(t, types.IntentOther, nil)
	m := NewSessionManager(f.engine, NewMemorySessionStore())
	ctx := WithSessionKey(context.Background(), "s1")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(ctx, func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > 1 {
					overlap = true
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
	m.mu.Lock()
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}

func TestHistoryStoreTrimsAndDeduplicates(t *testing.T) {
	h := NewMemoryHistoryStore(KeepSystemLastNTrimmer{N: 2})
	ctx := WithSessionKey(context.Background(), "s1")

	hist, err := h.Append(ctx,
		schema.SystemMessage("sys"),
		schema.UserMessage("one"),
		schema.UserMessage("one"),
		schema.AssistantMessage("two", nil),
		schema.UserMessage("three"),
	)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, "sys", hist[0].Content)
	assert.Equal(t, "two", hist[1].Content)
	assert.Equal(t, "three", hist[2].Content)

	loaded, err := h.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 3)

	require.NoError(t, h.Clear(ctx))
	loaded, err = h.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestKeepSystemLastNTrimmerZero(t *testing.T) {
	out := KeepSystemLastNTrimmer{}.Trim([]*schema.Message{
		schema.UserMessage("a"),
		schema.SystemMessage("sys"),
		schema.AssistantMessage("b", nil),
	})
	require.Len(t, out, 1)
	assert.Equal(t, schema.System, out[0].Role)
}

func TestAgentRunsManagedTurn(t *testing.T) {
	f := newFixture(t, types.IntentOther, nil)
	m := NewSessionManager(f.engine, NewMemorySessionStore())
	a := NewAgent("booking", "hotel booking assistant", m)
	ctx := WithSessionKey(context.Background(), "s1")

	assert.Equal(t, "booking", a.Name(ctx))
	iter := a.Run(ctx, &adk.AgentInput{Messages: []adk.Message{schema.UserMessage("hello")}})
	event, ok := iter.Next()
	require.True(t, ok)
	require.NoError(t, event.Err)
	assert.Equal(t, "response", event.Output.MessageOutput.Message.Content)
	_, ok = iter.Next()
	assert.False(t, ok)

	iter = a.Run(ctx, &adk.AgentInput{})
	event, ok = iter.Next()
	require.True(t, ok)
	assert.Error(t, event.Err)
}
