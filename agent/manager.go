package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tbxark/hotelagent/internal/logging"
	"github.com/tbxark/hotelagent/types"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// SessionManager serializes turns of the same session and persists the
// result. Sessions are addressed by the context's session key.
type SessionManager struct {
	engine *Engine
	store  SessionReadWriter
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*lockEntry
}

type ManagerOption func(*SessionManager)

func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewSessionManager(engine *Engine, store SessionReadWriter, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		engine: engine,
		store:  store,
		logger: logging.NewNop(),
		locks:  make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[key]
	if !ok {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (m *SessionManager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock runs fn while holding the lock of the context's session.
func (m *SessionManager) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	key, _ := sessionKeyOrDefault(ctx)
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()
	return fn(ctx)
}

// Create stores a fresh session, replacing any existing one.
func (m *SessionManager) Create(ctx context.Context) (*types.Session, error) {
	s := types.NewSession("")
	err := m.WithLock(ctx, func(ctx context.Context) error {
		return m.store.Save(ctx, s)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (m *SessionManager) Load(ctx context.Context) (*types.Session, error) {
	var s *types.Session
	err := m.WithLock(ctx, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx)
		return err
	})
	return s, err
}

func (m *SessionManager) Exists(ctx context.Context) (bool, error) {
	return m.store.Exists(ctx)
}

// Reset forgets the session; the next turn starts from scratch.
func (m *SessionManager) Reset(ctx context.Context) error {
	return m.WithLock(ctx, func(ctx context.Context) error {
		return m.store.Delete(ctx)
	})
}

// Turn loads the session (or starts one), runs the engine with message and
// saves the result. A failed turn leaves the stored session unchanged.
func (m *SessionManager) Turn(ctx context.Context, message string) (*Turn, error) {
	return m.turn(ctx, message, true)
}

// Continue is Turn for a session that must already exist. A missing session
// is reported as ErrSessionNotFound, checked under the session lock.
func (m *SessionManager) Continue(ctx context.Context, message string) (*Turn, error) {
	return m.turn(ctx, message, false)
}

func (m *SessionManager) turn(ctx context.Context, message string, create bool) (*Turn, error) {
	var turn *Turn
	err := m.WithLock(ctx, func(ctx context.Context) error {
		s, err := m.store.Load(ctx)
		switch {
		case errors.Is(err, ErrSessionNotFound) && create:
			s = types.NewSession("")
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}
		s.UserMessage = message
		turn, err = m.engine.RunTurn(ctx, s)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, turn.Session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		key, _ := sessionKeyOrDefault(ctx)
		m.logger.Warn("Session turn failed", "session_id", key, "error", err)
		return nil, err
	}
	return turn, nil
}
