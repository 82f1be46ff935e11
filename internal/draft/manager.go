package draft

import (
	"context"
	"sync"

	"github.com/Domenick1991/bookingflow/internal/persist"
	"github.com/google/uuid"
)

// Manager is the session registry. Stores are cached per session id; opening
// an id that is not cached restores whatever snapshots exist for it, which
// is how the flow resumes after a process restart.
type Manager struct {
	persist persist.Store

	mu    sync.Mutex
	store map[string]*Store
}

func NewManager(p persist.Store) *Manager {
	return &Manager{persist: p, store: make(map[string]*Store)}
}

// Create starts a fresh session with an empty draft.
func (m *Manager) Create(ctx context.Context) (*Store, error) {
	id := uuid.NewString()
	if err := m.persist.AddSession(ctx, id); err != nil {
		return nil, err
	}
	s := newStore(id, m.persist)
	m.mu.Lock()
	m.store[id] = s
	m.mu.Unlock()
	return s, nil
}

// Open returns the store for a session, restoring persisted state on first
// access. An id with no snapshots yields an empty draft at the start of the
// flow; absent state is never an error.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.store[sessionID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s := newStore(sessionID, m.persist)
	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	if err := m.persist.AddSession(ctx, sessionID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[sessionID]; ok {
		return existing, nil
	}
	m.store[sessionID] = s
	return s, nil
}

// End resets a session's draft, removes it from the index, and forgets it.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	s, err := m.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.Reset(ctx); err != nil {
		return err
	}
	if err := m.persist.Clear(ctx, persist.TokenKey(sessionID)); err != nil {
		return err
	}
	if err := m.persist.RemoveSession(ctx, sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.store, sessionID)
	m.mu.Unlock()
	return nil
}

// Sessions lists the active session ids, for the worker sweep.
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	return m.persist.Sessions(ctx)
}

// SaveToken persists a session's backend credential under its own scope,
// outside the draft keys so Reset does not log the user out.
func (m *Manager) SaveToken(ctx context.Context, sessionID, token string) error {
	return m.persist.Snapshot(ctx, persist.TokenKey(sessionID), token)
}

// Token restores a session's credential; absent means unauthenticated.
func (m *Manager) Token(ctx context.Context, sessionID string) (string, bool, error) {
	var token string
	ok, err := m.persist.Restore(ctx, persist.TokenKey(sessionID), &token)
	return token, ok, err
}

// ClearToken drops the credential, as after a 401 from the backend.
func (m *Manager) ClearToken(ctx context.Context, sessionID string) error {
	return m.persist.Clear(ctx, persist.TokenKey(sessionID))
}
