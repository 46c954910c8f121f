package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/concurrency"
	"github.com/vozlegal/intake/internal/errors"
)

// Manager owns the in-memory session table. It is the only writer: create,
// transfer, and end are the full mutation surface. Per-session locks keep
// transfer history in strict append order under concurrent calls while
// operations on different sessions proceed independently.
type Manager struct {
	registry   *agent.Registry
	sessions   map[string]*Session
	mu         sync.RWMutex
	locks      *concurrency.SessionLocks
	maxHistory int
	now        func() time.Time
}

func NewManager(registry *agent.Registry, maxHistory int, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		registry:   registry,
		sessions:   make(map[string]*Session),
		locks:      concurrency.NewSessionLocks(),
		maxHistory: maxHistory,
		now:        now,
	}
}

// Create starts a session for a new conversation. The agent type must be
// registered; the session language follows the agent's configured language.
func (m *Manager) Create(agentType agent.Type, userID string, channel Channel) (*Session, error) {
	def, err := m.registry.Get(agentType)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, errors.InvalidInput("user id required")
	}
	if _, err := ParseChannel(string(channel)); err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:           ulid.Make().String(),
		AgentType:    agentType,
		UserID:       userID,
		Channel:      channel,
		StartTime:    now,
		LastActivity: now,
		Context: Context{
			TransferHistory: []TransferRecord{},
			CollectedInfo:   make(map[string]string),
			Language:        def.Language,
		},
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("Session created", "session_id", s.ID, "agent", agentType, "channel", channel)
	return s.clone(), nil
}

// Transfer reassigns the session to a new agent and appends a transfer
// record. The target must be registered. Returns the updated snapshot.
func (m *Manager) Transfer(sessionID string, target agent.Type, reason string) (*Session, error) {
	if !m.registry.Has(target) {
		return nil, errors.NotFound(fmt.Sprintf("agent %s not registered", target))
	}

	// The per-session lock serializes whole transfers on one conversation
	// so history lands in call order; the table mutex only guards the map
	// and field consistency against concurrent snapshot readers.
	m.locks.Lock(sessionID)
	defer m.locks.Unlock(sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}

	now := m.now()
	record := TransferRecord{
		From:      s.AgentType,
		To:        target,
		Reason:    reason,
		Timestamp: now,
	}

	s.Context.PreviousAgent = s.AgentType
	s.AgentType = target
	s.Context.TransferHistory = append(s.Context.TransferHistory, record)
	if m.maxHistory > 0 && len(s.Context.TransferHistory) > m.maxHistory {
		// Drop the oldest records; recent history is what matters for
		// long-lived conversations.
		overflow := len(s.Context.TransferHistory) - m.maxHistory
		s.Context.TransferHistory = append([]TransferRecord(nil), s.Context.TransferHistory[overflow:]...)
	}
	s.LastActivity = now

	slog.Info("Session transferred",
		"session_id", sessionID, "from", record.From, "to", record.To, "reason", reason)
	return s.clone(), nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}
	return s.clone(), nil
}

// Touch records activity on a session and optionally merges collected
// slot-filling info.
func (m *Manager) Touch(sessionID string, collected map[string]string) error {
	m.locks.Lock(sessionID)
	defer m.locks.Unlock(sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}

	s.LastActivity = m.now()
	for k, v := range collected {
		s.Context.CollectedInfo[k] = v
	}
	return nil
}

// End removes the session. Ending a session that does not exist is a no-op.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	_, existed := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if existed {
		m.locks.Forget(sessionID)
		slog.Info("Session ended", "session_id", sessionID)
	}
}

// ActiveCount returns the number of live sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions idle longer than ttl and returns how many were
// dropped. The reaper component calls this on a schedule; an in-memory
// table with no eviction leaks in a long-running process.
func (m *Manager) Reap(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.locks.Forget(id)
	}

	if len(expired) > 0 {
		slog.Info("Idle sessions reaped", "count", len(expired), "ttl", ttl)
	}
	return len(expired)
}

// Snapshot returns copies of every live session, for export and stats.
func (m *Manager) Snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.clone())
	}
	return out
}
