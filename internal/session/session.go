// Package session tracks which parent is signed in on a device and which kid
// profile is active. A Session is created per device and passed explicitly to
// every component that scopes queries by it.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State is a snapshot of a session. Nil means unset.
type State struct {
	ParentID      *int64 `json:"parent_id"`
	SelectedKidID *int64 `json:"selected_kid_id"`
}

// LoggedIn reports whether a parent is signed in
func (s State) LoggedIn() bool {
	return s.ParentID != nil
}

// KidID returns the selected kid, if any
func (s State) KidID() (int64, bool) {
	if s.SelectedKidID == nil {
		return 0, false
	}
	return *s.SelectedKidID, true
}

func (s State) clone() State {
	var out State
	if s.ParentID != nil {
		v := *s.ParentID
		out.ParentID = &v
	}
	if s.SelectedKidID != nil {
		v := *s.SelectedKidID
		out.SelectedKidID = &v
	}
	return out
}

// Session holds the state of one device. Every mutation is written to the
// store before it becomes visible in memory.
type Session struct {
	key   string
	store Store
	log   *zap.Logger

	// opMu serializes mutations so the store and memory never disagree on order
	opMu sync.Mutex

	mu       sync.Mutex
	state    State
	nextID   uint64
	watchers map[uint64]chan State
}

// Open loads the persisted state for key once and returns the session
func Open(ctx context.Context, key string, store Store, log *zap.Logger) (*Session, error) {
	state, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Session{
		key:      key,
		store:    store,
		log:      log.With(zap.String("component", "session")),
		state:    state,
		watchers: make(map[uint64]chan State),
	}, nil
}

// Key returns the device session key
func (s *Session) Key() string {
	return s.key
}

// State returns a copy of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ParentID returns the signed-in parent, if any
func (s *Session) ParentID() (int64, bool) {
	st := s.State()
	if st.ParentID == nil {
		return 0, false
	}
	return *st.ParentID, true
}

// SelectedKidID returns the active kid profile, if any
func (s *Session) SelectedKidID() (int64, bool) {
	return s.State().KidID()
}

// LoginParent signs in a parent and clears any selected kid profile, so a
// previous parent's selection never carries over.
func (s *Session) LoginParent(ctx context.Context, parentID int64) error {
	return s.apply(ctx, State{ParentID: &parentID})
}

// SelectProfile makes kidID the active profile under the current parent.
// Ownership is not checked here; callers decide which kids may be selected.
func (s *Session) SelectProfile(ctx context.Context, kidID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := s.State()
	next.SelectedKidID = &kidID
	return s.applyLocked(ctx, next)
}

// Logout clears the session in memory and in the store. Memory is cleared
// even if the store fails; the store error is returned.
func (s *Session) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.publish(State{})

	if err := s.store.Clear(ctx, s.key); err != nil {
		s.log.Error("failed to clear persisted session", zap.Error(err))
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Watch delivers the current state and then every change until ctx is done.
// A slow reader only ever sees the latest state. The channel is closed when
// ctx is done.
func (s *Session) Watch(ctx context.Context) <-chan State {
	ch := make(chan State, 1)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers[id] = ch
	ch <- s.state.clone()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *Session) watching() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

func (s *Session) apply(ctx context.Context, next State) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.applyLocked(ctx, next)
}

func (s *Session) applyLocked(ctx context.Context, next State) error {
	if err := s.store.Save(ctx, s.key, next); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.publish(next)
	return nil
}

func (s *Session) publish(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = next.clone()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s.state.clone()
	}
}
