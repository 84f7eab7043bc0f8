package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	types "github.com/finwise/finwise-backend/internal/domain"
	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/snapshot"
)

const snapshotKey = "current"

// RecordService is the remote user-record service the store mirrors.
// services.UserService satisfies it.
type RecordService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	SetLearningStyle(ctx context.Context, userID uuid.UUID, style string) (*types.User, error)
	SetPreferredTopics(ctx context.Context, userID uuid.UUID, topics []string) (*types.User, error)
	SetKnowledgeLevel(ctx context.Context, userID uuid.UUID, level int) (*types.User, error)
	SetAge(ctx context.Context, userID uuid.UUID, age int) (*types.User, error)
}

// Store owns the process-wide Session. It is the single writer: every
// mutation goes through its methods, which apply locally first, notify
// subscribers, then persist remotely. Remote failures keep the optimistic
// local state and surface on Session.Err.
type Store struct {
	log       *logger.Logger
	records   RecordService
	snapshots snapshot.Store

	mu          sync.Mutex
	cur         Session
	subscribers map[int]func(Session)
	nextSubID   int

	listenerActive bool
	listenerUnsub  func()
}

func NewStore(log *logger.Logger, records RecordService, snapshots snapshot.Store) *Store {
	return &Store{
		log:         log.With("service", "SessionStore"),
		records:     records,
		snapshots:   snapshots,
		subscribers: make(map[int]func(Session)),
	}
}

// Current returns a copy of the latest session snapshot.
func (st *Store) Current() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked()
}

// Subscribe registers fn to receive every subsequent session snapshot. The
// returned function unsubscribes and is safe to call more than once.
func (st *Store) Subscribe(fn func(Session)) func() {
	st.mu.Lock()
	id := st.nextSubID
	st.nextSubID++
	st.subscribers[id] = fn
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.subscribers, id)
			st.mu.Unlock()
		})
	}
}

// Login installs an authenticated session and persists the durable snapshot
// for cold-start restoration. Snapshot write failures are logged, not fatal.
func (st *Store) Login(ctx context.Context, token string, user *types.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("login requires token and user: %w", pkgerrors.ErrInvalidArgument)
	}
	profile, err := ProfileFromUser(user)
	if err != nil {
		return fmt.Errorf("decode user record: %w", err)
	}

	st.mu.Lock()
	st.cur.User = profile
	st.cur.Token = token
	st.cur.IsAuthenticated = true
	st.cur.AgePromptDismissed = false
	st.cur.Err = ""
	snap := st.snapshotLocked()
	st.mu.Unlock()

	st.notify(snap)
	st.writeSnapshot(ctx, snap)
	return nil
}

// Logout clears the session and the durable snapshot. Calling it when
// already logged out is a no-op.
func (st *Store) Logout(ctx context.Context) error {
	st.mu.Lock()
	wasAuthenticated := st.cur.IsAuthenticated
	st.cur.User = nil
	st.cur.Token = ""
	st.cur.IsAuthenticated = false
	st.cur.AgePromptDismissed = false
	st.cur.Err = ""
	snap := st.snapshotLocked()
	st.mu.Unlock()

	if wasAuthenticated {
		st.notify(snap)
	}
	if err := st.snapshots.Remove(ctx, snapshotKey); err != nil {
		st.log.Warn("snapshot remove failed", "error", err)
		return fmt.Errorf("clear session snapshot: %w", err)
	}
	return nil
}

func (st *Store) SetLearningStyle(ctx context.Context, style string) error {
	return st.mutateProfile(ctx,
		func(p *Profile) { p.LearningStyle = &style },
		func(ctx context.Context, userID uuid.UUID) error {
			_, err := st.records.SetLearningStyle(ctx, userID, style)
			return err
		})
}

func (st *Store) SetPreferredTopics(ctx context.Context, topics []string) error {
	if len(topics) == 0 {
		return fmt.Errorf("at least one topic is required: %w", pkgerrors.ErrInvalidArgument)
	}
	cp := append([]string(nil), topics...)
	return st.mutateProfile(ctx,
		func(p *Profile) { p.PreferredTopics = cp },
		func(ctx context.Context, userID uuid.UUID) error {
			_, err := st.records.SetPreferredTopics(ctx, userID, cp)
			return err
		})
}

func (st *Store) SetKnowledgeLevel(ctx context.Context, level int) error {
	return st.mutateProfile(ctx,
		func(p *Profile) { p.KnowledgeLevel = &level },
		func(ctx context.Context, userID uuid.UUID) error {
			_, err := st.records.SetKnowledgeLevel(ctx, userID, level)
			return err
		})
}

func (st *Store) UpdateUserAge(ctx context.Context, age int) error {
	isMinor := age < 18
	return st.mutateProfile(ctx,
		func(p *Profile) {
			p.Age = &age
			p.IsMinor = &isMinor
		},
		func(ctx context.Context, userID uuid.UUID) error {
			_, err := st.records.SetAge(ctx, userID, age)
			return err
		})
}

// DismissAgePrompt suppresses the age gate for the rest of this session
// without recording anything remotely.
func (st *Store) DismissAgePrompt() {
	st.mu.Lock()
	st.cur.AgePromptDismissed = true
	snap := st.snapshotLocked()
	st.mu.Unlock()
	st.notify(snap)
}

// mutateProfile applies one optimistic field update against the latest
// in-memory session, notifies, then persists remotely. A remote failure
// keeps the local update and records the error on the session.
func (st *Store) mutateProfile(ctx context.Context, apply func(*Profile), persist func(context.Context, uuid.UUID) error) error {
	st.mu.Lock()
	if st.cur.User == nil {
		st.mu.Unlock()
		return fmt.Errorf("no authenticated user: %w", pkgerrors.ErrUnauthorized)
	}
	p := st.cur.User.clone()
	apply(p)
	st.cur.User = p
	st.cur.Err = ""
	userID := p.ID
	snap := st.snapshotLocked()
	st.mu.Unlock()

	st.notify(snap)

	if err := persist(ctx, userID); err != nil {
		st.mu.Lock()
		st.cur.Err = err.Error()
		snap = st.snapshotLocked()
		st.mu.Unlock()
		st.notify(snap)
		return err
	}

	st.writeSnapshot(ctx, snap)
	return nil
}

// persistedSession is the durable snapshot payload.
type persistedSession struct {
	Token string   `json:"token"`
	User  *Profile `json:"user,omitempty"`
}

func (st *Store) writeSnapshot(ctx context.Context, snap Session) {
	if snap.Token == "" {
		return
	}
	raw, err := json.Marshal(persistedSession{Token: snap.Token, User: snap.User})
	if err != nil {
		st.log.Warn("snapshot encode failed", "error", err)
		return
	}
	if err := st.snapshots.Set(ctx, snapshotKey, raw); err != nil {
		st.log.Warn("snapshot write failed", "error", err)
	}
}

func (st *Store) readSnapshot(ctx context.Context) persistedSession {
	var out persistedSession
	raw, err := st.snapshots.Get(ctx, snapshotKey)
	if err != nil {
		st.log.Warn("snapshot read failed", "error", err)
		return out
	}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		st.log.Warn("snapshot decode failed", "error", err)
	}
	return out
}

// snapshotLocked copies the current session; callers must hold st.mu.
func (st *Store) snapshotLocked() Session {
	snap := st.cur
	snap.User = st.cur.User.clone()
	return snap
}

// notify delivers snap to every subscriber. A panicking subscriber is
// contained so it cannot take down the event source.
func (st *Store) notify(snap Session) {
	st.mu.Lock()
	fns := make([]func(Session), 0, len(st.subscribers))
	for _, fn := range st.subscribers {
		fns = append(fns, fn)
	}
	st.mu.Unlock()

	for _, fn := range fns {
		st.deliver(fn, snap)
	}
}

func (st *Store) deliver(fn func(Session), snap Session) {
	defer func() {
		if r := recover(); r != nil {
			st.log.Error("session subscriber panicked", "panic", r)
		}
	}()
	fn(snap)
}
