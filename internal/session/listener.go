package session

import (
	"context"

	"github.com/finwise/finwise-backend/internal/identity"
)

// InitializeAuthListener subscribes the store to the identity provider and
// replays any persisted session so that exactly one initial event arrives on
// every cold start, whether or not a stored token exists. Repeated calls are
// no-ops returning the original unsubscribe. The subscription is established
// before replay, so the initial event is never missed.
func (st *Store) InitializeAuthListener(ctx context.Context, provider identity.Provider) func() {
	st.mu.Lock()
	if st.listenerActive {
		unsub := st.listenerUnsub
		st.mu.Unlock()
		st.log.Warn("auth listener already initialized")
		return unsub
	}
	st.listenerActive = true
	st.mu.Unlock()

	unsub := provider.Subscribe(func(ev identity.Event) {
		st.handleIdentityEvent(ctx, ev)
	})

	st.mu.Lock()
	st.listenerUnsub = unsub
	st.mu.Unlock()

	stored := st.readSnapshot(ctx)
	provider.Resume(ctx, stored.Token)
	return unsub
}

// handleIdentityEvent maps one provider event onto the session. The first
// event, signed in or out, latches AutoLoginAttempted; it is never reset
// afterwards, so startup routing can rely on it.
func (st *Store) handleIdentityEvent(ctx context.Context, ev identity.Event) {
	if ev.User == nil {
		st.mu.Lock()
		st.cur.User = nil
		st.cur.Token = ""
		st.cur.IsAuthenticated = false
		st.cur.AgePromptDismissed = false
		st.cur.Err = ""
		st.cur.AutoLoginAttempted = true
		snap := st.snapshotLocked()
		st.mu.Unlock()

		st.notify(snap)
		if err := st.snapshots.Remove(ctx, snapshotKey); err != nil {
			st.log.Warn("snapshot remove failed", "error", err)
		}
		return
	}

	// The provider's record may be minimal. Fetch the extended profile;
	// if that fails the session still becomes authenticated with whatever
	// the event carried, and the failure surfaces on Err.
	fetchErr := ""
	record := ev.User
	if full, err := st.records.GetByID(ctx, ev.User.ID); err != nil {
		st.log.Warn("extended profile fetch failed", "userID", ev.User.ID, "error", err)
		fetchErr = err.Error()
	} else {
		record = full
	}

	profile, err := ProfileFromUser(record)
	if err != nil {
		st.log.Error("user record decode failed", "userID", ev.User.ID, "error", err)
		profile = &Profile{ID: record.ID, Email: record.Email}
		if fetchErr == "" {
			fetchErr = err.Error()
		}
	}

	st.mu.Lock()
	st.cur.User = profile
	st.cur.Token = ev.Token
	st.cur.IsAuthenticated = true
	st.cur.Err = fetchErr
	st.cur.AutoLoginAttempted = true
	snap := st.snapshotLocked()
	st.mu.Unlock()

	st.notify(snap)
	st.writeSnapshot(ctx, snap)
}
