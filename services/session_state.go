package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
)

type ProfileFetcher interface {
	FetchUser(ctx context.Context, userID uint) (*models.User, error)
	FetchProfile(ctx context.Context, userID uint) (*models.Profile, error)
}

type SessionSnapshot struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
	IsAdmin bool            `json:"is_admin"`
	Loading bool            `json:"loading"`
}

// SessionState tracks the signed-in user, the profile row and the derived
// admin flag, re-fetching the profile whenever the session changes.
type SessionState struct {
	fetcher ProfileFetcher
	timeout time.Duration

	mu   sync.RWMutex
	snap SessionSnapshot
}

func NewSessionState(fetcher ProfileFetcher) *SessionState {
	return &SessionState{fetcher: fetcher, timeout: 5 * time.Second}
}

func (s *SessionState) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *SessionState) set(snap SessionSnapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Load fetches user and profile for userID. Failures are logged and leave the
// state signed out; they are never returned to the caller.
func (s *SessionState) Load(ctx context.Context, userID uint) SessionSnapshot {
	if userID == 0 {
		s.set(SessionSnapshot{})
		return s.Snapshot()
	}

	s.mu.Lock()
	s.snap.Loading = true
	s.mu.Unlock()

	user, err := s.fetcher.FetchUser(ctx, userID)
	if err != nil {
		utils.ErrorLogger.Errorf("Error fetching user %d: %v", userID, err)
		s.set(SessionSnapshot{})
		return s.Snapshot()
	}
	profile, err := s.fetcher.FetchProfile(ctx, userID)
	if err != nil {
		utils.ErrorLogger.Errorf("Error fetching profile for user %d: %v", userID, err)
		s.set(SessionSnapshot{})
		return s.Snapshot()
	}

	s.set(SessionSnapshot{User: user, Profile: profile, IsAdmin: profile.IsAdmin})
	return s.Snapshot()
}

// Bind loads the state for userID and keeps it current on session changes for
// that user. onChange (optional) receives every new snapshot. Call the returned
// func to stop listening.
func (s *SessionState) Bind(ctx context.Context, auth *AuthService, userID uint, onChange func(AuthEvent, SessionSnapshot)) (unbind func()) {
	s.Load(ctx, userID)

	return auth.OnAuthStateChange(func(change AuthChange) {
		if change.UserID != userID {
			return
		}

		var snap SessionSnapshot
		switch change.Event {
		case EventSignedOut:
			s.set(SessionSnapshot{})
			snap = s.Snapshot()
		case EventSignedIn, EventUserUpdated:
			fetchCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
			snap = s.Load(fetchCtx, userID)
			cancel()
		default:
			return
		}

		if onChange != nil {
			onChange(change.Event, snap)
		}
	})
}
