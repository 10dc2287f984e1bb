// Package session holds the process-wide authentication state. There is a
// single instance with a single writer: Login, Logout and Restore are the
// only mutators, every reader gets value snapshots. This replaces the
// broadcast-value pattern with an explicit context object.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"barpos/internal/model"
	"barpos/internal/store"
)

// State is replaced wholesale on login success and reset wholesale on logout.
type State struct {
	IsAuthenticated bool
	User            *model.User
	Token           string
	Role            model.Role
	Loading         bool
	Error           string
}

// LoginAPI is the slice of the REST client Login needs.
type LoginAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
}

type Session struct {
	mu    sync.RWMutex
	state State
	store *store.Store
}

func New(st *store.Store) *Session {
	return &Session{store: st}
}

// Snapshot returns a copy of the current auth state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Restore loads the persisted session, dropping it when the token has
// provably expired. Called once at startup.
func (s *Session) Restore() error {
	saved, err := s.store.Load()
	if err != nil {
		return err
	}
	if saved == nil {
		return nil
	}
	if tokenExpired(saved.Token) {
		log.Info().Msg("stored session token expired, clearing")
		return s.store.Clear()
	}

	s.mu.Lock()
	s.state = State{
		IsAuthenticated: true,
		User:            saved.User,
		Token:           saved.Token,
		Role:            saved.Role,
	}
	s.mu.Unlock()
	log.Info().Str("role", string(saved.Role)).Msg("session restored")
	return nil
}

// Login authenticates against the backend and, on success, replaces the
// whole state and persists it. On failure the error message is recorded and
// the session stays unauthenticated.
func (s *Session) Login(ctx context.Context, api LoginAPI, phone, password string) error {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()

	deviceID, err := s.store.DeviceID()
	if err != nil {
		return s.fail(err)
	}

	resp, err := api.Login(ctx, model.LoginRequest{
		Phone:    phone,
		Password: password,
		DeviceID: deviceID,
	})
	if err != nil {
		return s.fail(err)
	}

	if err := s.store.Save(&resp.User, resp.Token, resp.User.Role); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.state = State{
		IsAuthenticated: true,
		User:            &resp.User,
		Token:           resp.Token,
		Role:            resp.User.Role,
	}
	s.mu.Unlock()
	log.Info().Str("user", resp.User.Name).Str("role", string(resp.User.Role)).Msg("logged in")
	return nil
}

// Logout resets to the initial unauthenticated value and clears storage.
func (s *Session) Logout() {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear stored session")
	}
	log.Info().Msg("logged out")
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state.Loading = false
	s.state.Error = err.Error()
	s.mu.Unlock()
	return err
}

// tokenExpired parses the JWT without verifying the signature (the client
// does not hold the secret) and checks the exp claim. Unparseable tokens are
// kept; the backend will reject them with a 401 if they are bad.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
