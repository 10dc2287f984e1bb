package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos/internal/apierror"
	"barpos/internal/model"
	"barpos/internal/store"
)

type fakeLogin struct {
	resp    *model.LoginResponse
	err     error
	lastReq model.LoginRequest
}

func (f *fakeLogin) Login(_ context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func barmanLogin(token string) *fakeLogin {
	return &fakeLogin{resp: &model.LoginResponse{
		User: model.User{
			ID:       "u1",
			Name:     "Moussa",
			Phone:    "699000001",
			Role:     model.RoleBarman,
			IsActive: true,
		},
		Token: token,
	}}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "terminal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLoginReplacesStateAndPersists(t *testing.T) {
	st := openStore(t)
	sess := New(st)
	api := barmanLogin("tok-abc")

	require.NoError(t, sess.Login(context.Background(), api, "699000001", "secret"))

	state := sess.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, model.RoleBarman, state.Role)
	assert.Equal(t, "tok-abc", sess.Token())
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)

	// the device id travels with the credentials
	assert.NotEmpty(t, api.lastReq.DeviceID)

	saved, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "tok-abc", saved.Token)
	assert.Equal(t, "Moussa", saved.User.Name)
}

func TestLoginFailureRecordsError(t *testing.T) {
	st := openStore(t)
	sess := New(st)
	api := &fakeLogin{err: apierror.New(401, "Identifiants invalides")}

	err := sess.Login(context.Background(), api, "699000001", "wrong")
	require.Error(t, err)

	state := sess.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.Loading)
	assert.Contains(t, state.Error, "Identifiants invalides")
	assert.Empty(t, sess.Token())

	saved, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestLogoutResetsAndClearsStorage(t *testing.T) {
	st := openStore(t)
	sess := New(st)
	require.NoError(t, sess.Login(context.Background(), barmanLogin("tok-abc"), "699000001", "secret"))

	before, err := st.DeviceID()
	require.NoError(t, err)

	sess.Logout()

	assert.Equal(t, State{}, sess.Snapshot())
	saved, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)

	// device identity survives logout
	after, err := st.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRestoreRehydratesValidSession(t *testing.T) {
	st := openStore(t)
	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, sessLogin(t, st, token))

	fresh := New(st)
	require.NoError(t, fresh.Restore())

	state := fresh.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, model.RoleBarman, state.Role)
	assert.Equal(t, token, fresh.Token())
	assert.Equal(t, "Moussa", state.User.Name)
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	st := openStore(t)
	require.NoError(t, sessLogin(t, st, signedToken(t, time.Now().Add(-time.Hour))))

	fresh := New(st)
	require.NoError(t, fresh.Restore())

	assert.False(t, fresh.Snapshot().IsAuthenticated)
	saved, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRestoreKeepsUnparseableToken(t *testing.T) {
	// Opaque tokens cannot be inspected locally; they stay until the backend
	// rejects them with a 401.
	st := openStore(t)
	require.NoError(t, sessLogin(t, st, "opaque-session-token"))

	fresh := New(st)
	require.NoError(t, fresh.Restore())

	assert.True(t, fresh.Snapshot().IsAuthenticated)
	assert.Equal(t, "opaque-session-token", fresh.Token())
}

func TestRestoreNoSavedSession(t *testing.T) {
	sess := New(openStore(t))
	require.NoError(t, sess.Restore())
	assert.Equal(t, State{}, sess.Snapshot())
}

func sessLogin(t *testing.T, st *store.Store, token string) error {
	t.Helper()
	return New(st).Login(context.Background(), barmanLogin(token), "699000001", "secret")
}
