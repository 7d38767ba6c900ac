package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
)

type recordingMailer struct {
	mu    sync.Mutex
	email string
	link  string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email, m.link = email, link
	return nil
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestSignUpCreatesUserAndProfile(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, nil, 0, "http://site")

	session, err := auth.SignUp(context.Background(), " Guest@Example.com ", "secret1", "Guest One")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "guest@example.com", session.User.Email)

	var profile models.Profile
	require.NoError(t, db.First(&profile, session.User.ID).Error)
	assert.Equal(t, "Guest One", profile.FullName)
	assert.False(t, profile.IsAdmin)

	claims, err := auth.Authenticate(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
}

func TestSignUpValidation(t *testing.T) {
	auth := NewAuthService(newTestDB(t), nil, 0, "")
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "not-an-email", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = auth.SignUp(ctx, "a@b.com", "123", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = auth.SignUp(ctx, "a@b.com", "secret1", "")
	require.NoError(t, err)
	_, err = auth.SignUp(ctx, "A@B.com", "secret1", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInAndSignOut(t *testing.T) {
	auth := NewAuthService(newTestDB(t), nil, 0, "")
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "diner@example.com", "secret1", "Diner")
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, "diner@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := auth.SignIn(ctx, "DINER@example.com", "secret1")
	require.NoError(t, err)

	var events []AuthEvent
	unsubscribe := auth.OnAuthStateChange(func(c AuthChange) { events = append(events, c.Event) })
	defer unsubscribe()

	require.NoError(t, auth.SignOut(ctx, session.AccessToken))
	_, err = auth.Authenticate(session.AccessToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
	assert.Equal(t, []AuthEvent{EventSignedOut}, events)

	again, err := auth.SignIn(ctx, "diner@example.com", "secret1")
	require.NoError(t, err)
	_, err = auth.Authenticate(again.AccessToken)
	assert.NoError(t, err, "a fresh session is not affected by the old sign-out")
}

func TestResetPasswordFlow(t *testing.T) {
	mailer := &recordingMailer{}
	auth := NewAuthService(newTestDB(t), mailer, 0, "http://site/")
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "forgot@example.com", "oldpass", "")
	require.NoError(t, err)

	require.NoError(t, auth.ResetPassword(ctx, "forgot@example.com"))
	assert.Equal(t, "forgot@example.com", mailer.email)
	assert.True(t, strings.HasPrefix(mailer.link, "http://site/reset-password?token="))

	token := tokenFromLink(t, mailer.link)
	assert.ErrorIs(t, auth.UpdatePassword(ctx, token, "123"), ErrWeakPassword)
	require.NoError(t, auth.UpdatePassword(ctx, token, "newpass1"))
	assert.ErrorIs(t, auth.UpdatePassword(ctx, token, "another1"), utils.ErrInvalidToken, "reset tokens are single use")

	_, err = auth.SignIn(ctx, "forgot@example.com", "oldpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.SignIn(ctx, "forgot@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestResetPasswordUnknownEmailIsSilent(t *testing.T) {
	mailer := &recordingMailer{}
	auth := NewAuthService(newTestDB(t), mailer, 0, "")

	assert.NoError(t, auth.ResetPassword(context.Background(), "ghost@example.com"))
	assert.Empty(t, mailer.link)
	assert.ErrorIs(t, auth.ResetPassword(context.Background(), "bad"), ErrInvalidEmail)
}

func TestAccessTokenCannotResetPassword(t *testing.T) {
	auth := NewAuthService(newTestDB(t), nil, 0, "")
	session, err := auth.SignUp(context.Background(), "x@example.com", "secret1", "")
	require.NoError(t, err)

	err = auth.UpdatePassword(context.Background(), session.AccessToken, "newpass1")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestOnAuthStateChangeUnsubscribe(t *testing.T) {
	auth := NewAuthService(newTestDB(t), nil, 0, "")
	calls := 0
	unsubscribe := auth.OnAuthStateChange(func(AuthChange) { calls++ })

	auth.NotifyUserUpdated(1)
	unsubscribe()
	unsubscribe()
	auth.NotifyUserUpdated(1)

	assert.Equal(t, 1, calls)
}
