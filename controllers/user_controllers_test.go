package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"gorm.io/gorm"
)

type capturedReset struct {
	email, link string
}

type resetRecorder struct {
	sent []capturedReset
}

func (r *resetRecorder) SendPasswordReset(_ context.Context, email, link string) error {
	r.sent = append(r.sent, capturedReset{email, link})
	return nil
}

func setupUserRouter(db *gorm.DB, mailer services.ResetMailer) (*gin.Engine, *services.AuthService) {
	auth := services.NewAuthService(db, mailer, time.Hour, "http://site.test")
	uc := NewUserController(db, auth)
	r := gin.New()
	r.POST("/auth/signup", uc.SignUp)
	r.POST("/auth/signin", uc.SignIn)
	r.POST("/auth/reset-password", uc.ResetPassword)
	r.POST("/auth/update-password", uc.UpdatePassword)

	authed := r.Group("/", middlewares.RequireAuth(auth))
	authed.POST("/auth/signout", uc.SignOut)
	authed.GET("/auth/session", uc.Session)
	authed.PATCH("/auth/profile", uc.UpdateProfile)
	authed.GET("/admin/users", uc.ListUsers)
	authed.PATCH("/admin/users/:id", uc.UpdateUserRole)
	return r, auth
}

func signUp(t *testing.T, r *gin.Engine, email string) services.Session {
	t.Helper()
	w, env := doJSON(t, r, "POST", "/auth/signup", gin.H{"email": email, "password": "secret123", "full_name": "Meera"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session services.Session
	decode(t, env, &session)
	require.NotEmpty(t, session.AccessToken)
	return session
}

func TestSignUpSignInSignOut(t *testing.T) {
	db := setupTestDB(t)
	r, _ := setupUserRouter(db, &resetRecorder{})

	session := signUp(t, r, " Meera@Example.com ")
	assert.Equal(t, "meera@example.com", session.User.Email)

	w, _ := doJSON(t, r, "POST", "/auth/signup", gin.H{"email": "meera@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = doJSON(t, r, "POST", "/auth/signup", gin.H{"email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, r, "POST", "/auth/signup", gin.H{"email": "x@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, "POST", "/auth/signin", gin.H{"email": "meera@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, env := doJSON(t, r, "POST", "/auth/signin", gin.H{"email": "meera@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Signed in", env.Message)
	var signedIn services.Session
	decode(t, env, &signedIn)

	w, env = doJSONAuth(t, r, "GET", "/auth/session", signedIn.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var snap services.SessionSnapshot
	decode(t, env, &snap)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Meera", snap.Profile.FullName)
	assert.False(t, snap.IsAdmin)

	w, _ = doJSONAuth(t, r, "POST", "/auth/signout", signedIn.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSONAuth(t, r, "GET", "/auth/session", signedIn.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	db := setupTestDB(t)
	mailer := &resetRecorder{}
	r, _ := setupUserRouter(db, mailer)
	signUp(t, r, "meera@example.com")

	w, _ := doJSON(t, r, "POST", "/auth/reset-password", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mailer.sent)

	w, _ = doJSON(t, r, "POST", "/auth/reset-password", gin.H{"email": "meera@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.sent, 1)
	link, err := url.Parse(mailer.sent[0].link)
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	w, _ = doJSON(t, r, "POST", "/auth/update-password", gin.H{"token": token, "password": "newsecret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = doJSON(t, r, "POST", "/auth/update-password", gin.H{"token": token, "password": "another1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "reset token is single use")

	w, _ = doJSON(t, r, "POST", "/auth/signin", gin.H{"email": "meera@example.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	r, _ := setupUserRouter(db, nil)
	session := signUp(t, r, "meera@example.com")

	w, _ := doJSONAuth(t, r, "PATCH", "/auth/profile", session.AccessToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doJSONAuth(t, r, "PATCH", "/auth/profile", session.AccessToken, gin.H{"phone": " 98765 "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile models.Profile
	decode(t, env, &profile)
	assert.Equal(t, "98765", profile.Phone)
	assert.Equal(t, "Meera", profile.FullName)
}

func TestAdminUserManagement(t *testing.T) {
	db := setupTestDB(t)
	r, _ := setupUserRouter(db, nil)
	admin := signUp(t, r, "admin@example.com")
	guest := signUp(t, r, "guest@example.com")

	w, env := doJSONAuth(t, r, "GET", "/admin/users", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []struct {
		ID      uint   `json:"id"`
		Email   string `json:"email"`
		IsAdmin bool   `json:"is_admin"`
	}
	decode(t, env, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@example.com", users[0].Email)

	path := fmt.Sprintf("/admin/users/%d", guest.User.ID)
	w, _ = doJSONAuth(t, r, "PATCH", path, admin.AccessToken, gin.H{"is_admin": true, "is_verified": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile models.Profile
	require.NoError(t, db.First(&profile, guest.User.ID).Error)
	assert.True(t, profile.IsAdmin)
	assert.True(t, profile.IsVerified)

	w, _ = doJSONAuth(t, r, "PATCH", fmt.Sprintf("/admin/users/%d", admin.User.ID), admin.AccessToken, gin.H{"is_admin": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSONAuth(t, r, "PATCH", "/admin/users/999", admin.AccessToken, gin.H{"is_verified": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
