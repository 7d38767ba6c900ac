package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthEvent string

const (
	EventSignedIn         AuthEvent = "SIGNED_IN"
	EventSignedOut        AuthEvent = "SIGNED_OUT"
	EventPasswordRecovery AuthEvent = "PASSWORD_RECOVERY"
	EventUserUpdated      AuthEvent = "USER_UPDATED"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Session struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

// AuthChange is delivered to OnAuthStateChange listeners.
type AuthChange struct {
	Event   AuthEvent
	UserID  uint
	Session *Session
}

// ResetMailer delivers password-reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

type AuthService struct {
	db         *gorm.DB
	mailer     ResetMailer
	sessionTTL time.Duration
	siteURL    string

	mu        sync.RWMutex
	listeners map[int]func(AuthChange)
	nextID    int
}

func NewAuthService(db *gorm.DB, mailer ResetMailer, sessionTTL time.Duration, siteURL string) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		db:         db,
		mailer:     mailer,
		sessionTTL: sessionTTL,
		siteURL:    strings.TrimRight(siteURL, "/"),
		listeners:  make(map[int]func(AuthChange)),
	}
}

// OnAuthStateChange registers fn for every session change until the returned
// func is called.
func (s *AuthService) OnAuthStateChange(fn func(AuthChange)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) emit(change AuthChange) {
	s.mu.RLock()
	fns := make([]func(AuthChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *AuthService) newSession(user models.User) (*Session, error) {
	token, expiresAt, err := utils.GenerateToken(user.ID, user.Email, utils.TokenPurposeAccess, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// SignUp creates the user with its profile row and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: string(hashed)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{ID: user.ID, FullName: strings.TrimSpace(fullName)}
		return tx.Create(&profile).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("New user registered: %s", user.Email)
	s.emit(AuthChange{Event: EventSignedIn, UserID: user.ID, Session: session})
	return session, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	s.emit(AuthChange{Event: EventSignedIn, UserID: user.ID, Session: session})
	return session, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := utils.ParseToken(token, utils.TokenPurposeAccess)
	if err != nil {
		return err
	}
	utils.BlacklistToken(token, claims.ExpiresAt.Time)
	s.emit(AuthChange{Event: EventSignedOut, UserID: claims.UserID})
	return nil
}

// Authenticate resolves an access token to its claims.
func (s *AuthService) Authenticate(token string) (*utils.CustomClaims, error) {
	return utils.ParseToken(token, utils.TokenPurposeAccess)
}

// ResetPassword emails a reset link. Unknown addresses succeed silently.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InfoLogger.Printf("Password reset requested for unknown email %s", email)
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	token, _, err := utils.GenerateToken(user.ID, user.Email, utils.TokenPurposeReset, resetTokenTTL)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", s.siteURL, url.QueryEscape(token))
	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
			return fmt.Errorf("send reset email: %w", err)
		}
	}
	s.emit(AuthChange{Event: EventPasswordRecovery, UserID: user.ID})
	return nil
}

// UpdatePassword consumes a reset token and sets the new password.
func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := utils.ParseToken(resetToken, utils.TokenPurposeReset)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", claims.UserID).
		Update("password_hash", string(hashed))
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrInvalidToken
	}

	utils.BlacklistToken(resetToken, claims.ExpiresAt.Time)
	s.emit(AuthChange{Event: EventUserUpdated, UserID: claims.UserID})
	return nil
}

// NotifyUserUpdated announces a profile change to session listeners.
func (s *AuthService) NotifyUserUpdated(userID uint) {
	s.emit(AuthChange{Event: EventUserUpdated, UserID: userID})
}

func (s *AuthService) FetchUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) FetchProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
