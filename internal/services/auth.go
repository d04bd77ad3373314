package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bloglist/apiserver/internal/store"
	"github.com/bloglist/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const sessionTokenBytes = 32

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) error
	Get(ctx context.Context, token string) (types.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthService issues, revokes, and resolves opaque session tokens.
//
// Tokens are random bytes mapped to a user id server-side, so any session
// can be revoked immediately and the token itself carries no information.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
}

func NewAuthService(users UserRepository, sessions SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Login verifies the credentials and issues a new session. An unknown
// username and a wrong password are indistinguishable to the caller: both
// return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (types.Session, types.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, types.User{}, ErrInvalidCredentials
		}
		return types.Session{}, types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.Session{}, types.User{}, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return types.Session{}, types.User{}, err
	}

	session := types.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return types.Session{}, types.User{}, err
	}

	return session, user, nil
}

// Logout revokes the session. Revoking an unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Resolve maps a session token back to its user. It is called on every
// authenticated request; a revoked or unknown token yields
// store.ErrNotFound.
func (s *AuthService) Resolve(ctx context.Context, token string) (types.User, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return types.User{}, err
	}
	return s.users.GetByID(ctx, session.UserID)
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
