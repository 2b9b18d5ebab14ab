package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/casaloop/casaloop-backend/internal/pi"
	usersdomain "github.com/casaloop/casaloop-backend/internal/users/domain"
)

// TokenVerifier resolves a Pi access token to its owner.
type TokenVerifier interface {
	Me(ctx context.Context, accessToken string) (*pi.User, error)
}

// UserStore provisions and reads user profiles.
type UserStore interface {
	Upsert(ctx context.Context, uid, username string) (*usersdomain.User, error)
}

// AuthService implements the signin bootstrap: validate the wallet
// token against the platform, then ensure a profile document exists.
type AuthService struct {
	verifier TokenVerifier
	users    UserStore
	timeout  time.Duration
}

// NewAuthService creates an AuthService. timeout caps the whole signin
// exchange; the mobile client blocks on it at app start.
func NewAuthService(verifier TokenVerifier, users UserStore, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AuthService{verifier: verifier, users: users, timeout: timeout}
}

// SignIn validates the token and returns the user's profile, creating
// it on first signin.
func (s *AuthService) SignIn(ctx context.Context, accessToken string) (*usersdomain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	piUser, err := s.verifier.Me(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	user, err := s.users.Upsert(ctx, piUser.UID, piUser.Username)
	if err != nil {
		return nil, fmt.Errorf("profile bootstrap failed: %w", err)
	}
	if user.Banned {
		return nil, usersdomain.ErrUserBanned
	}

	log.Printf("[auth] signin uid=%s username=%s", user.UID, user.Username)
	return user, nil
}
