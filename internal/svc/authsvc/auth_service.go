package authsvc

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKeyFile is the path to the RSA private key used to sign session tokens
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/campuslink.key" yaml:"signingKeyFile"`

	// TokenDuration is the validity duration of session tokens in seconds
	TokenDuration int64 `env:"TOKEN_DURATION" default:"86400" yaml:"tokenDuration"` // 24h
}

// AuthService provides registration, credential verification and user lookups.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Log      logging.Logger

	keyLock    sync.Mutex
	SigningKey *rsa.PrivateKey // Loaded from Config.SigningKeyFile on first use when nil
}

// NewAuthService creates a new AuthService on top of the given user repository.
func NewAuthService(userRepo user.Repository, cfg AuthConfig) *AuthService {
	return &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// RegisterUser creates a new user account with the given username and password.
// The password is hashed before storage.
// Returns domain.ErrUserAlreadyExists if the username is taken; any other
// failure is a storage error.
func (s *AuthService) RegisterUser(ctx context.Context, username, password string) (err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		switch {
		case err == nil:
			log.DebugContext(ctx, "user registered")
		case errors.Is(err, domain.ErrUserAlreadyExists):
			log.WarnContext(ctx, "username already taken")
		default:
			log.ErrorContext(ctx, "register user failed", "error", err)
		}
	}()

	if _, err := s.UserRepo.CreateUser(ctx, username, HashPassword(password)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// VerifyCredentials checks a username/password pair. The error is non-nil
// only together with domain.AuthStorageError.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (domain.AuthResult, error) {
	result, _, err := s.verify(ctx, username, password)

	return result, err
}

func (s *AuthService) verify(ctx context.Context, username, password string) (_ domain.AuthResult, _ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	u, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.DebugContext(ctx, "credential check: user not found")

			return domain.AuthUserNotFound, nil, nil
		}

		log.ErrorContext(ctx, "credential check failed", "error", err)

		return domain.AuthStorageError, nil, fmt.Errorf("get user: %w", err)
	}

	if !PasswordMatches(password, u.PasswordHash) {
		log.DebugContext(ctx, "credential check: incorrect password")

		return domain.AuthIncorrectPassword, nil, nil
	}

	log.DebugContext(ctx, "credential check: success")

	return domain.AuthSuccess, u, nil
}

// GetUserID returns the ID of the user with the given username.
// Returns domain.ErrUserNotFound if no such user exists.
func (s *AuthService) GetUserID(ctx context.Context, username string) (int64, error) {
	u, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("get user: %w", err)
	}

	return u.ID, nil
}

// GetUsernameByID returns the username of the user with the given ID.
// Returns domain.ErrUserNotFound if no such user exists.
func (s *AuthService) GetUsernameByID(ctx context.Context, id int64) (string, error) {
	u, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	return u.Username, nil
}

func (s *AuthService) signingKey() (*rsa.PrivateKey, error) {
	s.keyLock.Lock()
	defer s.keyLock.Unlock()

	if s.SigningKey != nil {
		return s.SigningKey, nil
	}

	key, err := GetPrivateKey(s.Config.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	s.SigningKey = key

	return key, nil
}
