package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
)

// TokenIssuer is the issuer claim of session tokens.
const TokenIssuer = "campuslink"

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login verifies the credentials and, on success, issues a signed session token.
// The token is empty unless the result is domain.AuthSuccess. The error is
// non-nil only for storage or signing failures.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, _ domain.AuthResult, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		}
	}()

	result, u, err := s.verify(ctx, username, password)
	if err != nil || result != domain.AuthSuccess {
		return "", result, err
	}

	key, err := s.signingKey()
	if err != nil {
		return "", domain.AuthStorageError, err
	}

	now := time.Now()
	expiry := now.Add(time.Duration(s.Config.TokenDuration) * time.Second)

	claims := sessionClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", domain.AuthStorageError, fmt.Errorf("sign token: %w", err)
	}

	log.With(logging.Group("token",
		"exp", expiry.UTC().Format(time.RFC3339),
		"iat", now.UTC().Format(time.RFC3339),
	)).DebugContext(ctx, "login successful")

	return token, domain.AuthSuccess, nil
}

// ValidateToken verifies a session token's signature and expiration and that
// its user still exists. Returns domain.ErrInvalidAuthToken for any token
// problem and a storage error if the user lookup fails.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (domain.AuthToken, error) {
	if tokenString == "" {
		return domain.AuthToken{}, domain.ErrNoAuthToken
	}

	key, err := s.signingKey()
	if err != nil {
		return domain.AuthToken{}, err
	}

	var claims sessionClaims

	_, err = jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		s.Log.DebugContext(ctx, "token rejected", "error", err)

		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("parse subject: %w", err))
	}

	username, err := s.GetUsernameByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, err)
		}

		return domain.AuthToken{}, err
	} else if username != claims.Username {
		return domain.AuthToken{}, fmt.Errorf("%w: username mismatch", domain.ErrInvalidAuthToken)
	}

	token := domain.AuthToken{
		UserID:    userID,
		Username:  username,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}

	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Unix()
	}

	return token, nil
}
