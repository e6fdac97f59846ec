package authsvc_test

import (
	"context"
	"crypto/rsa"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/svc/authsvc"
)

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users map[string]*domain.User
	err   error
	m     sync.Mutex
}

func (m *mockUserRepository) CreateUser(_ context.Context, username string, passwordHash string) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	if _, exists := m.users[username]; exists {
		return 0, domain.ErrUserAlreadyExists
	}
	id := int64(len(m.users) + 1)
	m.users[username] = &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
	}
	return id, nil
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	user, exists := m.users[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.err = err
}

func newMockUserRepo() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

var ErrRepoError = errors.New("repository error")

//nolint:gochecknoglobals
var testSigningKey = sync.OnceValues(func() (*rsa.PrivateKey, error) {
	return authsvc.GeneratePrivateKey(authsvc.DefaultKeySize)
})

func setupTestService(t *testing.T) (*authsvc.AuthService, *mockUserRepository) {
	t.Helper()

	signingKey, err := testSigningKey()
	require.NoError(t, err, "failed to generate signing key")

	mockRepo := newMockUserRepo()

	svc := &authsvc.AuthService{
		Config:     authsvc.AuthConfig{TokenDuration: 3600},
		UserRepo:   mockRepo,
		Log:        logging.GetLogger("test.authsvc"),
		SigningKey: signingKey,
	}

	return svc, mockRepo
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	first := authsvc.HashPassword("correct")
	second := authsvc.HashPassword("correct")

	assert.Equal(t, first, second, "hashing must be deterministic")
	assert.NotEqual(t, "correct", first)
	assert.Len(t, first, 64)
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", authsvc.HashPassword("abc"))
	assert.NotEqual(t, first, authsvc.HashPassword("Correct"))
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()

	assert.NoError(t, authsvc.ValidateCredentials("alice", "pw"))
	assert.ErrorIs(t, authsvc.ValidateCredentials("  ", "pw"), domain.ErrEmptyUsername)
	assert.ErrorIs(t, authsvc.ValidateCredentials("alice", ""), domain.ErrEmptyPassword)

	err := authsvc.ValidateCredentials("", "")
	assert.ErrorIs(t, err, domain.ErrEmptyUsername)
	assert.ErrorIs(t, err, domain.ErrEmptyPassword)
}

//nolint:paralleltest
func TestAuthService_RegisterUser(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful registration",
			username: "newuser",
			password: "password123",
			wantErr:  nil,
		},
		{
			name:     "duplicate username",
			username: "existinguser",
			password: "password123",
			wantErr:  domain.ErrUserAlreadyExists,
		},
		{
			name:     "repository error",
			username: "erroruser",
			password: "password123",
			repoErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "duplicate username" {
				require.NoError(t, svc.RegisterUser(context.Background(), tt.username, "oldpass"))
			}
			mockRepo.setErr(tt.repoErr)

			err := svc.RegisterUser(context.Background(), tt.username, tt.password)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, authsvc.HashPassword(tt.password), mockRepo.users[tt.username].PasswordHash)
				assert.NotEqual(t, tt.password, mockRepo.users[tt.username].PasswordHash)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_VerifyCredentials(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)
	require.NoError(t, svc.RegisterUser(context.Background(), "alice", "correct"))

	tests := []struct {
		name     string
		username string
		password string
		repoErr  error
		want     domain.AuthResult
		wantErr  error
	}{
		{name: "success", username: "alice", password: "correct", want: domain.AuthSuccess},
		{name: "incorrect password", username: "alice", password: "wrong", want: domain.AuthIncorrectPassword},
		{name: "username is case-sensitive", username: "Alice", password: "correct", want: domain.AuthUserNotFound},
		{name: "user not found", username: "bob", password: "anything", want: domain.AuthUserNotFound},
		{name: "storage error", username: "alice", password: "correct", repoErr: ErrRepoError, want: domain.AuthStorageError, wantErr: ErrRepoError},
	}

	//nolint:paralleltest
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.setErr(tt.repoErr)
			defer mockRepo.setErr(nil)

			got, err := svc.VerifyCredentials(context.Background(), tt.username, tt.password)

			assert.Equal(t, tt.want, got, "got %s", got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Lookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupTestService(t)
	require.NoError(t, svc.RegisterUser(ctx, "carol", "pw1"))

	id, err := svc.GetUserID(ctx, "carol")
	require.NoError(t, err)

	name, err := svc.GetUsernameByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "carol", name)

	_, err = svc.GetUserID(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.GetUsernameByID(ctx, id+1)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupTestService(t)
	require.NoError(t, svc.RegisterUser(ctx, "testuser", "testpass123"))

	tests := []struct {
		name     string
		username string
		password string
		want     domain.AuthResult
	}{
		{name: "successful login", username: "testuser", password: "testpass123", want: domain.AuthSuccess},
		{name: "wrong password", username: "testuser", password: "wrongpass", want: domain.AuthIncorrectPassword},
		{name: "user not found", username: "nonexistent", password: "anypass", want: domain.AuthUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, result, err := svc.Login(ctx, tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)

			if tt.want != domain.AuthSuccess {
				assert.Empty(t, token)
				return
			}

			session, err := svc.ValidateToken(ctx, token)
			require.NoError(t, err, "Login() generated invalid token")
			assert.Equal(t, "testuser", session.Username)
			assert.Greater(t, session.ExpiresAt, session.IssuedAt)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mockRepo := setupTestService(t)
	require.NoError(t, svc.RegisterUser(ctx, "testuser", "testpass"))

	validToken, _, err := svc.Login(ctx, "testuser", "testpass")
	require.NoError(t, err)

	expiredSvc := &authsvc.AuthService{
		Config:     authsvc.AuthConfig{TokenDuration: -60},
		UserRepo:   mockRepo,
		Log:        logging.NewNopLogger(),
		SigningKey: svc.SigningKey,
	}
	expiredToken, _, err := expiredSvc.Login(ctx, "testuser", "testpass")
	require.NoError(t, err)

	otherKey, err := authsvc.GeneratePrivateKey(1024)
	require.NoError(t, err)
	foreignSvc := &authsvc.AuthService{
		Config:     svc.Config,
		UserRepo:   mockRepo,
		Log:        logging.NewNopLogger(),
		SigningKey: otherKey,
	}
	foreignToken, _, err := foreignSvc.Login(ctx, "testuser", "testpass")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: validToken},
		{name: "empty token", token: "", wantErr: domain.ErrNoAuthToken},
		{name: "invalid token format", token: "invalid-token", wantErr: domain.ErrInvalidAuthToken},
		{name: "expired token", token: expiredToken, wantErr: domain.ErrInvalidAuthToken},
		{name: "signed by another key", token: foreignToken, wantErr: domain.ErrInvalidAuthToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := svc.ValidateToken(ctx, tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "testuser", token.Username)
			assert.Equal(t, int64(1), token.UserID)
		})
	}
}

func TestAuthService_ValidateTokenUnknownUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mockRepo := setupTestService(t)
	require.NoError(t, svc.RegisterUser(ctx, "ghost", "pw"))

	token, _, err := svc.Login(ctx, "ghost", "pw")
	require.NoError(t, err)

	mockRepo.m.Lock()
	delete(mockRepo.users, "ghost")
	mockRepo.m.Unlock()

	_, err = svc.ValidateToken(ctx, token)
	require.ErrorIs(t, err, domain.ErrInvalidAuthToken)
}

func TestGetPrivateKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "campuslink.key")

	created, err := authsvc.GetPrivateKey(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := authsvc.GetPrivateKey(path)
	require.NoError(t, err)
	assert.True(t, created.Equal(loaded), "reloaded key differs from generated key")

	garbage := filepath.Join(t.TempDir(), "garbage.key")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o600))

	_, err = authsvc.GetPrivateKey(garbage)
	require.ErrorIs(t, err, authsvc.ErrInvalidKey)
}
