package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/wearcast/pkg/errors"
)

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repo, newTestLogger())

	view, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "User@Example.com",
		Password: "pass1234",
		Nickname: "CodeStar",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.Equal(t, "CodeStar", view.Nickname)
	require.NotZero(t, view.ID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.Email, resp.User.Email)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.Equal(t, view.Email, claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, resp.User.Email, refreshed.User.Email)
	require.Equal(t, "CodeStar", refreshed.User.Nickname)
}

func TestService_DuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repo, newTestLogger())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "user@example.com",
		Password: "pass1234",
		Nickname: "NickOne",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "user@example.com",
		Password: "pass12345",
		Nickname: "NickTwo",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeEmailExists))
}

func TestService_RejectsInvalidRegistration(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret"}, newMemoryRepo(), newTestLogger())
	cases := []RegisterRequest{
		{Email: "not-an-email", Password: "pass1234", Nickname: "Nick"},
		{Email: "Nick <nick@example.com>", Password: "pass1234", Nickname: "Nick"},
		{Email: "nick@example.com", Password: "short", Nickname: "Nick"},
		{Email: "nick@example.com", Password: "pass1234", Nickname: "Nick99"},
		{Email: "nick@example.com", Password: "pass1234", Nickname: "Supercalifragilistic"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "%+v", req)
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret"}, newMemoryRepo(), newTestLogger())
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "pass1234", Nickname: "Ann"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "wrongpass"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@b.co", Password: "pass1234"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
}

func TestService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", Issuer: "wearcast"}, newMemoryRepo(), newTestLogger())
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "pass1234", Nickname: "Ann"})
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
	_, err = svc.Refresh(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	other := NewService(Config{Secret: "other-secret", Issuer: "wearcast"}, newMemoryRepo(), newTestLogger())
	_, err = other.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestService_ExpiredToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Minute}, repo, newTestLogger()).(*service)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.tokens.now = func() time.Time { return now }

	user, err := repo.Create(context.Background(), "a@b.co", "Ann", "x")
	require.NoError(t, err)
	resp, err := svc.issue(user)
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", profile.Nickname)

	now = now.Add(2 * time.Minute)
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryRepo struct {
	users map[int64]User
	seq   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User)}
}

func (m *memoryRepo) Create(_ context.Context, email, nickname, passwordHash string) (User, error) {
	m.seq++
	user := User{
		ID:           m.seq,
		Email:        email,
		Nickname:     nickname,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}
