package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/memory"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", 0)
	assert.Equal(t, 7*24*time.Hour, tokens.TTL())

	admin := &domain.AdminUser{Email: "owner@houseofgul.com", Role: domain.AdminRoleAdmin}
	admin.EnsureID()

	signed, exp, err := tokens.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, 2*time.Second)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.ID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, domain.AdminRoleAdmin, claims.Role)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	admin := &domain.AdminUser{Email: "a@b.c", Role: domain.AdminRoleAdmin}
	admin.EnsureID()
	signed, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	_, err = NewTokens("other-secret", time.Hour).Verify(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken), "wrong secret")

	_, err = tokens.Verify("not-a-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := NewTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(admin)
	require.NoError(t, err)
	_, err = tokens.Verify(old)
	assert.True(t, errors.Is(err, ErrInvalidToken), "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": admin.ID.String(), "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(none)
	assert.True(t, errors.Is(err, ErrInvalidToken), "alg none")

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": admin.ID.String()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(noExp)
	assert.True(t, errors.Is(err, ErrInvalidToken), "missing exp")
}

func TestLogin(t *testing.T) {
	repos := memory.NewRepositories(nil)
	svc := NewService(repos.AdminUser, NewTokens("secret", 0), nil)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "Owner@HouseOfGul.com", "Owner", "correct-horse")
	require.NoError(t, err)

	admin, token, _, err := svc.Login(ctx, " owner@houseofgul.com ", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "owner@houseofgul.com", admin.Email)

	_, _, _, err = svc.Login(ctx, "owner@houseofgul.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, _, err = svc.Login(ctx, "nobody@houseofgul.com", "correct-horse")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.CreateAdmin(ctx, "owner@houseofgul.com", "Again", "correct-horse")
	var conflict *apperrors.ErrConflict
	assert.True(t, errors.As(err, &conflict))

	_, err = svc.CreateAdmin(ctx, "bad", "", "short")
	var validation *apperrors.ErrValidation
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, validation.Fields, "email")
	assert.Contains(t, validation.Fields, "password")
}

func TestAuthenticateRechecksAdmin(t *testing.T) {
	repos := memory.NewRepositories(nil)
	svc := NewService(repos.AdminUser, NewTokens("secret", 0), nil)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "owner@houseofgul.com", "Owner", "correct-horse")
	require.NoError(t, err)
	_, token, _, err := svc.Login(ctx, "owner@houseofgul.com", "correct-horse")
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "owner@houseofgul.com", claims.Email)

	_, err = svc.SetActive(ctx, "owner@houseofgul.com", false)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, ErrInactiveAdmin))

	_, _, _, err = svc.Login(ctx, "owner@houseofgul.com", "correct-horse")
	assert.True(t, errors.Is(err, ErrInactiveAdmin))

	// a token for an admin that no longer exists
	ghost, _, err := svc.tokens.Issue(&domain.AdminUser{Model: domain.Model{ID: uuid.New()}, Email: "ghost@houseofgul.com"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = svc.Authenticate(ctx, "garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("pa55word!")
	require.NoError(t, err)
	assert.True(t, CheckPassword("pa55word!", hash))
	assert.False(t, CheckPassword("nope", hash))
}
