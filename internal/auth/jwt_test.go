package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/config"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(accessTTL, refreshTTL time.Duration) *TokenService {
	return NewTokenService(&config.Config{
		AccessTokenSecret:  "access-secret",
		AccessTokenExpiry:  accessTTL,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenExpiry: refreshTTL,
	})
}

var alice = &models.User{ID: "user-123", Username: "alice", Email: "a@x.com", FullName: "Alice"}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, 24*time.Hour)

	tok, err := s.IssueAccessToken(alice)
	require.NoError(t, err)

	claims, err := s.VerifyAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Alice", claims.FullName)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, 24*time.Hour)

	tok, err := s.IssueRefreshToken(alice)
	require.NoError(t, err)

	id, err := s.VerifyRefreshToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestRefreshToken_CarriesOnlyIdentity(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, 24*time.Hour)

	tok, err := s.IssueRefreshToken(alice)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["_id"])
	assert.NotContains(t, claims, "email")
	assert.NotContains(t, claims, "username")
}

func TestTokens_AreUniquePerIssue(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, 24*time.Hour)

	first, err := s.IssueRefreshToken(alice)
	require.NoError(t, err)
	second, err := s.IssueRefreshToken(alice)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokens_SecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, 24*time.Hour)

	access, err := s.IssueAccessToken(alice)
	require.NoError(t, err)
	refresh, err := s.IssueRefreshToken(alice)
	require.NoError(t, err)

	_, err = s.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	s := newTestService(-time.Second, -time.Second)

	access, err := s.IssueAccessToken(alice)
	require.NoError(t, err)
	_, err = s.VerifyAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := s.IssueRefreshToken(alice)
	require.NoError(t, err)
	_, err = s.VerifyRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	issuer := newTestService(time.Hour, time.Hour)
	verifier := NewTokenService(&config.Config{
		AccessTokenSecret:  "other-access",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenSecret: "other-refresh",
		RefreshTokenExpiry: time.Hour,
	})

	tok, err := issuer.IssueRefreshToken(alice)
	require.NoError(t, err)

	_, err = verifier.VerifyRefreshToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, time.Hour)

	for _, tok := range []string{"", "not.a.jwt", strings.Repeat("x", 40)} {
		_, err := s.VerifyRefreshToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
		_, err = s.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, time.Hour)

	claims := RefreshClaims{UserID: "user-123", RegisteredClaims: registered(time.Hour)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("refresh-secret"))
	require.NoError(t, err)

	_, err = s.VerifyRefreshToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()
	s := newTestService(time.Hour, time.Hour)

	tok, err := s.IssueRefreshToken(&models.User{})
	require.NoError(t, err)

	_, err = s.VerifyRefreshToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
