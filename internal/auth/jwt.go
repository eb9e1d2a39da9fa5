// Package auth issues and verifies the access/refresh token pair. The two tokens
// are signed with independent secrets and carry independent lifetimes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/config"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken wraps every signature, expiry or format failure.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims carry the user identity and the minimal profile fields.
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the user identity.
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

type TokenService struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		accessTTL:     cfg.AccessTokenExpiry,
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		refreshTTL:    cfg.RefreshTokenExpiry,
	}
}

func (s *TokenService) IssueAccessToken(u *models.User) (string, error) {
	claims := AccessClaims{
		UserID:           u.ID,
		Email:            u.Email,
		Username:         u.Username,
		FullName:         u.FullName,
		RegisteredClaims: registered(s.accessTTL),
	}
	return sign(claims, s.accessSecret)
}

func (s *TokenService) IssueRefreshToken(u *models.User) (string, error) {
	claims := RefreshClaims{
		UserID:           u.ID,
		RegisteredClaims: registered(s.refreshTTL),
	}
	return sign(claims, s.refreshSecret)
}

func (s *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(token, claims, s.accessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// VerifyRefreshToken returns the user id encoded in a valid refresh token.
func (s *TokenService) VerifyRefreshToken(token string) (string, error) {
	claims := &RefreshClaims{}
	if err := parse(token, claims, s.refreshSecret); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.UserID, nil
}

// registered stamps a random jti so two tokens issued in the same second still differ.
func registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func parse(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
