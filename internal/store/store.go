// Package store persists user records. Every mutation targets a single record by
// id and is applied atomically by the backing database; the updated record is returned.
package store

import (
	"context"
	"errors"

	"github.com/AnshRaj112/videotube-backend/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a write would break username or email uniqueness.
	ErrDuplicate = errors.New("username or email already exists")
)

type Store interface {
	// Create inserts u and returns it with ID and timestamps set.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByUsernameOrEmail matches on whichever of username or email is non-empty.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)

	// SetRefreshToken overwrites the stored refresh token; an empty token clears it.
	SetRefreshToken(ctx context.Context, id, token string) (*models.User, error)
	SetPassword(ctx context.Context, id, hash string) (*models.User, error)
	// UpdateDetails changes only the non-nil fields.
	UpdateDetails(ctx context.Context, id string, fullName, email *string) (*models.User, error)
	SetAvatar(ctx context.Context, id, url string) (*models.User, error)
	SetCoverImage(ctx context.Context, id, url string) (*models.User, error)

	// EnsureIndexes creates the schema or indexes backing uniqueness.
	EnsureIndexes(ctx context.Context) error
}
