package store

import (
	"context"
	"testing"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, m *Memory, username, email string) *models.User {
	t.Helper()
	u, err := m.Create(context.Background(), &models.User{
		Username: username,
		Email:    email,
		FullName: "Test " + username,
		Avatar:   "https://cdn.example.com/" + username + ".png",
		Password: "hash",
	})
	require.NoError(t, err)
	return u
}

func TestMemory_CreateAndFind(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u := seed(t, m, "alice", "a@x.com")
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := m.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = m.FindByUsernameOrEmail(ctx, "", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = m.FindByUsernameOrEmail(ctx, "alice", "other@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = m.FindByUsernameOrEmail(ctx, "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CreateDuplicate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seed(t, m, "alice", "a@x.com")

	_, err := m.Create(ctx, &models.User{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = m.Create(ctx, &models.User{Username: "bob", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemory_RefreshTokenLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	u := seed(t, m, "alice", "a@x.com")

	updated, err := m.SetRefreshToken(ctx, u.ID, "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", updated.RefreshToken)

	updated, err = m.SetRefreshToken(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Empty(t, updated.RefreshToken)

	_, err = m.SetRefreshToken(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_UpdateDetails(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := seed(t, m, "alice", "a@x.com")
	seed(t, m, "bob", "b@x.com")

	name := "Alice Liddell"
	updated, err := m.UpdateDetails(ctx, alice.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "a@x.com", updated.Email)

	taken := "b@x.com"
	_, err = m.UpdateDetails(ctx, alice.ID, nil, &taken)
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := m.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email, "failed update must not be applied")
}

func TestMemory_MediaAndPassword(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	u := seed(t, m, "alice", "a@x.com")

	updated, err := m.SetAvatar(ctx, u.ID, "https://cdn/new.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/new.png", updated.Avatar)

	updated, err = m.SetCoverImage(ctx, u.ID, "https://cdn/cover.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/cover.png", updated.CoverImage)

	updated, err = m.SetPassword(ctx, u.ID, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.Password)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	u := seed(t, m, "alice", "a@x.com")

	u.Username = "mallory"
	got, err := m.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}
