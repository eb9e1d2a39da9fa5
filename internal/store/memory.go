package store

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/google/uuid"
)

// Memory is a process-local Store for development and tests.
type Memory struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]*models.User)}
}

func (m *Memory) EnsureIndexes(ctx context.Context) error { return nil }

func (m *Memory) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	rec := *u
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.users[rec.ID] = &rec

	out := rec
	return &out, nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *Memory) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" && email == "" {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *models.User
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			// Oldest match wins so lookups are deterministic.
			if found == nil || u.CreatedAt.Before(found.CreatedAt) {
				found = u
			}
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	out := *found
	return &out, nil
}

func (m *Memory) SetRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	return m.update(id, func(u *models.User) error {
		u.RefreshToken = token
		return nil
	})
}

func (m *Memory) SetPassword(ctx context.Context, id, hash string) (*models.User, error) {
	return m.update(id, func(u *models.User) error {
		u.Password = hash
		return nil
	})
}

func (m *Memory) UpdateDetails(ctx context.Context, id string, fullName, email *string) (*models.User, error) {
	return m.update(id, func(u *models.User) error {
		if email != nil {
			for otherID, other := range m.users {
				if otherID != id && other.Email == *email {
					return ErrDuplicate
				}
			}
			u.Email = *email
		}
		if fullName != nil {
			u.FullName = *fullName
		}
		return nil
	})
}

func (m *Memory) SetAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return m.update(id, func(u *models.User) error {
		u.Avatar = url
		return nil
	})
}

func (m *Memory) SetCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return m.update(id, func(u *models.User) error {
		u.CoverImage = url
		return nil
	})
}

// update applies fn to a copy under the write lock and commits it only when fn succeeds.
func (m *Memory) update(id string, fn func(u *models.User) error) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := *u
	if err := fn(&rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = time.Now().UTC()
	m.users[id] = &rec

	out := rec
	return &out, nil
}
