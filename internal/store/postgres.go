package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, created_at, updated_at, username, email, full_name, avatar, cover_image, password_hash, refresh_token`

// Postgres stores users in a single "users" table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureIndexes creates the users table and its indexes if they don't exist.
func (s *Postgres) EnsureIndexes(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			username VARCHAR(20) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			full_name VARCHAR(255) NOT NULL,
			avatar TEXT NOT NULL,
			cover_image TEXT NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			refresh_token TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init users table: %w", err)
		}
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, u *models.User) (*models.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, username, email, full_name, avatar, cover_image, password_hash, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+userColumns,
		id, now, now, u.Username, u.Email, u.FullName, u.Avatar, u.CoverImage, u.Password, nullString(u.RefreshToken))
	return scanUser(row, "insert user")
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, parsed)
	return scanUser(row, "find user")
}

func (s *Postgres) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" && email == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1::text <> '' AND username = $1::text) OR ($2::text <> '' AND email = $2::text)
		ORDER BY created_at ASC
		LIMIT 1`, username, email)
	return scanUser(row, "find user")
}

func (s *Postgres) SetRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	return s.update(ctx, id, `refresh_token = $2`, nullString(token))
}

func (s *Postgres) SetPassword(ctx context.Context, id, hash string) (*models.User, error) {
	return s.update(ctx, id, `password_hash = $2`, hash)
}

func (s *Postgres) UpdateDetails(ctx context.Context, id string, fullName, email *string) (*models.User, error) {
	return s.update(ctx, id, `full_name = COALESCE($2, full_name), email = COALESCE($3, email)`,
		nullPtr(fullName), nullPtr(email))
}

func (s *Postgres) SetAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return s.update(ctx, id, `avatar = $2`, url)
}

func (s *Postgres) SetCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return s.update(ctx, id, `cover_image = $2`, url)
}

// update runs a single-row UPDATE ... RETURNING; assignments use $2.. for args.
func (s *Postgres) update(ctx context.Context, id, assignments string, args ...interface{}) (*models.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	params := append([]interface{}{parsed}, args...)
	params = append(params, time.Now().UTC())

	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = $%d WHERE id = $1 RETURNING %s`,
		assignments, len(params), userColumns)
	return scanUser(s.db.QueryRowContext(ctx, query, params...), "update user")
}

func scanUser(row *sql.Row, op string) (*models.User, error) {
	var (
		u            models.User
		refreshToken sql.NullString
	)
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.FullName,
		&u.Avatar, &u.CoverImage, &u.Password, &refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.RefreshToken = refreshToken.String
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
