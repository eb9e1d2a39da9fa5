package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/AnshRaj112/videotube-backend/internal/auth"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/store"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

// MediaUploader turns a staged local file into a remote URL. ok is false when no
// reference could be obtained.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (url string, ok bool)
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the result of a successful login.
type Session struct {
	User *models.User `json:"user"`
	TokenPair
}

// AccountService drives registration, login, token rotation and profile changes.
type AccountService struct {
	store  store.Store
	tokens *auth.TokenService
	media  MediaUploader
	cache  *UserCache
}

func NewAccountService(st store.Store, tokens *auth.TokenService, media MediaUploader, cache *UserCache) *AccountService {
	return &AccountService{store: st, tokens: tokens, media: media, cache: cache}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := utils.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, utils.NewValidationError("All fields are required")
	}
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}
	username = utils.NormalizeUsername(username)

	if _, err := s.store.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, utils.NewConflictError("User with email or username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewInternalError("Something went wrong while registering the user", err)
	}

	if in.AvatarPath == "" {
		return nil, utils.NewValidationError("Avatar file is required")
	}
	avatar, ok := s.media.Upload(ctx, in.AvatarPath)
	if !ok {
		return nil, utils.NewUploadError("Avatar file could not be uploaded")
	}
	// cover image is optional; a failed upload leaves it empty
	coverImage, _ := s.media.Upload(ctx, in.CoverImagePath)

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.NewInternalError("Something went wrong while registering the user", err)
	}

	created, err := s.store.Create(ctx, &models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatar,
		CoverImage: coverImage,
		Password:   hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.NewConflictError("User with email or username already exists")
		}
		return nil, utils.NewInternalError("Something went wrong while registering the user", err)
	}

	// Read back so the response reflects exactly what was persisted.
	user, err := s.store.FindByID(ctx, created.ID)
	if err != nil {
		return nil, utils.NewInternalError("Something went wrong while registering the user", err)
	}

	log.Printf("✅ Registered user %s (%s)", user.Username, user.ID)
	return user.Sanitized(), nil
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	username := utils.NormalizeUsername(in.Username)
	email := utils.NormalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, utils.NewValidationError("username or email is required")
	}

	user, err := s.store.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NewNotFoundError("User does not exist")
		}
		return nil, utils.NewInternalError("Something went wrong while logging in", err)
	}

	valid, err := utils.VerifyPassword(in.Password, user.Password)
	if err != nil && !errors.Is(err, utils.ErrInvalidHash) {
		return nil, utils.NewInternalError("Something went wrong while logging in", err)
	}
	if !valid {
		return nil, utils.NewAuthError(http.StatusUnauthorized, "Invalid user credentials")
	}

	updated, pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &Session{User: updated.Sanitized(), TokenPair: *pair}, nil
}

// Logout clears the stored refresh token. Logging out twice is not an error.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	if _, err := s.store.SetRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, store.ErrNotFound) {
		return utils.NewInternalError("Something went wrong while logging out", err)
	}
	s.cache.Delete(ctx, userID)
	return nil
}

// RefreshAccessToken rotates both tokens. The presented token must be the one
// currently stored for the user, so a superseded token is rejected.
func (s *AccountService) RefreshAccessToken(ctx context.Context, incoming string) (*TokenPair, error) {
	if incoming == "" {
		return nil, utils.NewAuthError(http.StatusUnauthorized, "Unauthorized request")
	}

	userID, err := s.tokens.VerifyRefreshToken(incoming)
	if err != nil {
		return nil, utils.NewInvalidTokenError("Invalid refresh token", err)
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NewNotFoundError("Invalid refresh token")
		}
		return nil, utils.NewInternalError("Something went wrong while refreshing the token", err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(incoming), []byte(user.RefreshToken)) != 1 {
		return nil, utils.NewAuthError(http.StatusUnauthorized, "Refresh token is expired or used")
	}

	_, pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ChangePassword leaves the stored refresh token in place.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return utils.NewValidationError("Old and new password are required")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := utils.VerifyPassword(oldPassword, user.Password)
	if err != nil && !errors.Is(err, utils.ErrInvalidHash) {
		return utils.NewInternalError("Something went wrong while changing the password", err)
	}
	if !valid {
		return utils.NewAuthError(http.StatusBadRequest, "Invalid old password")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.NewInternalError("Something went wrong while changing the password", err)
	}
	if _, err := s.store.SetPassword(ctx, userID, hash); err != nil {
		return s.mutationError(err, "Something went wrong while changing the password")
	}
	s.cache.Delete(ctx, userID)
	return nil
}

func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := s.cache.Get(ctx, userID); ok {
		return u, nil
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, user)
	return user.Sanitized(), nil
}

// UpdateDetails changes whichever of fullName and email is non-empty.
func (s *AccountService) UpdateDetails(ctx context.Context, userID string, fullName, email *string) (*models.User, error) {
	var namePtr, emailPtr *string
	if fullName != nil {
		if v := strings.TrimSpace(*fullName); v != "" {
			namePtr = &v
		}
	}
	if email != nil {
		if v := utils.NormalizeEmail(*email); v != "" {
			emailPtr = &v
		}
	}
	if namePtr == nil && emailPtr == nil {
		return nil, utils.NewValidationError("fullName or email is required")
	}

	user, err := s.store.UpdateDetails(ctx, userID, namePtr, emailPtr)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.NewConflictError("Email is already in use")
		}
		return nil, s.mutationError(err, "Something went wrong while updating account details")
	}
	s.cache.Delete(ctx, userID)
	return user.Sanitized(), nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, utils.NewValidationError("Avatar file is missing")
	}
	url, ok := s.media.Upload(ctx, localPath)
	if !ok {
		return nil, utils.NewUploadError("Error while uploading avatar")
	}

	user, err := s.store.SetAvatar(ctx, userID, url)
	if err != nil {
		return nil, s.mutationError(err, "Something went wrong while updating the avatar")
	}
	s.cache.Delete(ctx, userID)
	return user.Sanitized(), nil
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, utils.NewValidationError("Cover image file is missing")
	}
	url, ok := s.media.Upload(ctx, localPath)
	if !ok {
		return nil, utils.NewUploadError("Error while uploading cover image")
	}

	user, err := s.store.SetCoverImage(ctx, userID, url)
	if err != nil {
		return nil, s.mutationError(err, "Something went wrong while updating the cover image")
	}
	s.cache.Delete(ctx, userID)
	return user.Sanitized(), nil
}

// ResolveAccessToken verifies an access token and loads the user it names.
func (s *AccountService) ResolveAccessToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, utils.NewAuthError(http.StatusUnauthorized, "Unauthorized request")
	}

	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, utils.NewInvalidTokenError("Invalid access token", err)
	}

	user, err := s.CurrentUser(ctx, claims.UserID)
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return nil, utils.NewInvalidTokenError("Invalid access token", err)
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) issueTokens(ctx context.Context, user *models.User) (*models.User, *TokenPair, error) {
	const msg = "Something went wrong while generating refresh and access token"

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, nil, utils.NewInternalError(msg, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, nil, utils.NewInternalError(msg, err)
	}

	updated, err := s.store.SetRefreshToken(ctx, user.ID, refresh)
	if err != nil {
		return nil, nil, utils.NewInternalError(msg, err)
	}
	return updated, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AccountService) findUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, utils.NewInternalError("Something went wrong while loading the user", err)
	}
	return user, nil
}

func (s *AccountService) mutationError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.NewNotFoundError("User not found")
	}
	return utils.NewInternalError(msg, err)
}
