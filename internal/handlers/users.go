package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/AnshRaj112/videotube-backend/internal/config"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/pkg/clientip"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

// UserHandler serves the /users endpoints.
type UserHandler struct {
	accounts   *services.AccountService
	files      stager
	trustProxy bool
}

func NewUserHandler(accounts *services.AccountService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		accounts:   accounts,
		files:      stager{dir: cfg.UploadTempDir, maxBytes: cfg.MaxUploadBytes},
		trustProxy: cfg.TrustProxy,
	}
}

// Register handles POST /users/register (multipart: fullName, email, username,
// password, avatar, coverImage).
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.files.parseMultipart(w, r); err != nil {
		utils.WriteError(w, err)
		return
	}
	defer removeForm(r)

	avatarPath, err := h.files.stage(r, "avatar")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	coverPath, err := h.files.stage(r, "coverImage")
	if err != nil {
		cleanup(avatarPath)
		utils.WriteError(w, err)
		return
	}
	defer cleanup(avatarPath, coverPath)

	user, err := h.accounts.Register(r.Context(), services.RegisterInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, user, "User registered successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := h.files.readFields(w, r, "username", "email", "password")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	session, err := h.accounts.Login(r.Context(), services.LoginInput{
		Username: fields["username"],
		Email:    fields["email"],
		Password: fields["password"],
	})
	if err != nil {
		if k := utils.KindOf(err); k == utils.KindAuth || k == utils.KindNotFound {
			log.Printf("WARNING: failed login for %q/%q from %s: %v",
				fields["username"], fields["email"], clientip.FromRequest(r, h.trustProxy), err)
		}
		utils.WriteError(w, err)
		return
	}

	setAuthCookies(w, session.AccessToken, session.RefreshToken)
	utils.WriteSuccess(w, http.StatusOK, session, "User logged in successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.accounts.Logout(r.Context(), user.ID); err != nil {
		utils.WriteError(w, err)
		return
	}

	clearAuthCookies(w)
	utils.WriteSuccess(w, http.StatusOK, nil, "User logged out")
}

// RefreshAccessToken reads the refresh token from its cookie, falling back to a
// refreshToken body field for clients that cannot send cookies.
func (h *UserHandler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	incoming := ""
	if c, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		incoming = c.Value
	}
	if incoming == "" {
		fields, err := h.files.readFields(w, r, "refreshToken")
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		incoming = fields["refreshToken"]
	}

	pair, err := h.accounts.RefreshAccessToken(r.Context(), incoming)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	utils.WriteSuccess(w, http.StatusOK, pair, "Access token refreshed")
}

// ChangePassword accepts oldPassword or currentPassword for the existing password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	fields, err := h.files.readFields(w, r, "oldPassword", "currentPassword", "newPassword")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	oldPassword := fields["oldPassword"]
	if oldPassword == "" {
		oldPassword = fields["currentPassword"]
	}

	if err := h.accounts.ChangePassword(r.Context(), user.ID, oldPassword, fields["newPassword"]); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, nil, "Password changed successfully")
}

func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	utils.WriteSuccess(w, http.StatusOK, user, "Current user fetched successfully")
}

func (h *UserHandler) UpdateAccountDetails(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	fields, err := h.files.readFields(w, r, "fullName", "email")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var fullName, email *string
	if v, ok := fields["fullName"]; ok {
		fullName = &v
	}
	if v, ok := fields["email"]; ok {
		email = &v
	}

	updated, err := h.accounts.UpdateDetails(r.Context(), user.ID, fullName, email)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "avatar", h.accounts.UpdateAvatar, "Avatar image updated successfully")
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "coverImage", h.accounts.UpdateCoverImage, "Cover image updated successfully")
}

type mediaUpdate func(ctx context.Context, userID, localPath string) (*models.User, error)

func (h *UserHandler) updateMedia(w http.ResponseWriter, r *http.Request, field string, update mediaUpdate, message string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.files.parseMultipart(w, r); err != nil {
		utils.WriteError(w, err)
		return
	}
	defer removeForm(r)

	path, err := h.files.stage(r, field)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	defer cleanup(path)

	updated, err := update(r.Context(), user.ID, path)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated, message)
}

func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, utils.NewAuthError(http.StatusUnauthorized, "Unauthorized request"))
		return nil, false
	}
	return user, true
}

// authCookie is HttpOnly and Secure; SameSite=None lets a frontend on another
// origin send it with credentialed requests.
func authCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, authCookie(middleware.AccessTokenCookie, accessToken))
	http.SetCookie(w, authCookie(middleware.RefreshTokenCookie, refreshToken))
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c := authCookie(name, "")
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}
