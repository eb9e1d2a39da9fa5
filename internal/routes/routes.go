package routes

import (
	"net/http"

	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// Routes lists every registered endpoint, for the startup log.
var Routes = []string{
	"GET  /health",
	"POST /users/register",
	"POST /users/login",
	"POST /users/refresh-token",
	"POST /users/logout",
	"POST /users/change-password",
	"GET  /users/getDetails",
	"POST /users/update-details",
	"POST /users/update-avatar",
	"POST /users/update-cover",
}

// SetupRoutes mounts the user routes. verify guards every route that needs a
// logged-in user.
func SetupRoutes(r chi.Router, users *handlers.UserHandler, verify func(http.Handler) http.Handler) {
	r.Get("/health", handlers.Health)

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", users.Register)
		r.Post("/login", users.Login)
		r.Post("/refresh-token", users.RefreshAccessToken)

		// secured routes
		r.Group(func(r chi.Router) {
			r.Use(verify)
			r.Post("/logout", users.Logout)
			r.Post("/change-password", users.ChangePassword)
			r.Get("/getDetails", users.GetCurrentUser)
			r.Post("/update-details", users.UpdateAccountDetails)
			r.Post("/update-avatar", users.UpdateAvatar)
			r.Post("/update-cover", users.UpdateCoverImage)
		})
	})
}
