package routes

import (
	"net/http"
	"time"

	"github.com/Bhavnish15/taskoPro/controllers/auth"
	"github.com/Bhavnish15/taskoPro/controllers/users"
	"github.com/Bhavnish15/taskoPro/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the auth and user-facing routes on the given subrouter.
func UsersRoutes(api *mux.Router) {
	// Rate limiter login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session: 120 read / 60 write per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	taskController := users.NewTaskController()

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)

	// User info (read)
	api.Handle("/users/info", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.InfoHandler)))).Methods(http.MethodGet)
	api.Handle("/users/completions", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CompletionsHandler)))).Methods(http.MethodGet)

	// Task timer lifecycle
	api.Handle("/users/tasks/active", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.ActiveHandler)))).Methods(http.MethodGet)
	api.Handle("/users/tasks/{id:[0-9]+}/start", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.StartHandler)))).Methods(http.MethodPost)
	api.Handle("/users/tasks/{id:[0-9]+}/pause", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.PauseHandler)))).Methods(http.MethodPost)
	api.Handle("/users/tasks/{id:[0-9]+}/resume", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.ResumeHandler)))).Methods(http.MethodPost)
	api.Handle("/users/tasks/{id:[0-9]+}/progress", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.ProgressHandler)))).Methods(http.MethodGet)
	api.Handle("/users/tasks/{id:[0-9]+}/claim", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.ClaimHandler)))).Methods(http.MethodPost)
	api.Handle("/users/tasks/{id:[0-9]+}/abandon", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(taskController.AbandonHandler)))).Methods(http.MethodPost)

	// VIP upgrades
	api.Handle("/users/upgrade", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpgradeHandler)))).Methods(http.MethodPost)
	api.Handle("/users/upgrade/payment", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpgradePaymentHandler)))).Methods(http.MethodPost)
}
