package routes

import (
	"net/http"
	"os"
	"strings"

	"github.com/Bhavnish15/taskoPro/controllers"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(controllers.HealthHandler)).Methods(http.MethodGet)

	// CORS middleware - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"https://taskopro.app",
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv != "" {
		parts := strings.Split(originsEnv, ",")
		for _, p := range parts {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Public catalog and stats
	api.Handle("/tasks", http.HandlerFunc(controllers.ListTasksHandler)).Methods(http.MethodGet)
	api.Handle("/vip-levels", http.HandlerFunc(controllers.ListVIPLevelsHandler)).Methods(http.MethodGet)
	api.Handle("/stats", http.HandlerFunc(controllers.StatsHandler)).Methods(http.MethodGet)
	api.Handle("/health", http.HandlerFunc(controllers.HealthHandler)).Methods(http.MethodGet)

	UsersRoutes(api)
	SetAdminRoutes(api)

	return r
}
