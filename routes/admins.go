package routes

import (
	"net/http"

	"github.com/Bhavnish15/taskoPro/controllers/admins"
	"github.com/Bhavnish15/taskoPro/middleware"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router) {
	// Protected admin routes; admins log in through the normal /login and get
	// the admin role from the allow-list.
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.GetDashboardStats)).Methods(http.MethodGet)

	// User management
	adminRouter.Handle("/users", http.HandlerFunc(admins.GetUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}", http.HandlerFunc(admins.GetUserDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}/wallet", http.HandlerFunc(admins.GrantCredits)).Methods(http.MethodPut)
	adminRouter.Handle("/users/{id:[0-9]+}/vip-level", http.HandlerFunc(admins.SetUserVIPLevel)).Methods(http.MethodPut)

	// Task catalog management
	adminRouter.Handle("/tasks", http.HandlerFunc(admins.GetTasks)).Methods(http.MethodGet)
	adminRouter.Handle("/tasks", http.HandlerFunc(admins.CreateTask)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(admins.UpdateTask)).Methods(http.MethodPut)
	adminRouter.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(admins.DeleteTask)).Methods(http.MethodDelete)

	// VIP level management
	adminRouter.Handle("/vip-levels", http.HandlerFunc(admins.GetVIPLevels)).Methods(http.MethodGet)
	adminRouter.Handle("/vip-levels", http.HandlerFunc(admins.CreateVIPLevel)).Methods(http.MethodPost)
	adminRouter.Handle("/vip-levels/{id:[0-9]+}", http.HandlerFunc(admins.UpdateVIPLevel)).Methods(http.MethodPut)
	adminRouter.Handle("/vip-levels/{id:[0-9]+}", http.HandlerFunc(admins.DeleteVIPLevel)).Methods(http.MethodDelete)

	// Completion audit trail
	adminRouter.Handle("/completions", http.HandlerFunc(admins.GetCompletions)).Methods(http.MethodGet)

	// Payment review
	adminRouter.Handle("/payments", http.HandlerFunc(admins.GetPayments)).Methods(http.MethodGet)
	adminRouter.Handle("/payments/{id:[0-9]+}/approve", http.HandlerFunc(admins.ApprovePayment)).Methods(http.MethodPut)
	adminRouter.Handle("/payments/{id:[0-9]+}/reject", http.HandlerFunc(admins.RejectPayment)).Methods(http.MethodPut)

	// Application settings
	adminRouter.Handle("/settings", http.HandlerFunc(admins.GetSettings)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", http.HandlerFunc(admins.UpdateSettings)).Methods(http.MethodPut)
}
