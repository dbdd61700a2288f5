package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/prasetyadi/hr-platform/internal/auth"
	"github.com/prasetyadi/hr-platform/internal/leave"
	"github.com/prasetyadi/hr-platform/internal/personnel"
	"github.com/prasetyadi/hr-platform/internal/transport/middleware"
	"github.com/prasetyadi/hr-platform/internal/transport/swagger"
	"github.com/prasetyadi/hr-platform/internal/user"
)

// RegisterAllRoutes wires every handler onto the router. Guards run after the
// auth middleware, so a request is always identified before any permission
// check: missing identity is a 401, failed check a 403.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	guard *auth.Guard,
	userHandler *user.Handler,
	personnelHandler *personnel.Handler,
	leaveHandler *leave.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", userHandler.GetCurrentUser)
			pr.Get("/personnel/me", personnelHandler.GetMe)

			pr.Route("/personnel", func(er chi.Router) {
				er.With(guard.RequirePermission(auth.PermissionEmployeeRead)).
					Get("/", personnelHandler.ListPersonnel)
				er.With(guard.RequirePermission(auth.PermissionEmployeeRead)).
					Get("/{id}", personnelHandler.GetPersonnel)
				er.With(guard.RequirePermission(auth.PermissionEmployeeCreate)).
					Post("/", personnelHandler.CreatePersonnel)
				er.With(guard.RequirePermission(auth.PermissionEmployeeUpdate)).
					Patch("/{id}", personnelHandler.UpdatePersonnel)
			})

			pr.Route("/leave/applications", func(er chi.Router) {
				// Owners file, list, edit and cancel their own rows.
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestCreate)).
					Post("/", leaveHandler.CreateApplication)
				er.Get("/my", leaveHandler.GetMyApplications)
				er.Get("/{id}", leaveHandler.GetApplication)
				// Ownership is checked in the service, so editing and
				// cancelling one's own pending row needs no extra grant.
				er.Patch("/{id}", leaveHandler.UpdateApplication)
				er.Delete("/{id}", leaveHandler.CancelApplication)

				// Processor queue and transitions.
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestRead)).
					Get("/pending", leaveHandler.GetPendingApplications)
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestUpdate)).
					Patch("/{id}/approve", leaveHandler.ApproveApplication)
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestUpdate)).
					Patch("/{id}/reject", leaveHandler.RejectApplication)
			})

			pr.Route("/leave/balances", func(er chi.Router) {
				er.Get("/my", leaveHandler.GetMyBalances)
				er.With(guard.RequirePermission(auth.PermissionLeaveBalanceRead)).
					Get("/{personnelID}", leaveHandler.GetBalancesForPersonnel)
				er.With(guard.RequirePermission(auth.PermissionLeaveBalanceCreate)).
					Post("/", leaveHandler.InitializeBalance)
			})

			pr.Route("/leave/types", func(er chi.Router) {
				er.Get("/", leaveHandler.GetLeaveTypes)
				er.With(guard.RequirePermission(auth.PermissionLeaveTypeRead)).
					Get("/all", leaveHandler.GetAllLeaveTypes)
				er.With(guard.RequirePermission(auth.PermissionLeaveTypeCreate)).
					Post("/", leaveHandler.CreateLeaveType)
				er.With(guard.RequirePermission(auth.PermissionLeaveTypeUpdate)).
					Patch("/{id}", leaveHandler.UpdateLeaveType)
			})

			pr.Route("/leave/monetizations", func(er chi.Router) {
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestCreate)).
					Post("/", leaveHandler.CreateMonetization)
				er.Get("/my", leaveHandler.GetMyMonetizations)
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestRead)).
					Get("/pending", leaveHandler.GetPendingMonetizations)
				er.With(guard.RequirePermission(auth.PermissionLeaveRequestUpdate)).
					Patch("/{id}/approve", leaveHandler.ApproveMonetization)
			})

			pr.Route("/roles", func(er chi.Router) {
				er.With(guard.RequirePermission(auth.PermissionRoleRead)).
					Get("/", userHandler.ListRoles)
				er.With(guard.RequirePermission(auth.PermissionRoleUpdate)).
					Post("/assign", userHandler.AssignRole)
			})

			pr.Route("/users", func(er chi.Router) {
				er.With(guard.RequirePermission(auth.PermissionUserRead)).
					Get("/{id}/roles", userHandler.GetUserRoles)
				er.With(guard.RequirePermission(auth.PermissionRoleUpdate)).
					Delete("/{id}/roles/{roleID}", userHandler.RevokeRole)
			})
		})
	})
}
