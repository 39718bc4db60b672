package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/yakey01/dokterku-sub009/internal/attendance"
	"github.com/yakey01/dokterku-sub009/internal/auth"
	"github.com/yakey01/dokterku-sub009/internal/master"
	"github.com/yakey01/dokterku-sub009/internal/notification"
	"github.com/yakey01/dokterku-sub009/internal/tindakan"
	"github.com/yakey01/dokterku-sub009/internal/transport/middleware"
	"github.com/yakey01/dokterku-sub009/internal/transport/swagger"
	"github.com/yakey01/dokterku-sub009/internal/user"
)

// Handlers groups everything the router mounts so main wiring stays readable.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Master       *master.Handler
	Tindakan     *tindakan.Handler
	Attendance   *attendance.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, rbac *auth.RBACAuthorization, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		// Everything below requires an authenticated session.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Get("/users/me/security", h.User.GetSecuritySummary)
			}

			if h.Master != nil {
				pr.Get("/pasien", h.Master.GetPasien)
				pr.Get("/jenis-tindakan", h.Master.GetJenisTindakan)
				pr.Get("/shifts", h.Master.GetShiftTemplates)
			}

			if h.Tindakan != nil {
				pr.Route("/tindakan", func(tr chi.Router) {
					tr.Post("/", h.Tindakan.CreateTindakan)
					tr.Get("/", h.Tindakan.ListTindakan)
					tr.Get("/{id}", h.Tindakan.GetTindakan)
					tr.Put("/{id}", h.Tindakan.UpdateTindakan)
					tr.Delete("/{id}", h.Tindakan.DeleteTindakan)

					tr.Group(func(vr chi.Router) {
						vr.Use(rbac.RequireValidateTindakan())
						vr.Patch("/{id}/approve", h.Tindakan.ApproveTindakan)
						vr.Patch("/{id}/reject", h.Tindakan.RejectTindakan)
					})
				})
			}

			if h.Attendance != nil {
				pr.Route("/attendance", func(ar chi.Router) {
					ar.Post("/check-in", h.Attendance.CheckIn)
					ar.Post("/check-out", h.Attendance.CheckOut)
					ar.Get("/today", h.Attendance.Today)
					ar.Get("/history", h.Attendance.History)
				})

				pr.Route("/work-locations", func(wr chi.Router) {
					wr.Get("/", h.Attendance.ListWorkLocations)
					wr.Get("/{id}", h.Attendance.GetWorkLocation)

					wr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageLocations())
						mr.Post("/", h.Attendance.CreateWorkLocation)
						mr.Put("/{id}", h.Attendance.UpdateWorkLocation)
						mr.Delete("/{id}", h.Attendance.DeleteWorkLocation)
					})
				})

				pr.Route("/tolerance-rules", func(tr chi.Router) {
					tr.Use(rbac.RequireManageTolerance())
					tr.Post("/", h.Attendance.CreateToleranceRule)
					tr.Get("/", h.Attendance.ListToleranceRules)
					tr.Get("/{id}", h.Attendance.GetToleranceRule)
					tr.Put("/{id}", h.Attendance.UpdateToleranceRule)
					tr.Delete("/{id}", h.Attendance.DeleteToleranceRule)
				})
			}

			if h.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.ListNotifications)
					nr.Patch("/{id}/read", h.Notification.MarkRead)
				})
			}
		})
	})
}
