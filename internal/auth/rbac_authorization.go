package auth

import (
	"context"
	"log/slog"
	"net/http"
)

type RBACAuthorization struct {
	authorizer PermissionAuthorizer
	logger     *slog.Logger
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		authorizer: authorizer,
		logger:     logger,
	}
}

func (ra *RBACAuthorization) requireCheck(check func(ctx context.Context, perms []string) (bool, error), label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := check(r.Context(), user.Permissions)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID, "check", label)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"check", label,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireValidateTindakan() func(http.Handler) http.Handler {
	return ra.requireCheck(ra.authorizer.CanValidateTindakan, "validasi_tindakan")
}

func (ra *RBACAuthorization) RequireManageLocations() func(http.Handler) http.Handler {
	return ra.requireCheck(ra.authorizer.CanManageLocations, "kelola_lokasi")
}

func (ra *RBACAuthorization) RequireManageTolerance() func(http.Handler) http.Handler {
	return ra.requireCheck(ra.authorizer.CanManageTolerance, "kelola_toleransi")
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.requireCheck(ra.authorizer.IsAdmin, "admin")
}

func (ra *RBACAuthorization) RequirePermission(permission string) func(http.Handler) http.Handler {
	return ra.requireCheck(func(ctx context.Context, perms []string) (bool, error) {
		return ra.authorizer.HasPermission(ctx, perms, permission)
	}, permission)
}
