package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prasetyadi/hr-platform/internal"
)

type ctxKey string

// ContextUserKey holds the authenticated *User (with resolved permissions)
// placed by the auth middleware.
const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// Guard gates protected operations on a resolved permission set. It must run
// strictly after session validation: a missing identity is Unauthenticated,
// not Forbidden.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger}
}

// RequireAll passes iff every required permission is in the resolved set.
func (g *Guard) RequireAll(resolved PermissionSet, required ...Permission) error {
	if !resolved.ContainsAll(required...) {
		return internal.ErrForbidden
	}
	return nil
}

// RequireAny passes iff at least one required permission is in the resolved set.
func (g *Guard) RequireAny(resolved PermissionSet, required ...Permission) error {
	if !resolved.ContainsAny(required...) {
		return internal.ErrForbidden
	}
	return nil
}

// RequireOne is RequireAll with a singleton.
func (g *Guard) RequireOne(resolved PermissionSet, p Permission) error {
	return g.RequireAll(resolved, p)
}

// RequirePermission builds middleware that denies the request unless the
// authenticated user's resolved set contains the permission.
func (g *Guard) RequirePermission(p Permission) func(http.Handler) http.Handler {
	return g.middleware(func(resolved PermissionSet) error {
		return g.RequireOne(resolved, p)
	})
}

// RequireAnyPermission builds middleware passing on any of the permissions.
func (g *Guard) RequireAnyPermission(perms ...Permission) func(http.Handler) http.Handler {
	return g.middleware(func(resolved PermissionSet) error {
		return g.RequireAny(resolved, perms...)
	})
}

// RequireAllPermissions builds middleware requiring every permission.
func (g *Guard) RequireAllPermissions(perms ...Permission) func(http.Handler) http.Handler {
	return g.middleware(func(resolved PermissionSet) error {
		return g.RequireAll(resolved, perms...)
	})
}

func (g *Guard) middleware(check func(PermissionSet) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.logger.Warn("guard invoked without authenticated user")
				writeGuardError(w, internal.ErrMissingToken)
				return
			}

			if err := check(user.Permissions); err != nil {
				g.logger.WarnContext(r.Context(), "access denied",
					"user_id", user.ID,
					"user_permissions", user.Permissions)
				writeGuardError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeGuardError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
