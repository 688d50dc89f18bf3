package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gymstackhq/gymstack-backend/api/responses"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
)

// RequireSuperAdmin rejects any request whose authenticated role is not
// super_admin.
func RequireSuperAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(enums.RoleSuperAdmin) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "super admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireClient admits only client accounts, and consults storage on every
// request so that an admin block or an expired subscription locks the
// account out immediately. The resolved tenancy is placed in the request
// context for handlers to read.
func RequireClient(resolver *subscriptions.AccessResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(enums.RoleClient) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "client access required"))
				return
			}

			accountID, err := uuid.Parse(AccountIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
				return
			}

			access, err := resolver.Resolve(r.Context(), accountID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClientAccess(r.Context(), access)))
		})
	}
}

// RequireAuthenticated admits super admins unconditionally and runs client
// accounts through the full client admission check. Any other role is
// rejected.
func RequireAuthenticated(resolver *subscriptions.AccessResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	client := RequireClient(resolver, logg)
	return func(next http.Handler) http.Handler {
		guarded := client(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch RoleFromContext(r.Context()) {
			case string(enums.RoleSuperAdmin):
				next.ServeHTTP(w, r)
			case string(enums.RoleClient):
				guarded.ServeHTTP(w, r)
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "access denied"))
			}
		})
	}
}
