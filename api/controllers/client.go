package controllers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/gymstackhq/gymstack-backend/api/middleware"
	"github.com/gymstackhq/gymstack-backend/api/responses"
	"github.com/gymstackhq/gymstack-backend/api/validators"
	"github.com/gymstackhq/gymstack-backend/internal/clientportal"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
)

// tenantAccountID pulls the resolved client identity out of the request
// context. It is only empty when a route is wired without RequireClient.
func tenantAccountID(r *http.Request) (uuid.UUID, error) {
	access := middleware.ClientAccessFromContext(r.Context())
	if access == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "client context missing")
	}
	return access.AccountID, nil
}

// ClientProfile returns the calling gym's own account record.
func ClientProfile(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Profile(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ClientProfileUpdate adjusts the gym's own contact details.
func ClientProfileUpdate(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientportal.UpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), accountID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ClientDashboard returns the gym's landing summary.
func ClientDashboard(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

// ClientSubscriptions returns the gym's subscription history.
func ClientSubscriptions(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subs, err := svc.Subscriptions(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, subs)
	}
}

// ClientMembersExpiring buckets members whose plans run out soon.
func ClientMembersExpiring(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expiring, err := svc.ExpiringMembers(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, expiring)
	}
}

// ClientRevenue returns the yearly revenue breakdown.
func ClientRevenue(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		revenue, err := svc.Revenue(r.Context(), accountID, validators.QueryString(r, "year"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, revenue)
	}
}

// ClientSubscriptionStatus reports how many days the gym has left.
func ClientSubscriptionStatus(svc clientportal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.SubscriptionStatus(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}

// ClientDashboardExport streams the gym's member roster as CSV.
func ClientDashboardExport(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		accountID, err := tenantAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("members-%s.csv", dates.Today())
		responses.WriteCSV(r.Context(), logg, w, filename, func(out http.ResponseWriter) error {
			return svc.ExportCSV(r.Context(), accountID, out)
		})
	}
}
