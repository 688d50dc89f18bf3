package controllers

import (
	"fmt"
	"net/http"

	"github.com/gymstackhq/gymstack-backend/api/responses"
	"github.com/gymstackhq/gymstack-backend/api/validators"
	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/admin"
	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
)

// AdminDashboard returns the platform-wide summary counters.
func AdminDashboard(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

// AdminClientsList returns a filtered page of client gyms.
func AdminClientsList(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := accounts.ClientFilter{Search: validators.QueryString(r, "search")}
		if raw := validators.QueryString(r, "status"); raw != "" {
			status, err := enums.ParseAccountStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = status
		}

		rows, meta, err := svc.ListClients(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, struct {
			Clients    []admin.ClientRowDTO `json:"clients"`
			Pagination *pagination.Meta     `json:"pagination"`
		}{Clients: rows, Pagination: meta})
	}
}

// AdminClientGet returns one client with its subscription history.
func AdminClientGet(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		id, err := validators.ParamUUID(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.GetClient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

// AdminClientCreate provisions an approved client without the signup queue.
func AdminClientCreate(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		var payload admin.CreateClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.CreateClient(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

// AdminClientUpdateStatus approves, blocks or re-queues a client.
func AdminClientUpdateStatus(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		id, err := validators.ParamUUID(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload admin.UpdateClientStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.UpdateClientStatus(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, account)
	}
}

// AdminClientDelete removes a client and all of its gym data.
func AdminClientDelete(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		id, err := validators.ParamUUID(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteClient(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "client deleted")
	}
}

// AdminClientsExport streams the full client roster as CSV.
func AdminClientsExport(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		filename := fmt.Sprintf("clients-%s.csv", dates.Today())

		responses.WriteCSV(r.Context(), logg, w, filename, func(out http.ResponseWriter) error {
			return svc.ExportClientsCSV(r.Context(), out)
		})
	}
}
