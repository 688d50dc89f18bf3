package controllers

import (
	"fmt"
	"net/http"

	"github.com/gymstackhq/gymstack-backend/api/responses"
	"github.com/gymstackhq/gymstack-backend/api/validators"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
)

// MembersList returns a filtered page of the gym's members.
func MembersList(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := members.Filter{
			Search: validators.QueryString(r, "search"),
			Status: validators.QueryString(r, "status"),
			Plan:   validators.QueryString(r, "plan"),
		}

		rows, meta, err := svc.List(r.Context(), accountID, filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, struct {
			Members    []members.MemberDTO `json:"members"`
			Pagination *pagination.Meta    `json:"pagination"`
		}{Members: rows, Pagination: meta})
	}
}

// MemberGet returns one member with payment and attendance history.
func MemberGet(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Get(r.Context(), accountID, memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, member)
	}
}

// MemberCreate registers a new gym member.
func MemberCreate(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload members.CreateMemberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Create(r.Context(), accountID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// MemberUpdate adjusts a member's mutable fields.
func MemberUpdate(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload members.UpdateMemberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Update(r.Context(), accountID, memberID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, member)
	}
}

// MemberDelete removes a member and their history.
func MemberDelete(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), accountID, memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "member deleted")
	}
}

// MemberAddPayment records a payment against a member.
func MemberAddPayment(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload members.AddPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.AddPayment(r.Context(), accountID, memberID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// MemberExtend pushes a member's end date forward.
func MemberExtend(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload members.ExtendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Extend(r.Context(), accountID, memberID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, member)
	}
}

// MemberAttendance toggles today's check-in or check-out.
func MemberAttendance(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ToggleAttendance(r.Context(), accountID, memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Action == members.AttendanceActionAlreadyComplete {
			responses.WriteRejected(w, "already checked in and out today", result)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MemberQRCode returns the member's stored check-in payload.
func MemberQRCode(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		memberID, err := validators.ParamUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		qr, err := svc.QRCode(r.Context(), accountID, memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, qr)
	}
}

// MembersExport streams the gym's member roster as CSV.
func MembersExport(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

// MembersStats returns roster counts and the current month's revenue.
func MembersStats(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		stats, err := svc.Stats(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
