package members

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
)

// Service exposes member management for one authenticated tenant. The
// accountID on every call comes from the resolved client access, never
// from request input.
type Service interface {
	List(ctx context.Context, accountID uuid.UUID, filter Filter, page pagination.Params) ([]MemberDTO, *pagination.Meta, error)
	Get(ctx context.Context, accountID, memberID uuid.UUID) (*MemberDetailDTO, error)
	Create(ctx context.Context, accountID uuid.UUID, req CreateMemberRequest) (*MemberDTO, error)
	Update(ctx context.Context, accountID, memberID uuid.UUID, req UpdateMemberRequest) (*MemberDTO, error)
	Delete(ctx context.Context, accountID, memberID uuid.UUID) error
	AddPayment(ctx context.Context, accountID, memberID uuid.UUID, req AddPaymentRequest) (*PaymentDTO, error)
	Extend(ctx context.Context, accountID, memberID uuid.UUID, req ExtendRequest) (*MemberDTO, error)
	ToggleAttendance(ctx context.Context, accountID, memberID uuid.UUID) (*AttendanceResultDTO, error)
	QRCode(ctx context.Context, accountID, memberID uuid.UUID) (*QRCodeDTO, error)
	ExportCSV(ctx context.Context, accountID uuid.UUID, w io.Writer) error
	Stats(ctx context.Context, accountID uuid.UUID) (*StatsDTO, error)
}

// memberStore is the persistence surface the service reads through
// outside of transactions.
type memberStore interface {
	ExpireOverdue(ctx context.Context, accountID uuid.UUID, today string) (int64, error)
	List(ctx context.Context, accountID uuid.UUID, filter Filter, page pagination.Params) ([]models.Member, int64, error)
	ListAll(ctx context.Context, accountID uuid.UUID) ([]models.Member, error)
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, accountID uuid.UUID) (map[enums.MemberStatus]int64, error)
	CountByPlan(ctx context.Context, accountID uuid.UUID) ([]PlanCountDTO, error)
	FindByID(ctx context.Context, accountID, memberID uuid.UUID) (*models.Member, error)
	Save(ctx context.Context, member *models.Member) error
	CreatePayment(ctx context.Context, payment *models.MemberPayment) error
	ListPaymentsByMember(ctx context.Context, accountID, memberID uuid.UUID) ([]models.MemberPayment, error)
	SumPaymentsSince(ctx context.Context, accountID uuid.UUID, fromDate string) (decimal.Decimal, error)
	FindAttendance(ctx context.Context, accountID, memberID uuid.UUID, date string) (*models.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, record *models.AttendanceRecord) error
	SetCheckOut(ctx context.Context, recordID uuid.UUID, at time.Time) error
	ListAttendanceSince(ctx context.Context, accountID, memberID uuid.UUID, fromDate string) ([]models.AttendanceRecord, error)
}

// memberTxStore is the slice of the store the transactional flows use.
type memberTxStore interface {
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, accountID, memberID uuid.UUID) (*models.Member, error)
	Save(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, accountID, memberID uuid.UUID) error
	CreatePayment(ctx context.Context, payment *models.MemberPayment) error
	DeletePaymentsByMember(ctx context.Context, accountID, memberID uuid.UUID) error
	DeleteAttendanceByMember(ctx context.Context, accountID, memberID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams packages the dependencies for the members service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	tx      txRunner
	repo    memberStore
	repoFor func(tx *gorm.DB) memberTxStore
	today   func() string
	now     func() time.Time
}

// NewService builds a members service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{
		tx:      params.DB,
		repo:    NewRepository(params.DB.DB()),
		repoFor: func(tx *gorm.DB) memberTxStore { return NewRepository(tx) },
		today:   dates.Today,
		now:     time.Now,
	}, nil
}

// List sweeps overdue members to expired, then returns one page.
func (s *service) List(ctx context.Context, accountID uuid.UUID, filter Filter, page pagination.Params) ([]MemberDTO, *pagination.Meta, error) {
	page = page.Normalize()
	if _, err := s.repo.ExpireOverdue(ctx, accountID, s.today()); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire overdue members")
	}
	rows, total, err := s.repo.List(ctx, accountID, filter, page)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members")
	}
	meta := pagination.NewMeta(page, total)
	return fromMemberModels(rows), &meta, nil
}

// Get returns a member with payment history and the last 30 days of
// attendance.
func (s *service) Get(ctx context.Context, accountID, memberID uuid.UUID) (*MemberDetailDTO, error) {
	member, err := s.findMember(ctx, accountID, memberID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsByMember(ctx, accountID, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list member payments")
	}
	since, err := dates.AddDays(s.today(), -30)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive attendance window")
	}
	attendance, err := s.repo.ListAttendanceSince(ctx, accountID, memberID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list member attendance")
	}
	return &MemberDetailDTO{
		MemberDTO:  *fromMemberModel(member),
		Payments:   fromPaymentModels(payments),
		Attendance: fromAttendanceModels(attendance),
	}, nil
}

// qrPayload is the JSON embedded in a member's QR code. It is written
// once at creation; renames later do not rewrite it.
type qrPayload struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	Type     string `json:"type"`
}

const qrPayloadType = "member_qr"

// Create registers a member and, when an amount was collected up front,
// its first payment row, in one transaction.
func (s *service) Create(ctx context.Context, accountID uuid.UUID, req CreateMemberRequest) (*MemberDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name is required")
	}
	plan := strings.TrimSpace(req.MembershipPlan)
	if plan == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "membership plan is required")
	}
	if !dates.IsValid(req.StartDate) || !dates.IsValid(req.EndDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates must be YYYY-MM-DD")
	}
	if req.EndDate < req.StartDate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	amount, err := parseAmount(req.AmountPaid)
	if err != nil {
		return nil, err
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	var created *models.Member
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)

		count, err := repo.Count(ctx, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
		}
		code := memberCode(count + 1)

		payload, err := json.Marshal(qrPayload{
			MemberID: code,
			Name:     name,
			ClientID: accountID.String(),
			Type:     qrPayloadType,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr payload")
		}

		member := &models.Member{
			AccountID:      accountID,
			MemberCode:     code,
			Name:           name,
			Email:          req.Email,
			Phone:          req.Phone,
			MembershipPlan: plan,
			AmountPaid:     amount,
			PaymentMethod:  paymentMethod,
			UPIID:          req.UPIID,
			Notes:          req.Notes,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Status:         enums.MemberStatusActive,
			QRPayload:      string(payload),
		}
		if err := repo.Create(ctx, member); err != nil {
			if db.IsUniqueViolation(err, "idx_members_account_code") {
				return pkgerrors.New(pkgerrors.CodeConflict, "member code already assigned, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create member")
		}

		if req.PaymentMethod != "" && amount.IsPositive() {
			forMonth := dates.YearMonth(req.StartDate)
			if err := repo.CreatePayment(ctx, &models.MemberPayment{
				AccountID:     accountID,
				MemberID:      member.ID,
				Amount:        amount,
				PaymentDate:   req.StartDate,
				PaymentMethod: paymentMethod,
				UPIID:         req.UPIID,
				ForMonth:      &forMonth,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record initial payment")
			}
		}

		created = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fromMemberModel(created), nil
}

// Update applies the provided fields. The member code and QR payload
// are immutable once issued.
func (s *service) Update(ctx context.Context, accountID, memberID uuid.UUID, req UpdateMemberRequest) (*MemberDTO, error) {
	member, err := s.findMember(ctx, accountID, memberID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name cannot be empty")
		}
		member.Name = name
	}
	if req.Email != nil {
		member.Email = req.Email
	}
	if req.Phone != nil {
		member.Phone = req.Phone
	}
	if req.MembershipPlan != nil {
		plan := strings.TrimSpace(*req.MembershipPlan)
		if plan == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "membership plan cannot be empty")
		}
		member.MembershipPlan = plan
	}
	if req.AmountPaid != nil {
		amount, err := parseAmount(*req.AmountPaid)
		if err != nil {
			return nil, err
		}
		member.AmountPaid = amount
	}
	if req.PaymentMethod != nil {
		member.PaymentMethod = *req.PaymentMethod
	}
	if req.UPIID != nil {
		member.UPIID = req.UPIID
	}
	if req.Notes != nil {
		member.Notes = req.Notes
	}
	if req.StartDate != nil {
		if !dates.IsValid(*req.StartDate) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must be YYYY-MM-DD")
		}
		member.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		if !dates.IsValid(*req.EndDate) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be YYYY-MM-DD")
		}
		member.EndDate = *req.EndDate
	}
	if req.Status != nil {
		status, err := enums.ParseMemberStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		member.Status = status
	}
	if member.EndDate < member.StartDate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}

	if err := s.repo.Save(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update member")
	}
	return fromMemberModel(member), nil
}

// Delete removes the member and every dependent payment and attendance
// row in one transaction.
func (s *service) Delete(ctx context.Context, accountID, memberID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)
		if _, err := repo.FindByID(ctx, accountID, memberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
		}
		if err := repo.DeletePaymentsByMember(ctx, accountID, memberID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete member payments")
		}
		if err := repo.DeleteAttendanceByMember(ctx, accountID, memberID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete member attendance")
		}
		if err := repo.Delete(ctx, accountID, memberID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete member")
		}
		return nil
	})
}

// AddPayment appends a payment row for the member.
func (s *service) AddPayment(ctx context.Context, accountID, memberID uuid.UUID, req AddPaymentRequest) (*PaymentDTO, error) {
	member, err := s.findMember(ctx, accountID, memberID)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	paymentDate := req.PaymentDate
	if paymentDate == "" {
		paymentDate = s.today()
	} else if !dates.IsValid(paymentDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment date must be YYYY-MM-DD")
	}
	method := req.PaymentMethod
	if method == "" {
		method = member.PaymentMethod
	}

	payment := &models.MemberPayment{
		AccountID:     accountID,
		MemberID:      member.ID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		PaymentMethod: method,
		UPIID:         req.UPIID,
		ForMonth:      req.ForMonth,
		Notes:         req.Notes,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
	}
	return fromPaymentModel(payment), nil
}

// Extend pushes the end date forward by the requested number of days,
// measured from the current end date rather than today, reactivates the
// member, and optionally records the renewal payment. All in one
// transaction.
func (s *service) Extend(ctx context.Context, accountID, memberID uuid.UUID, req ExtendRequest) (*MemberDTO, error) {
	if req.Days <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "extension days must be positive")
	}
	var amount decimal.Decimal
	if req.Amount != "" {
		parsed, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		amount = parsed
	}

	var updated *models.Member
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)
		member, err := repo.FindByID(ctx, accountID, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
		}

		newEnd, err := dates.AddDays(member.EndDate, req.Days)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive new end date")
		}
		member.EndDate = newEnd
		member.Status = enums.MemberStatusActive
		if err := repo.Save(ctx, member); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "extend member")
		}

		if amount.IsPositive() {
			today := s.today()
			forMonth := dates.YearMonth(today)
			method := req.PaymentMethod
			if method == "" {
				method = member.PaymentMethod
			}
			if err := repo.CreatePayment(ctx, &models.MemberPayment{
				AccountID:     accountID,
				MemberID:      member.ID,
				Amount:        amount,
				PaymentDate:   today,
				PaymentMethod: method,
				UPIID:         req.UPIID,
				ForMonth:      &forMonth,
				Notes:         req.Notes,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record renewal payment")
			}
		}

		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fromMemberModel(updated), nil
}

// Attendance toggle actions.
const (
	AttendanceActionCheckIn         = "check_in"
	AttendanceActionCheckOut        = "check_out"
	AttendanceActionAlreadyComplete = "already_complete"
)

// ToggleAttendance advances the member's record for today: first scan
// checks in, second checks out, further scans change nothing. Only
// members currently on active status can scan.
func (s *service) ToggleAttendance(ctx context.Context, accountID, memberID uuid.UUID) (*AttendanceResultDTO, error) {
	member, err := s.findMember(ctx, accountID, memberID)
	if err != nil {
		return nil, err
	}
	if member.Status != enums.MemberStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active member not found")
	}

	today := s.today()
	record, err := s.repo.FindAttendance(ctx, accountID, memberID, today)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load attendance")
		}
		record = &models.AttendanceRecord{
			AccountID:   accountID,
			MemberID:    memberID,
			Date:        today,
			CheckInTime: s.now(),
		}
		if err := s.repo.CreateAttendance(ctx, record); err != nil {
			if db.IsUniqueViolation(err, "idx_attendance_member_day") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "attendance already recorded, retry")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record check-in")
		}
		return &AttendanceResultDTO{
			Action: AttendanceActionCheckIn,
			Record: *fromAttendanceModel(record),
		}, nil
	}

	if record.CheckOutTime == nil {
		at := s.now()
		if err := s.repo.SetCheckOut(ctx, record.ID, at); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record check-out")
		}
		record.CheckOutTime = &at
		return &AttendanceResultDTO{
			Action: AttendanceActionCheckOut,
			Record: *fromAttendanceModel(record),
		}, nil
	}

	return &AttendanceResultDTO{
		Action: AttendanceActionAlreadyComplete,
		Record: *fromAttendanceModel(record),
	}, nil
}

// QRCode returns the member's stored QR payload.
func (s *service) QRCode(ctx context.Context, accountID, memberID uuid.UUID) (*QRCodeDTO, error) {
	member, err := s.findMember(ctx, accountID, memberID)
	if err != nil {
		return nil, err
	}
	return &QRCodeDTO{
		MemberID:   member.ID,
		MemberCode: member.MemberCode,
		Name:       member.Name,
		QRPayload:  member.QRPayload,
	}, nil
}

var memberCSVHeader = []string{
	"Member Code", "Name", "Email", "Phone", "Plan",
	"Amount Paid", "Payment Method", "Start Date", "End Date", "Status",
}

// ExportCSV streams every member of the tenant as CSV.
func (s *service) ExportCSV(ctx context.Context, accountID uuid.UUID, w io.Writer) error {
	rows, err := s.repo.ListAll(ctx, accountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members for export")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(memberCSVHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for i := range rows {
		m := &rows[i]
		record := []string{
			m.MemberCode,
			m.Name,
			stringOrEmpty(m.Email),
			stringOrEmpty(m.Phone),
			m.MembershipPlan,
			m.AmountPaid.StringFixed(2),
			m.PaymentMethod,
			m.StartDate,
			m.EndDate,
			m.Status.String(),
		}
		if err := cw.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

// Stats summarizes the member base and the current month's collections.
func (s *service) Stats(ctx context.Context, accountID uuid.UUID) (*StatsDTO, error) {
	total, err := s.repo.Count(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
	}
	byStatus, err := s.repo.CountByStatus(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members by status")
	}
	monthStart := dates.YearMonth(s.today()) + "-01"
	monthRevenue, err := s.repo.SumPaymentsSince(ctx, accountID, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum month payments")
	}
	byPlan, err := s.repo.CountByPlan(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members by plan")
	}
	return &StatsDTO{
		TotalMembers:   total,
		ActiveMembers:  byStatus[enums.MemberStatusActive],
		ExpiredMembers: byStatus[enums.MemberStatusExpired],
		MonthRevenue:   monthRevenue,
		PlanBreakdown:  byPlan,
	}, nil
}

func (s *service) findMember(ctx context.Context, accountID, memberID uuid.UUID) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, accountID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	return member, nil
}

// memberCode formats the sequential human-facing code, MEM0001 style.
// Codes come from count+1 at insert time; the unique index on
// (account_id, member_code) rejects the loser if two inserts race.
func memberCode(n int64) string {
	return fmt.Sprintf("MEM%04d", n)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal number")
	}
	if amount.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	return amount, nil
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
