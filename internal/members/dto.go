package members

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// MemberDTO is the transport shape for a gym member.
type MemberDTO struct {
	ID             uuid.UUID          `json:"id"`
	MemberCode     string             `json:"member_code"`
	Name           string             `json:"name"`
	Email          *string            `json:"email,omitempty"`
	Phone          *string            `json:"phone,omitempty"`
	MembershipPlan string             `json:"membership_plan"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	PaymentMethod  string             `json:"payment_method"`
	UPIID          *string            `json:"upi_id,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	Status         enums.MemberStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// MemberDetailDTO adds payment history and recent attendance.
type MemberDetailDTO struct {
	MemberDTO
	Payments   []PaymentDTO    `json:"payments"`
	Attendance []AttendanceDTO `json:"attendance"`
}

// PaymentDTO is one recorded member payment.
type PaymentDTO struct {
	ID            uuid.UUID       `json:"id"`
	MemberID      uuid.UUID       `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	UPIID         *string         `json:"upi_id,omitempty"`
	ForMonth      *string         `json:"for_month,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AttendanceDTO is one day's visit record.
type AttendanceDTO struct {
	ID           uuid.UUID  `json:"id"`
	MemberID     uuid.UUID  `json:"member_id"`
	Date         string     `json:"date"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
}

// QRCodeDTO returns the immutable QR payload for a member.
type QRCodeDTO struct {
	MemberID   uuid.UUID `json:"member_id"`
	MemberCode string    `json:"member_code"`
	Name       string    `json:"name"`
	QRPayload  string    `json:"qr_payload"`
}

// CreateMemberRequest registers a new member under the tenant.
type CreateMemberRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
	MembershipPlan string  `json:"membership_plan" validate:"required"`
	AmountPaid     string  `json:"amount_paid,omitempty"`
	PaymentMethod  string  `json:"payment_method,omitempty"`
	UPIID          *string `json:"upi_id,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	StartDate      string  `json:"start_date" validate:"required"`
	EndDate        string  `json:"end_date" validate:"required"`
}

// UpdateMemberRequest carries mutable member fields; member_code and the
// QR payload are never rewritten.
type UpdateMemberRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
	MembershipPlan *string `json:"membership_plan,omitempty"`
	AmountPaid     *string `json:"amount_paid,omitempty"`
	PaymentMethod  *string `json:"payment_method,omitempty"`
	UPIID          *string `json:"upi_id,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// AddPaymentRequest appends a payment row for a member.
type AddPaymentRequest struct {
	Amount        string  `json:"amount" validate:"required"`
	PaymentDate   string  `json:"payment_date,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	UPIID         *string `json:"upi_id,omitempty"`
	ForMonth      *string `json:"for_month,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ExtendRequest pushes a member's end date forward.
type ExtendRequest struct {
	Days          int     `json:"days" validate:"required,gt=0"`
	Amount        string  `json:"amount,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	UPIID         *string `json:"upi_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// AttendanceResultDTO reports what the toggle did.
type AttendanceResultDTO struct {
	Action string        `json:"action"`
	Record AttendanceDTO `json:"record"`
}

// StatsDTO summarizes the tenant's member base.
type StatsDTO struct {
	TotalMembers   int64           `json:"total_members"`
	ActiveMembers  int64           `json:"active_members"`
	ExpiredMembers int64           `json:"expired_members"`
	MonthRevenue   decimal.Decimal `json:"month_revenue"`
	PlanBreakdown  []PlanCountDTO  `json:"plan_breakdown"`
}

// PlanCountDTO is one membership-plan bucket.
type PlanCountDTO struct {
	MembershipPlan string `json:"membership_plan"`
	Count          int64  `json:"count"`
}

// FromModel converts a member row into its transport shape. Shared
// with the client portal's dashboard and expiring views.
func FromModel(m *models.Member) *MemberDTO {
	return fromMemberModel(m)
}

// FromModels converts member rows into their transport shape.
func FromModels(rows []models.Member) []MemberDTO {
	return fromMemberModels(rows)
}

func fromMemberModel(m *models.Member) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:             m.ID,
		MemberCode:     m.MemberCode,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		MembershipPlan: m.MembershipPlan,
		AmountPaid:     m.AmountPaid,
		PaymentMethod:  m.PaymentMethod,
		UPIID:          m.UPIID,
		Notes:          m.Notes,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func fromMemberModels(rows []models.Member) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromMemberModel(&rows[i]))
	}
	return out
}

func fromPaymentModel(p *models.MemberPayment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:            p.ID,
		MemberID:      p.MemberID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMethod: p.PaymentMethod,
		UPIID:         p.UPIID,
		ForMonth:      p.ForMonth,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
}

func fromPaymentModels(rows []models.MemberPayment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromPaymentModel(&rows[i]))
	}
	return out
}

func fromAttendanceModel(a *models.AttendanceRecord) *AttendanceDTO {
	if a == nil {
		return nil
	}
	return &AttendanceDTO{
		ID:           a.ID,
		MemberID:     a.MemberID,
		Date:         a.Date,
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
	}
}

func fromAttendanceModels(rows []models.AttendanceRecord) []AttendanceDTO {
	out := make([]AttendanceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromAttendanceModel(&rows[i]))
	}
	return out
}
