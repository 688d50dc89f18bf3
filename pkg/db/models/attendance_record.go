package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord captures one member's visit for one calendar day.
// CheckOutTime stays nil until the member scans out; a third scan on
// the same day is a no-op.
type AttendanceRecord struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID  `gorm:"column:account_id;type:uuid;not null;index"`
	MemberID     uuid.UUID  `gorm:"column:member_id;type:uuid;not null;index:idx_attendance_member_day,unique,priority:1"`
	Date         string     `gorm:"column:date;type:text;not null;index:idx_attendance_member_day,unique,priority:2"`
	CheckInTime  time.Time  `gorm:"column:check_in_time;not null"`
	CheckOutTime *time.Time `gorm:"column:check_out_time"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`

	Member *Member `gorm:"foreignKey:MemberID"`
}
