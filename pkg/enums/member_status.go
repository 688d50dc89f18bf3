package enums

import "fmt"

// MemberStatus is the lifecycle state of a gym member. Overdue active
// members are lazily corrected to expired when their tenant lists them.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusExpired   MemberStatus = "expired"
	MemberStatusSuspended MemberStatus = "suspended"
)

var validMemberStatuses = []MemberStatus{
	MemberStatusActive,
	MemberStatusExpired,
	MemberStatusSuspended,
}

// String implements fmt.Stringer.
func (m MemberStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberStatus.
func (m MemberStatus) IsValid() bool {
	for _, candidate := range validMemberStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberStatus converts raw input into a MemberStatus.
func ParseMemberStatus(value string) (MemberStatus, error) {
	for _, candidate := range validMemberStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member status %q", value)
}
