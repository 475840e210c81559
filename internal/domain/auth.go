package domain

import "time"

// SubjectType differentiates marketplace identities vs staff tokens.
type SubjectType string

const (
	SubjectTypeIdentity SubjectType = "IDENTITY"
	SubjectTypeStaff    SubjectType = "STAFF"
)

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	Subject   SubjectType
	Role      *StaffRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
