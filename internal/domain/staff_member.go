package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleModerator StaffRole = "MODERATOR"
	StaffRoleAdmin     StaffRole = "ADMIN"
)

// StaffMember is a back-office operator. Staff members are the source of
// moderation privilege; they never act as customers or companies.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanModerate reports whether the staff member may approve or reject services.
func (s *StaffMember) CanModerate() bool {
	if s == nil || !s.Active {
		return false
	}
	return s.Role == StaffRoleModerator || s.Role == StaffRoleAdmin
}
