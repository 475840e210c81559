package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/domain"
)

// Password is the plaintext password of every fixture account.
const Password = "password123"

var (
	hashOnce sync.Once
	hashed   string
)

// PasswordHash returns a cheap bcrypt hash of Password.
func PasswordHash(t testing.TB) string {
	t.Helper()
	hashOnce.Do(func() {
		var err error
		hashed, err = auth.HashPassword(Password, bcrypt.MinCost)
		require.NoError(t, err)
	})
	return hashed
}

// AddCustomer stores a customer.
func (s *Store) AddCustomer(t testing.TB, username string) *domain.Identity {
	t.Helper()
	customer := domain.NewCustomer(username, username+"@example.com", nil)
	customer.PasswordHash = PasswordHash(t)
	require.NoError(t, s.Identities().Create(context.Background(), customer))
	return customer
}

// AddCompany stores a company with the given scope.
func (s *Store) AddCompany(t testing.TB, username string, scope domain.FieldScope) *domain.Identity {
	t.Helper()
	company, err := domain.NewCompany(username, username+"@example.com", scope)
	require.NoError(t, err)
	company.PasswordHash = PasswordHash(t)
	require.NoError(t, s.Identities().Create(context.Background(), company))
	return company
}

// AddModerator stores an active moderator.
func (s *Store) AddModerator(t testing.TB, name string) *domain.StaffMember {
	t.Helper()
	staff := &domain.StaffMember{
		Name:         name,
		Email:        name + "@staff.example.com",
		PasswordHash: PasswordHash(t),
		Role:         domain.StaffRoleModerator,
		Active:       true,
	}
	require.NoError(t, s.Staff().Create(context.Background(), staff))
	return staff
}

// AddEntry stores a catalog entry owned by company in the given status.
func (s *Store) AddEntry(t testing.TB, company *domain.Identity, name string, field domain.FieldOfWork, rate string, status domain.ModerationStatus) *domain.CatalogEntry {
	t.Helper()
	entry := &domain.CatalogEntry{
		CompanyID:   company.ID,
		Name:        name,
		Description: name + " description",
		Field:       field,
		HourlyRate:  decimal.RequireFromString(rate),
		Status:      status,
	}
	require.NoError(t, s.Catalog().Create(context.Background(), entry))
	entry.CompanyName = company.Username
	return entry
}

// SetHourlyRate changes an entry's current rate in place.
func (s *Store) SetHourlyRate(entryID, rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[entryID]
	entry.HourlyRate = decimal.RequireFromString(rate)
	s.entries[entryID] = entry
}
