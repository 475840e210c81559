package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/xpertshub/internal/domain"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

type fixture struct {
	customer  *domain.Identity
	company   *domain.Identity
	other     *domain.Identity
	approved  *domain.CatalogEntry
	pending   *domain.CatalogEntry
	rejected  *domain.CatalogEntry
	moderator *domain.StaffMember
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	customer := domain.NewCustomer("jane", "jane@example.com", nil)
	customer.ID = "customer-1"
	company, err := domain.NewCompany("plumbers", "plumbers@example.com", domain.ConcreteScope(domain.FieldPlumbing))
	require.NoError(t, err)
	company.ID = "company-1"
	other, err := domain.NewCompany("others", "others@example.com", domain.AnyFieldScope())
	require.NoError(t, err)
	other.ID = "company-2"

	return fixture{
		customer:  customer,
		company:   company,
		other:     other,
		approved:  &domain.CatalogEntry{ID: "e1", CompanyID: company.ID, Status: domain.StatusApproved},
		pending:   &domain.CatalogEntry{ID: "e2", CompanyID: company.ID, Status: domain.StatusPending},
		rejected:  &domain.CatalogEntry{ID: "e3", CompanyID: company.ID, Status: domain.StatusRejected},
		moderator: &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleModerator, Active: true},
	}
}

func TestCanCreateService(t *testing.T) {
	f := newFixture(t)
	assert.True(t, CanCreateService(f.company).Allowed)
	assert.True(t, CanCreateService(f.other).Allowed)

	decision := CanCreateService(f.customer)
	assert.False(t, decision.Allowed)
	assert.True(t, apperrors.HasCode(decision.Err(), apperrors.CodeForbidden))

	assert.False(t, CanCreateService(nil).Allowed)
}

func TestCanRequestService(t *testing.T) {
	f := newFixture(t)
	assert.True(t, CanRequestService(f.customer, f.approved).Allowed)
	assert.False(t, CanRequestService(f.company, f.approved).Allowed)

	for _, actor := range []*domain.Identity{f.customer, f.company, f.other, nil} {
		assert.False(t, CanRequestService(actor, f.pending).Allowed)
		assert.False(t, CanRequestService(actor, f.rejected).Allowed)
	}
}

func TestCanRateService(t *testing.T) {
	f := newFixture(t)
	assert.True(t, CanRateService(f.customer, f.approved, false).Allowed)
	assert.False(t, CanRateService(f.customer, f.approved, true).Allowed)
	assert.False(t, CanRateService(f.customer, f.pending, false).Allowed)
	assert.False(t, CanRateService(f.company, f.approved, false).Allowed)
}

func TestCanViewRequestsFor(t *testing.T) {
	f := newFixture(t)
	assert.True(t, CanViewRequestsFor(f.company, f.approved.CompanyID).Allowed)
	assert.False(t, CanViewRequestsFor(f.other, f.approved.CompanyID).Allowed)
	assert.False(t, CanViewRequestsFor(f.customer, f.approved.CompanyID).Allowed)
}

func TestCanApprove(t *testing.T) {
	f := newFixture(t)
	assert.True(t, CanApprove(f.moderator).Allowed)
	assert.True(t, CanApprove(&domain.StaffMember{Role: domain.StaffRoleAdmin, Active: true}).Allowed)
	assert.False(t, CanApprove(&domain.StaffMember{Role: domain.StaffRoleModerator, Active: false}).Allowed)
	assert.False(t, CanApprove(nil).Allowed)
	assert.NoError(t, CanApprove(f.moderator).Err())
}

func TestCanView(t *testing.T) {
	f := newFixture(t)
	assert.True(t, CanView(nil, nil, f.approved))
	assert.False(t, CanView(nil, nil, f.pending))
	assert.False(t, CanView(f.customer, nil, f.pending))
	assert.False(t, CanView(f.other, nil, f.pending))
	assert.True(t, CanView(f.company, nil, f.pending))
	assert.True(t, CanView(f.company, nil, f.rejected))
	assert.True(t, CanView(nil, f.moderator, f.pending))
	assert.False(t, CanView(f.company, nil, nil))
}
