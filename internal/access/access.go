// Package access decides whether an actor may act on marketplace entities.
// Every predicate is pure: it only looks at the values it is given.
package access

import (
	"github.com/spec-kit/xpertshub/internal/domain"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into a Forbidden error; allowed decisions yield nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.NewForbidden(d.Reason)
}

// CanCreateService allows companies to propose services. The proposed field
// is checked later by domain.ValidateNewService.
func CanCreateService(identity *domain.Identity) Decision {
	if !identity.IsCompany() {
		return deny("Only companies can create services.")
	}
	return allow()
}

// CanRequestService allows customers to book approved entries.
func CanRequestService(identity *domain.Identity, entry *domain.CatalogEntry) Decision {
	if !identity.IsCustomer() {
		return deny("Only customers can request services.")
	}
	if !entry.IsApproved() {
		return deny("This service is not available.")
	}
	return allow()
}

// CanRateService allows a customer one rating per approved entry.
func CanRateService(identity *domain.Identity, entry *domain.CatalogEntry, alreadyRated bool) Decision {
	if !identity.IsCustomer() {
		return deny("Only customers can rate services.")
	}
	if !entry.IsApproved() {
		return deny("This service is not available.")
	}
	if alreadyRated {
		return deny("You have already rated this service.")
	}
	return allow()
}

// CanViewRequestsFor allows a company to see requests for services it owns.
func CanViewRequestsFor(identity *domain.Identity, ownerID string) Decision {
	if !identity.IsCompany() {
		return deny("Only companies can view service requests.")
	}
	if identity.ID != ownerID {
		return deny("You can only view requests for your own services.")
	}
	return allow()
}

// CanApprove allows active moderators and admins to moderate entries.
func CanApprove(staff *domain.StaffMember) Decision {
	if !staff.CanModerate() {
		return deny("Moderator privileges required.")
	}
	return allow()
}

// CanView reports whether an entry is visible. Approved entries are public;
// others are visible to their owner and to moderators only. Callers must
// answer NotFound, not Forbidden, when this is false.
func CanView(identity *domain.Identity, staff *domain.StaffMember, entry *domain.CatalogEntry) bool {
	if entry == nil {
		return false
	}
	if entry.IsApproved() {
		return true
	}
	if staff.CanModerate() {
		return true
	}
	return entry.OwnedBy(identity)
}
