package dto

import "github.com/spec-kit/xpertshub/internal/service"

// ProfileResponse is a public profile page.
type ProfileResponse struct {
	Identity     IdentityResponse         `json:"identity"`
	Services     []ServiceResponse        `json:"services,omitempty"`
	RequestCount int                      `json:"request_count"`
	Requests     []ServiceRequestResponse `json:"requests,omitempty"`
	Ratings      []RatingResponse         `json:"ratings,omitempty"`
	Self         bool                     `json:"self"`
}

// NewProfileResponse renders a profile; private fields only appear on the
// owner's own page.
func NewProfileResponse(p *service.Profile) ProfileResponse {
	resp := ProfileResponse{
		Identity:     NewIdentityResponse(p.Identity, p.Self),
		RequestCount: p.RequestCount,
		Self:         p.Self,
	}
	if p.Identity.IsCompany() {
		resp.Services = NewServiceListResponse(p.Services)
	}
	if p.Self && p.Identity.IsCustomer() {
		resp.Requests = NewServiceRequestListResponse(p.Requests)
		resp.Ratings = NewRatingListResponse(p.Ratings)
	}
	return resp
}
