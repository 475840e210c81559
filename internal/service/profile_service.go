package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// Profile is the public page of a customer or company. Requests and Ratings
// are only filled when a customer views their own profile.
type Profile struct {
	Identity     *domain.Identity
	Services     []EntryListing
	RequestCount int
	Requests     []domain.ServiceRequestView
	Ratings      []domain.RatingView
	Self         bool
}

// ProfileService builds public profiles.
type ProfileService struct {
	identities repository.IdentityRepository
	requests   repository.RequestRepository
	ratings    repository.RatingRepository
	catalog    *CatalogService
}

// ProfileDependencies bundles collaborators for the profile service.
type ProfileDependencies struct {
	IdentityRepo   repository.IdentityRepository
	RequestRepo    repository.RequestRepository
	RatingRepo     repository.RatingRepository
	CatalogService *CatalogService
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	return &ProfileService{
		identities: deps.IdentityRepo,
		requests:   deps.RequestRepo,
		ratings:    deps.RatingRepo,
		catalog:    deps.CatalogService,
	}
}

// Get loads the profile for username as seen by viewer.
func (s *ProfileService) Get(ctx context.Context, viewer Viewer, username string) (*Profile, error) {
	identity, err := s.identities.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"username": username})
		}
		return nil, apperrors.MapError(err)
	}

	profile := &Profile{
		Identity: identity,
		Self:     viewer.Identity != nil && viewer.Identity.ID == identity.ID,
	}

	switch identity.Role() {
	case domain.RoleCompany:
		if profile.Services, err = s.catalog.ListByCompany(ctx, viewer, identity); err != nil {
			return nil, err
		}
		if profile.RequestCount, err = s.requests.CountByCompany(ctx, identity.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
	case domain.RoleCustomer:
		if !profile.Self {
			break
		}
		if profile.Requests, err = s.requests.ListByCustomer(ctx, identity.ID, defaultListLimit, 0); err != nil {
			return nil, apperrors.MapError(err)
		}
		if profile.Ratings, err = s.ratings.ListByCustomer(ctx, identity.ID, defaultListLimit, 0); err != nil {
			return nil, apperrors.MapError(err)
		}
		profile.RequestCount = len(profile.Requests)
	}
	return profile, nil
}
