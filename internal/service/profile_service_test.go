package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/testutil"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

type ProfileServiceSuite struct {
	testutil.BaseServiceTestSuite
	svc      services
	company  *domain.Identity
	customer *domain.Identity
}

func TestProfileService(t *testing.T) {
	suite.Run(t, new(ProfileServiceSuite))
}

func (s *ProfileServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.svc = newServices(&s.BaseServiceTestSuite)
	s.company = s.Store.AddCompany(s.T(), "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	s.customer = s.Store.AddCustomer(s.T(), "jane.doe")

	live := s.Store.AddEntry(s.T(), s.company, "Pipe Repair", domain.FieldPlumbing, "50", domain.StatusApproved)
	s.Store.AddEntry(s.T(), s.company, "Drains", domain.FieldPlumbing, "30", domain.StatusPending)

	_, err := s.svc.requests.Create(s.GetContext(), s.customer, live.ID, RequestInput{Address: "1 Main St", DurationHours: "1"})
	s.Require().NoError(err)
	_, err = s.svc.ratings.RateService(s.GetContext(), s.customer, live.ID, RatingInput{Score: 4})
	s.Require().NoError(err)
}

func (s *ProfileServiceSuite) TestCompanyProfile() {
	public, err := s.svc.profiles.Get(s.GetContext(), Viewer{}, "acme.plumbing")
	s.Require().NoError(err)
	s.False(public.Self)
	s.Len(public.Services, 1)
	s.Equal(1, public.RequestCount)
	s.Equal(domain.RatingSummary{Average: 4, Count: 1}, public.Services[0].Rating)

	own, err := s.svc.profiles.Get(s.GetContext(), Viewer{Identity: s.company}, "acme.plumbing")
	s.Require().NoError(err)
	s.True(own.Self)
	s.Len(own.Services, 2)
}

func (s *ProfileServiceSuite) TestCustomerProfileIsPrivate() {
	public, err := s.svc.profiles.Get(s.GetContext(), Viewer{Identity: s.company}, "jane.doe")
	s.Require().NoError(err)
	s.Empty(public.Requests)
	s.Empty(public.Ratings)

	own, err := s.svc.profiles.Get(s.GetContext(), Viewer{Identity: s.customer}, "jane.doe")
	s.Require().NoError(err)
	s.Len(own.Requests, 1)
	s.Len(own.Ratings, 1)
	s.Equal(1, own.RequestCount)
}

func (s *ProfileServiceSuite) TestUnknownProfile() {
	_, err := s.svc.profiles.Get(s.GetContext(), Viewer{}, "nobody")
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
}
