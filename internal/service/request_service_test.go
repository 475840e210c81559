package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/testutil"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

type RequestServiceSuite struct {
	testutil.BaseServiceTestSuite
	svc      services
	company  *domain.Identity
	customer *domain.Identity
	entry    *domain.CatalogEntry
}

func TestRequestService(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.svc = newServices(&s.BaseServiceTestSuite)
	s.company = s.Store.AddCompany(s.T(), "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	s.customer = s.Store.AddCustomer(s.T(), "jane.doe")
	s.entry = s.Store.AddEntry(s.T(), s.company, "Pipe Repair", domain.FieldPlumbing, "50.00", domain.StatusApproved)
}

func (s *RequestServiceSuite) TestCreateSnapshotsRateAndCost() {
	view, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{
		Address:       " 1 Main St ",
		DurationHours: "2.5",
	})
	s.Require().NoError(err)
	s.Equal("1 Main St", view.Request.Address)
	s.Equal("50", view.Request.HourlyRate.String())
	s.Equal("125", view.Request.Cost().String())
	s.Equal("Pipe Repair", view.EntryName)
	s.Equal(s.company.ID, view.CompanyID)
	s.Equal("jane.doe", view.CustomerName)
}

func (s *RequestServiceSuite) TestCreateSendsBothEmails() {
	view, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "2"})
	s.Require().NoError(err)

	sent := s.Mail.Messages()
	s.Require().Len(sent, 2)
	s.Equal(s.customer.Email, sent[0].To)
	s.Equal("Service Request Confirmed - Pipe Repair", sent[0].Subject)
	s.Equal(s.company.Email, sent[1].To)
	s.Equal("New Service Request - Pipe Repair", sent[1].Subject)
	s.Contains(sent[0].Text, "100.00")
	s.NotEmpty(view.Request.ID)
}

func (s *RequestServiceSuite) TestMailFailureDoesNotFailRequest() {
	s.Mail.Err = errors.New("smtp down")

	view, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "1"})
	s.Require().NoError(err)
	s.NotNil(view)
	s.Empty(s.Mail.Messages())

	count, err := s.svc.requests.CountForCompany(s.GetContext(), s.company.ID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *RequestServiceSuite) TestMinimumDuration() {
	_, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "0.49"})
	s.Require().Error(err)
	domainErr := apperrors.ToDomainError(err)
	s.Equal(apperrors.CodeValidationFailed, domainErr.Code)
	s.Equal(string(domain.KindDurationTooShort), domainErr.Details["kind"])
	s.Equal("Minimum service time is 0.5 hours", domainErr.Message)

	_, err = s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "0.5"})
	s.NoError(err)
}

func (s *RequestServiceSuite) TestInvalidInput() {
	_, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "  ", DurationHours: "1"})
	s.Equal(string(domain.KindMissingField), apperrors.ToDomainError(err).Details["kind"])

	_, err = s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "soon"})
	s.Equal(string(domain.KindInvalidDuration), apperrors.ToDomainError(err).Details["kind"])
}

func (s *RequestServiceSuite) TestDurationMustFitStorage() {
	for _, hours := range []string{"100000", "1.125"} {
		_, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: hours})
		domainErr := apperrors.ToDomainError(err)
		s.Equal(apperrors.CodeValidationFailed, domainErr.Code, hours)
		s.Equal(string(domain.KindInvalidDuration), domainErr.Details["kind"], hours)
	}

	count, err := s.svc.requests.CountForCompany(s.GetContext(), s.company.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RequestServiceSuite) TestOnlyCustomersRequest() {
	_, err := s.svc.requests.Create(s.GetContext(), s.company, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "1"})
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))
}

func (s *RequestServiceSuite) TestPendingEntryIsNotFound() {
	pending := s.Store.AddEntry(s.T(), s.company, "Drain Cleaning", domain.FieldPlumbing, "40", domain.StatusPending)
	_, err := s.svc.requests.Create(s.GetContext(), s.customer, pending.ID, RequestInput{Address: "1 Main St", DurationHours: "1"})
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
}

func (s *RequestServiceSuite) TestRateChangeDoesNotAffectExistingRequests() {
	view, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "1 Main St", DurationHours: "2"})
	s.Require().NoError(err)

	s.Store.SetHourlyRate(s.entry.ID, "80")

	mine, err := s.svc.requests.ListMine(s.GetContext(), s.customer, 1)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(view.Request.ID, mine[0].Request.ID)
	s.Equal("100", mine[0].Request.Cost().String())
}

func (s *RequestServiceSuite) TestListings() {
	other := s.Store.AddCompany(s.T(), "other.co", domain.AnyFieldScope())
	otherEntry := s.Store.AddEntry(s.T(), other, "Lawn", domain.FieldGardening, "20", domain.StatusApproved)

	_, err := s.svc.requests.Create(s.GetContext(), s.customer, s.entry.ID, RequestInput{Address: "A", DurationHours: "1"})
	s.Require().NoError(err)
	_, err = s.svc.requests.Create(s.GetContext(), s.customer, otherEntry.ID, RequestInput{Address: "B", DurationHours: "1"})
	s.Require().NoError(err)

	mine, err := s.svc.requests.ListMine(s.GetContext(), s.customer, 1)
	s.Require().NoError(err)
	s.Len(mine, 2)
	s.Equal("Lawn", mine[0].EntryName)

	received, err := s.svc.requests.ListMine(s.GetContext(), s.company, 1)
	s.Require().NoError(err)
	s.Len(received, 1)

	forEntry, err := s.svc.requests.ListForEntry(s.GetContext(), s.company, s.entry.ID, 1)
	s.Require().NoError(err)
	s.Len(forEntry, 1)

	_, err = s.svc.requests.ListForEntry(s.GetContext(), other, s.entry.ID, 1)
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = s.svc.requests.ListForEntry(s.GetContext(), s.customer, s.entry.ID, 1)
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))
}
