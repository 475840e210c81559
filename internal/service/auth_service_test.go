package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/testutil"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

type AuthServiceSuite struct {
	testutil.BaseServiceTestSuite
	svc services
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.svc = newServices(&s.BaseServiceTestSuite)
}

func (s *AuthServiceSuite) customer(first, last, email string) CustomerRegistration {
	return CustomerRegistration{RegistrationInput: RegistrationInput{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  testutil.Password,
	}}
}

func (s *AuthServiceSuite) TestRegisterCustomerGeneratesUsernames() {
	first, err := s.svc.auth.RegisterCustomer(s.GetContext(), s.customer("John", "Doe", "john@example.com"))
	s.Require().NoError(err)
	s.Equal("john.doe", first.Identity.Username)
	s.True(first.Identity.IsCustomer())
	s.NotEmpty(first.Token)

	second, err := s.svc.auth.RegisterCustomer(s.GetContext(), s.customer("John", "Doe", "john2@example.com"))
	s.Require().NoError(err)
	s.Equal("john.doe1", second.Identity.Username)

	third, err := s.svc.auth.RegisterCustomer(s.GetContext(), s.customer("John", "Doe", "john3@example.com"))
	s.Require().NoError(err)
	s.Equal("john.doe2", third.Identity.Username)
}

func (s *AuthServiceSuite) TestGenerateUsernameNormalizes() {
	username, err := s.svc.auth.GenerateUsername(s.GetContext(), "Mary Ann", "Van Der Berg")
	s.Require().NoError(err)
	s.Equal("maryann.vanderberg", username)

	_, err = s.svc.auth.GenerateUsername(s.GetContext(), "  ", "Doe")
	s.True(apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func (s *AuthServiceSuite) TestRegisterDuplicateEmail() {
	_, err := s.svc.auth.RegisterCustomer(s.GetContext(), s.customer("Jane", "Doe", "jane@example.com"))
	s.Require().NoError(err)

	_, err = s.svc.auth.RegisterCustomer(s.GetContext(), s.customer("Janet", "Doe", "JANE@example.com"))
	s.True(apperrors.HasCode(err, apperrors.CodeConflict))
}

func (s *AuthServiceSuite) TestRegisterCustomerRejectsFutureBirthDate() {
	input := s.customer("Baby", "Doe", "baby@example.com")
	future := time.Now().Add(48 * time.Hour)
	input.DateOfBirth = &future

	_, err := s.svc.auth.RegisterCustomer(s.GetContext(), input)
	s.True(apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func (s *AuthServiceSuite) TestRegisterCompanyScopes() {
	input := CompanyRegistration{
		RegistrationInput: RegistrationInput{FirstName: "Acme", LastName: "Plumbing", Email: "acme@example.com", Password: testutil.Password},
		FieldOfWork:       "Plumbing",
	}
	session, err := s.svc.auth.RegisterCompany(s.GetContext(), input)
	s.Require().NoError(err)
	company, ok := session.Identity.AsCompany()
	s.Require().True(ok)
	s.Equal(domain.ConcreteScope(domain.FieldPlumbing), company.Scope)

	input.Email = "fixit@example.com"
	input.FieldOfWork = domain.AllInOneLabel
	session, err = s.svc.auth.RegisterCompany(s.GetContext(), input)
	s.Require().NoError(err)
	company, _ = session.Identity.AsCompany()
	s.True(company.Scope.IsAny())
	s.Equal("acme.plumbing1", session.Identity.Username)

	input.Email = "astro@example.com"
	input.FieldOfWork = "Astrology"
	_, err = s.svc.auth.RegisterCompany(s.GetContext(), input)
	s.True(apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func (s *AuthServiceSuite) TestRegisterWeakPassword() {
	input := s.customer("Weak", "Pass", "weak@example.com")
	input.Password = "short"
	_, err := s.svc.auth.RegisterCustomer(s.GetContext(), input)
	s.True(apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func (s *AuthServiceSuite) TestLoginIdentity() {
	customer := s.Store.AddCustomer(s.T(), "jane.doe")

	session, err := s.svc.auth.LoginIdentity(s.GetContext(), customer.Email, testutil.Password)
	s.Require().NoError(err)
	s.Equal(customer.ID, session.Identity.ID)

	claims, err := s.svc.auth.TokenManager().ParseToken(session.Token)
	s.Require().NoError(err)
	s.Equal(customer.ID, claims.Subject)
	s.Equal(domain.SubjectTypeIdentity, claims.Kind)

	_, err = s.svc.auth.LoginIdentity(s.GetContext(), customer.Email, "wrong-password")
	s.True(apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = s.svc.auth.LoginIdentity(s.GetContext(), "nobody@example.com", testutil.Password)
	s.True(apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func (s *AuthServiceSuite) TestLoginStaff() {
	mod := s.Store.AddModerator(s.T(), "mod")

	session, err := s.svc.auth.LoginStaff(s.GetContext(), mod.Email, testutil.Password)
	s.Require().NoError(err)
	s.Equal(mod.ID, session.StaffMember.ID)

	claims, err := s.svc.auth.TokenManager().ParseToken(session.Token)
	s.Require().NoError(err)
	s.Equal(domain.SubjectTypeStaff, claims.Kind)
	s.Require().NotNil(claims.Role)
	s.Equal(domain.StaffRoleModerator, *claims.Role)
}

func (s *AuthServiceSuite) TestChangePassword() {
	customer := s.Store.AddCustomer(s.T(), "jane.doe")
	subject := AuthSubject{Type: domain.SubjectTypeIdentity, ID: customer.ID}

	err := s.svc.auth.ChangePassword(s.GetContext(), subject, "wrong-password", "new-password-1")
	s.True(apperrors.HasCode(err, apperrors.CodeUnauthorized))

	s.Require().NoError(s.svc.auth.ChangePassword(s.GetContext(), subject, testutil.Password, "new-password-1"))

	_, err = s.svc.auth.LoginIdentity(s.GetContext(), customer.Email, testutil.Password)
	s.True(apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = s.svc.auth.LoginIdentity(s.GetContext(), customer.Email, "new-password-1")
	s.NoError(err)
}
