package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
	"github.com/spec-kit/xpertshub/internal/testutil"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

type ModerationServiceSuite struct {
	testutil.BaseServiceTestSuite
	svc     services
	company *domain.Identity
	mod     *domain.StaffMember
}

func TestModerationService(t *testing.T) {
	suite.Run(t, new(ModerationServiceSuite))
}

func (s *ModerationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.svc = newServices(&s.BaseServiceTestSuite)
	s.company = s.Store.AddCompany(s.T(), "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	s.mod = s.Store.AddModerator(s.T(), "mod")
}

func (s *ModerationServiceSuite) pending(name string) *domain.CatalogEntry {
	return s.Store.AddEntry(s.T(), s.company, name, domain.FieldPlumbing, "40", domain.StatusPending)
}

func (s *ModerationServiceSuite) TestApproveRecordsModerator() {
	entry := s.pending("Pipe Repair")

	approved, err := s.svc.moderation.Approve(s.GetContext(), s.mod, entry.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, approved.Status)
	s.Require().NotNil(approved.ModeratedBy)
	s.Equal(s.mod.ID, *approved.ModeratedBy)
	s.NotNil(approved.ModeratedAt)

	page, err := s.svc.catalog.ListApproved(s.GetContext(), "", 1)
	s.Require().NoError(err)
	s.Equal(1, page.Total)
}

func (s *ModerationServiceSuite) TestTerminalStatesAreFinal() {
	entry := s.pending("Pipe Repair")
	_, err := s.svc.moderation.Reject(s.GetContext(), s.mod, entry.ID)
	s.Require().NoError(err)

	_, err = s.svc.moderation.Approve(s.GetContext(), s.mod, entry.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = s.svc.moderation.Reject(s.GetContext(), s.mod, entry.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func (s *ModerationServiceSuite) TestRequiresActiveModerator() {
	entry := s.pending("Pipe Repair")

	_, err := s.svc.moderation.Approve(s.GetContext(), nil, entry.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))

	inactive := *s.mod
	inactive.Active = false
	_, err = s.svc.moderation.Approve(s.GetContext(), &inactive, entry.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))
}

func (s *ModerationServiceSuite) TestUnknownEntry() {
	_, err := s.svc.moderation.Approve(s.GetContext(), s.mod, uuid.NewString())
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
}

func (s *ModerationServiceSuite) TestBulkSkipsNonPending() {
	first := s.pending("First")
	second := s.pending("Second")
	done := s.Store.AddEntry(s.T(), s.company, "Done", domain.FieldPlumbing, "40", domain.StatusApproved)

	changed, err := s.svc.moderation.ApproveMany(s.GetContext(), s.mod,
		[]string{first.ID, second.ID, first.ID, done.ID, "garbage", uuid.NewString()})
	s.Require().NoError(err)
	s.Equal(2, changed)

	changed, err = s.svc.moderation.RejectMany(s.GetContext(), s.mod, []string{first.ID, second.ID})
	s.Require().NoError(err)
	s.Zero(changed)

	changed, err = s.svc.moderation.RejectMany(s.GetContext(), s.mod, nil)
	s.Require().NoError(err)
	s.Zero(changed)
}

func (s *ModerationServiceSuite) TestListQueue() {
	s.pending("First")
	s.pending("Second")
	s.Store.AddEntry(s.T(), s.company, "Done", domain.FieldPlumbing, "40", domain.StatusApproved)

	queue, err := s.svc.moderation.ListQueue(s.GetContext(), s.mod, "", 1)
	s.Require().NoError(err)
	s.Len(queue, 2)
	s.Equal("Second", queue[0].Name)

	approved, err := s.svc.moderation.ListQueue(s.GetContext(), s.mod, "approved", 1)
	s.Require().NoError(err)
	s.Len(approved, 1)

	_, err = s.svc.moderation.ListQueue(s.GetContext(), s.mod, "archived", 1)
	s.True(apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

// lostTransitionRace reads entries normally but never wins the conditional
// update, as when another moderator commits first.
type lostTransitionRace struct {
	repository.CatalogRepository
}

func (lostTransitionRace) Transition(context.Context, string, domain.ModerationStatus, string, time.Time) (bool, error) {
	return false, nil
}

func (s *ModerationServiceSuite) TestLostRaceIsConflict() {
	entry := s.pending("Pipe Repair")
	moderation := NewModerationService(ModerationDependencies{
		CatalogRepo: lostTransitionRace{s.Store.Catalog()},
		Logger:      s.GetLogger(),
	})

	_, err := moderation.Approve(s.GetContext(), s.mod, entry.ID)
	s.Require().Error(err)
	s.True(apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = moderation.Reject(s.GetContext(), s.mod, entry.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeConflict))

	stored, err := s.Store.Catalog().GetByID(s.GetContext(), entry.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, stored.Status)
}
