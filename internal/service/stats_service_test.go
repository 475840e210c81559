package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/xpertshub/internal/cache"
	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/testutil"
)

type StatsServiceSuite struct {
	testutil.BaseServiceTestSuite
	svc services
}

func TestStatsService(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

func (s *StatsServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.svc = newServices(&s.BaseServiceTestSuite)
}

func (s *StatsServiceSuite) TestEmptyPlatform() {
	stats, err := s.svc.stats.Platform(s.GetContext())
	s.Require().NoError(err)
	s.Zero(stats.Customers)
	s.Zero(stats.RequestCount)
	s.Empty(stats.ByField)
	s.Empty(stats.MostRequested)
	s.Empty(stats.TopRated)
}

func (s *StatsServiceSuite) TestPlatformAggregates() {
	plumber := s.Store.AddCompany(s.T(), "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	gardener := s.Store.AddCompany(s.T(), "green.thumb", domain.ConcreteScope(domain.FieldGardening))
	jane := s.Store.AddCustomer(s.T(), "jane.doe")
	john := s.Store.AddCustomer(s.T(), "john.doe")
	s.Store.AddCustomer(s.T(), "max.doe")

	pipes := s.Store.AddEntry(s.T(), plumber, "Pipe Repair", domain.FieldPlumbing, "50", domain.StatusApproved)
	drains := s.Store.AddEntry(s.T(), plumber, "Drains", domain.FieldPlumbing, "30", domain.StatusApproved)
	lawn := s.Store.AddEntry(s.T(), gardener, "Lawn", domain.FieldGardening, "20", domain.StatusApproved)
	s.Store.AddEntry(s.T(), gardener, "Hedges", domain.FieldGardening, "20", domain.StatusPending)

	for _, entryID := range []string{pipes.ID, pipes.ID, lawn.ID} {
		_, err := s.svc.requests.Create(s.GetContext(), jane, entryID, RequestInput{Address: "1 Main St", DurationHours: "1"})
		s.Require().NoError(err)
	}
	_, err := s.svc.ratings.RateService(s.GetContext(), jane, lawn.ID, RatingInput{Score: 5})
	s.Require().NoError(err)
	_, err = s.svc.ratings.RateService(s.GetContext(), john, drains.ID, RatingInput{Score: 3})
	s.Require().NoError(err)

	stats, err := s.svc.stats.Platform(s.GetContext())
	s.Require().NoError(err)
	s.Equal(3, stats.Customers)
	s.Equal(2, stats.Companies)
	s.Equal(3, stats.ApprovedCount)
	s.Equal(1, stats.PendingCount)
	s.Equal(3, stats.RequestCount)
	s.Equal([]domain.FieldCount{
		{Field: domain.FieldPlumbing, Count: 2},
		{Field: domain.FieldGardening, Count: 1},
	}, stats.ByField)

	s.Require().Len(stats.MostRequested, 2)
	s.Equal("Pipe Repair", stats.MostRequested[0].Name)
	s.Equal(2, stats.MostRequested[0].Requests)

	s.Require().Len(stats.TopRated, 2)
	s.Equal("Lawn", stats.TopRated[0].Name)
	s.Equal("green.thumb", stats.TopRated[0].CompanyName)
	s.Equal(domain.RatingSummary{Average: 3, Count: 1}, stats.TopRated[1].Rating)
}

func (s *StatsServiceSuite) TestRegistrationRefreshesCachedCounts() {
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	shared := cache.New(client, time.Minute, s.GetLogger())

	stats := NewStatsService(StatsDependencies{
		IdentityRepo: s.Store.Identities(),
		CatalogRepo:  s.Store.Catalog(),
		RequestRepo:  s.Store.Requests(),
		RatingRepo:   s.Store.Ratings(),
		Cache:        shared,
	})
	authService := NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}, AuthDependencies{
		IdentityRepo: s.Store.Identities(),
		StaffRepo:    s.Store.Staff(),
		Cache:        shared,
	})

	before, err := stats.Platform(s.GetContext())
	s.Require().NoError(err)
	s.True(mr.Exists("xpertshub:" + cache.StatsKey))

	_, err = authService.RegisterCustomer(s.GetContext(), CustomerRegistration{RegistrationInput: RegistrationInput{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@example.com",
		Password:  "supersecret",
	}})
	s.Require().NoError(err)
	s.False(mr.Exists("xpertshub:" + cache.StatsKey))

	after, err := stats.Platform(s.GetContext())
	s.Require().NoError(err)
	s.Equal(before.Customers+1, after.Customers)
}
