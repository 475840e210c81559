package service

import (
	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/testutil"
)

type services struct {
	auth         *AuthService
	catalog      *CatalogService
	ratings      *RatingService
	requests     *RequestService
	moderation   *ModerationService
	stats        *StatsService
	profiles     *ProfileService
	notification *NotificationService
}

func newServices(base *testutil.BaseServiceTestSuite) services {
	store := base.Store
	logger := base.GetLogger()

	ratings := NewRatingService(RatingDependencies{
		CatalogRepo: store.Catalog(),
		RatingRepo:  store.Ratings(),
		Dispatcher:  base.Dispatcher,
		Logger:      logger,
	})
	catalog := NewCatalogService(CatalogDependencies{
		CatalogRepo: store.Catalog(),
		RatingRepo:  store.Ratings(),
		Summaries:   ratings,
		PageSize:    2,
		Logger:      logger,
	})
	notification := NewNotificationService(base.Dispatcher, base.Mail, logger, nil, config.AppConfig{SiteURL: "https://xpertshub.test"})
	notification.RegisterHandlers()

	return services{
		auth: NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}, AuthDependencies{
			IdentityRepo: store.Identities(),
			StaffRepo:    store.Staff(),
		}),
		catalog: catalog,
		ratings: ratings,
		requests: NewRequestService(RequestDependencies{
			CatalogRepo: store.Catalog(),
			RequestRepo: store.Requests(),
			Dispatcher:  base.Dispatcher,
			Logger:      logger,
		}),
		moderation: NewModerationService(ModerationDependencies{
			CatalogRepo: store.Catalog(),
			Dispatcher:  base.Dispatcher,
			Logger:      logger,
		}),
		stats: NewStatsService(StatsDependencies{
			IdentityRepo: store.Identities(),
			CatalogRepo:  store.Catalog(),
			RequestRepo:  store.Requests(),
			RatingRepo:   store.Ratings(),
		}),
		profiles: NewProfileService(ProfileDependencies{
			IdentityRepo:   store.Identities(),
			RequestRepo:    store.Requests(),
			RatingRepo:     store.Ratings(),
			CatalogService: catalog,
		}),
		notification: notification,
	}
}
