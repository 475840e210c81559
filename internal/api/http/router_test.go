package http

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/api/http/handlers"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/events"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/service"
	"github.com/spec-kit/xpertshub/internal/testutil"
)

type testServer struct {
	app     *fiber.App
	store   *testutil.Store
	tokens  *auth.TokenManager
	mail    *testutil.CapturingSender
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := testutil.NewStore()
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	mail := &testutil.CapturingSender{}
	metrics := observability.NewMetrics("xpertshub_test")

	service.NewNotificationService(dispatcher, mail, logger, metrics, config.AppConfig{}).RegisterHandlers()

	authService := service.NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		service.AuthDependencies{IdentityRepo: store.Identities(), StaffRepo: store.Staff()})
	ratings := service.NewRatingService(service.RatingDependencies{
		CatalogRepo: store.Catalog(), RatingRepo: store.Ratings(), Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	catalog := service.NewCatalogService(service.CatalogDependencies{
		CatalogRepo: store.Catalog(), RatingRepo: store.Ratings(), Summaries: ratings, Logger: logger,
	})
	requests := service.NewRequestService(service.RequestDependencies{
		CatalogRepo: store.Catalog(), RequestRepo: store.Requests(), Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	moderation := service.NewModerationService(service.ModerationDependencies{
		CatalogRepo: store.Catalog(), Dispatcher: dispatcher, Metrics: metrics, Logger: logger,
	})
	stats := service.NewStatsService(service.StatsDependencies{
		IdentityRepo: store.Identities(), CatalogRepo: store.Catalog(), RequestRepo: store.Requests(), RatingRepo: store.Ratings(),
	})
	profiles := service.NewProfileService(service.ProfileDependencies{
		IdentityRepo: store.Identities(), RequestRepo: store.Requests(), RatingRepo: store.Ratings(), CatalogService: catalog,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("xpertshub", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Services:       handlers.NewServicesHandler(catalog),
		Requests:       handlers.NewRequestsHandler(requests),
		Ratings:        handlers.NewRatingsHandler(ratings),
		Profiles:       handlers.NewProfilesHandler(profiles, stats),
		Moderation:     handlers.NewModerationHandler(moderation),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Identities(), store.Staff()),
		Metrics:        metrics.Handler(),
	})

	return &testServer{app: app, store: store, tokens: authService.TokenManager(), mail: mail, metrics: metrics}
}

func (s *testServer) identityToken(t *testing.T, identity *domain.Identity) string {
	t.Helper()
	_, raw, err := s.tokens.GenerateToken(identity.ID, domain.SubjectTypeIdentity, nil)
	require.NoError(t, err)
	return raw
}

func (s *testServer) staffToken(t *testing.T, staff *domain.StaffMember) string {
	t.Helper()
	_, raw, err := s.tokens.GenerateToken(staff.ID, domain.SubjectTypeStaff, &staff.Role)
	require.NoError(t, err)
	return raw
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestServiceLifecycle(t *testing.T) {
	srv := newTestServer(t)
	company := srv.store.AddCompany(t, "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	customer := srv.store.AddCustomer(t, "jane.doe")
	mod := srv.store.AddModerator(t, "mod")

	companyToken := srv.identityToken(t, company)
	customerToken := srv.identityToken(t, customer)
	modToken := srv.staffToken(t, mod)

	status, env := srv.do(t, nethttp.MethodPost, "/services", companyToken, map[string]any{
		"name": "Pipe Repair", "description": "Fix leaks", "field": "Plumbing", "hourly_rate": "50.00", "status": "approved",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	created := decode[map[string]any](t, env.Data)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "50.00", created["hourly_rate"])
	assert.Equal(t, "Pipe Repair - Pending Approval", created["title"])
	id := created["id"].(string)

	status, env = srv.do(t, nethttp.MethodGet, "/services/"+id, "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _ = srv.do(t, nethttp.MethodGet, "/services/"+id, companyToken, nil)
	assert.Equal(t, nethttp.StatusOK, status)

	status, env = srv.do(t, nethttp.MethodPost, "/moderation/services/"+id+"/approve", customerToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, env = srv.do(t, nethttp.MethodPost, "/moderation/services/"+id+"/approve", modToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "approved", decode[map[string]any](t, env.Data)["status"])

	status, env = srv.do(t, nethttp.MethodPost, "/moderation/services/"+id+"/reject", modToken, nil)
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	status, env = srv.do(t, nethttp.MethodGet, "/services/"+id, customerToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	detail := decode[map[string]any](t, env.Data)
	assert.Equal(t, true, detail["can_request"])
	assert.Equal(t, true, detail["can_rate"])
	assert.Equal(t, false, detail["can_view_requests"])

	status, env = srv.do(t, nethttp.MethodPost, "/services/"+id+"/requests", customerToken, map[string]any{
		"address": "1 Main St", "duration_hours": 2.5,
	})
	require.Equal(t, nethttp.StatusCreated, status)
	booked := decode[map[string]any](t, env.Data)
	assert.Equal(t, "125.00", booked["cost"])
	assert.Len(t, srv.mail.Messages(), 2)

	status, env = srv.do(t, nethttp.MethodPost, "/services/"+id+"/requests", customerToken, map[string]any{
		"address": "1 Main St", "duration_hours": "0.49",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "DurationTooShort", env.Error.Details["kind"])
	assert.Equal(t, "duration_hours", env.Error.Details["field"])

	status, _ = srv.do(t, nethttp.MethodPost, "/services/"+id+"/requests", companyToken, map[string]any{
		"address": "1 Main St", "duration_hours": "1",
	})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, env = srv.do(t, nethttp.MethodGet, "/services/"+id+"/requests", companyToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	status, env = srv.do(t, nethttp.MethodGet, "/me/requests", customerToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	status, _ = srv.do(t, nethttp.MethodPost, "/services/"+id+"/ratings", customerToken, map[string]any{"score": 5, "review": "great"})
	require.Equal(t, nethttp.StatusCreated, status)

	status, env = srv.do(t, nethttp.MethodPost, "/services/"+id+"/ratings", customerToken, map[string]any{"score": 4})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "AlreadyRated", env.Error.Details["kind"])

	status, env = srv.do(t, nethttp.MethodGet, "/services", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	listed := decode[[]map[string]any](t, env.Data)
	require.Len(t, listed, 1)
	assert.Equal(t, map[string]any{"average": float64(5), "count": float64(1)}, listed[0]["rating"])

	status, env = srv.do(t, nethttp.MethodGet, "/stats", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	stats := decode[domain.PlatformStats](t, env.Data)
	assert.Equal(t, 1, stats.RequestCount)
	assert.Equal(t, 1, stats.ApprovedCount)
}

func TestValidationAndAuthErrors(t *testing.T) {
	srv := newTestServer(t)
	company := srv.store.AddCompany(t, "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	companyToken := srv.identityToken(t, company)

	status, env := srv.do(t, nethttp.MethodPost, "/services", companyToken, map[string]any{
		"name": "Wiring", "description": "Sockets", "field": "Electricity", "hourly_rate": 40,
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "FieldMismatch", env.Error.Details["kind"])
	assert.Equal(t, "You can only create services in your field of work: Plumbing", env.Error.Message)

	status, env = srv.do(t, nethttp.MethodPost, "/services", companyToken, map[string]any{
		"name": "Pipes", "description": "Pipes", "field": "Plumbing", "hourly_rate": "-5",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "InvalidRate", env.Error.Details["kind"])

	status, env = srv.do(t, nethttp.MethodPost, "/services", companyToken, map[string]any{
		"description": "Pipes", "field": "Plumbing", "hourly_rate": "5",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "MissingField", env.Error.Details["kind"])
	assert.Equal(t, "name", env.Error.Details["field"])

	status, env = srv.do(t, nethttp.MethodPost, "/services", "", map[string]any{"name": "x"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, env = srv.do(t, nethttp.MethodGet, "/services?page=abc", "", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, env = srv.do(t, nethttp.MethodGet, "/services?page=3", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, env = srv.do(t, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestServiceCreationReportsFirstFailingRule(t *testing.T) {
	srv := newTestServer(t)
	company := srv.store.AddCompany(t, "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	companyToken := srv.identityToken(t, company)

	tests := []struct {
		name  string
		body  map[string]any
		kind  string
		field string
	}{
		{
			name:  "bad rate wins over empty name",
			body:  map[string]any{"name": "", "description": "", "field": "Plumbing", "hourly_rate": "-5"},
			kind:  "InvalidRate",
			field: "hourly_rate",
		},
		{
			name:  "missing rate",
			body:  map[string]any{"name": "Pipes", "description": "Pipes", "field": "Plumbing"},
			kind:  "InvalidRate",
			field: "hourly_rate",
		},
		{
			name:  "non-numeric rate",
			body:  map[string]any{"name": "Pipes", "description": "Pipes", "field": "Plumbing", "hourly_rate": "cheap"},
			kind:  "InvalidRate",
			field: "hourly_rate",
		},
		{
			name:  "rate with three decimals",
			body:  map[string]any{"name": "Pipes", "description": "Pipes", "field": "Plumbing", "hourly_rate": "50.555"},
			kind:  "InvalidRate",
			field: "hourly_rate",
		},
		{
			name:  "empty field",
			body:  map[string]any{"name": "Pipes", "description": "Pipes", "field": "", "hourly_rate": 10},
			kind:  "UnknownField",
			field: "field",
		},
		{
			name:  "empty description before unknown field",
			body:  map[string]any{"name": "Pipes", "description": " ", "field": "Astrology", "hourly_rate": 10},
			kind:  "MissingField",
			field: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := srv.do(t, nethttp.MethodPost, "/services", companyToken, tt.body)
			assert.Equal(t, nethttp.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
			assert.Equal(t, tt.kind, env.Error.Details["kind"])
			assert.Equal(t, tt.field, env.Error.Details["field"])
		})
	}
}

func TestRegistrationAndLogin(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]any{
		"first_name": "John", "last_name": "Doe", "email": "john@example.com",
		"password": "password123", "date_of_birth": "1990-04-01",
	}
	status, env := srv.do(t, nethttp.MethodPost, "/auth/customers/register", "", body)
	require.Equal(t, nethttp.StatusCreated, status)
	registered := decode[map[string]map[string]any](t, env.Data)
	assert.Equal(t, "john.doe", registered["identity"]["username"])
	assert.Equal(t, "1990-04-01", registered["identity"]["date_of_birth"])
	assert.NotEmpty(t, registered["auth"]["token"])

	status, env = srv.do(t, nethttp.MethodPost, "/auth/customers/register", "", body)
	assert.Equal(t, nethttp.StatusConflict, status)

	status, env = srv.do(t, nethttp.MethodPost, "/auth/companies/register", "", map[string]any{
		"first_name": "Fix", "last_name": "It", "email": "fixit@example.com",
		"password": "password123", "field_of_work": "All in One",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	company := decode[map[string]map[string]any](t, env.Data)
	assert.Equal(t, "All in One", company["identity"]["field_of_work"])

	status, env = srv.do(t, nethttp.MethodPost, "/auth/customers/register", "", map[string]any{
		"first_name": "Bad", "email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "email", env.Error.Details["field"])

	status, env = srv.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": "john@example.com", "password": "password123"})
	require.Equal(t, nethttp.StatusOK, status)
	login := decode[map[string]map[string]any](t, env.Data)
	token := login["auth"]["token"].(string)

	status, _ = srv.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": "john@example.com", "password": "wrong-pass"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, _ = srv.do(t, nethttp.MethodPost, "/auth/password/change", token, map[string]any{
		"current_password": "password123", "new_password": "password456",
	})
	assert.Equal(t, nethttp.StatusOK, status)

	status, env = srv.do(t, nethttp.MethodGet, "/profiles/john.doe", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	profile := decode[map[string]any](t, env.Data)
	assert.Equal(t, true, profile["self"])

	status, env = srv.do(t, nethttp.MethodGet, "/profiles/john.doe", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	public := decode[map[string]any](t, env.Data)
	assert.Equal(t, false, public["self"])
	assert.NotContains(t, public["identity"].(map[string]any), "email")
}

func TestBulkModeration(t *testing.T) {
	srv := newTestServer(t)
	company := srv.store.AddCompany(t, "acme.plumbing", domain.ConcreteScope(domain.FieldPlumbing))
	mod := srv.store.AddModerator(t, "mod")
	first := srv.store.AddEntry(t, company, "First", domain.FieldPlumbing, "10", domain.StatusPending)
	second := srv.store.AddEntry(t, company, "Second", domain.FieldPlumbing, "10", domain.StatusPending)
	done := srv.store.AddEntry(t, company, "Done", domain.FieldPlumbing, "10", domain.StatusRejected)
	modToken := srv.staffToken(t, mod)

	status, env := srv.do(t, nethttp.MethodGet, "/moderation/services", modToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 2)

	status, env = srv.do(t, nethttp.MethodPost, "/moderation/services/approve", modToken, map[string]any{
		"ids": []string{first.ID, second.ID, done.ID, "bogus"},
	})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, map[string]any{"changed": float64(2)}, decode[map[string]any](t, env.Data))

	status, _ = srv.do(t, nethttp.MethodGet, "/moderation/services", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestFieldsHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, nethttp.MethodGet, "/fields", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	fields := decode[map[string][]string](t, env.Data)
	assert.Len(t, fields["fields"], len(domain.Fields()))
	assert.Contains(t, fields["company_scopes"], domain.AllInOneLabel)
	assert.NotContains(t, fields["fields"], domain.AllInOneLabel)

	status, _ = srv.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = srv.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "xpertshub_test_http_requests_total")
}
