// Package seed fills an empty marketplace with demo accounts, approved
// services, requests and ratings.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
)

// Password is shared by every seeded account.
const Password = "password123"

const (
	servicesPerCompany = 3
	requestCount       = 30
	ratingAttempts     = 40
	defaultAdminEmail  = "admin@xpertshub.local"
)

type person struct{ first, last string }

var customers = []person{
	{"John", "Doe"}, {"Jane", "Smith"}, {"Mike", "Johnson"}, {"Sarah", "Wilson"}, {"David", "Brown"},
	{"Lisa", "Davis"}, {"Chris", "Miller"}, {"Amanda", "Garcia"}, {"Kevin", "Martinez"}, {"Nicole", "Anderson"},
	{"Ryan", "Taylor"}, {"Jessica", "Thomas"}, {"Brandon", "Jackson"}, {"Ashley", "White"}, {"Justin", "Harris"},
	{"Stephanie", "Martin"}, {"Tyler", "Thompson"}, {"Rachel", "Clark"}, {"Jordan", "Lewis"}, {"Michelle", "Walker"},
}

type companySeed struct {
	first, last string
	scope       string
}

var companies = []companySeed{
	{"Elite", "Plumbers", "Plumbing"}, {"Ace", "Electricians", "Electricity"}, {"Pro", "Painters", "Painting"},
	{"Clean", "Masters", "Housekeeping"}, {"Garden", "Experts", "Gardening"}, {"Wood", "Crafters", "Carpentry"},
	{"Cool Air", "Tech", "Air Conditioner"}, {"Lock", "Specialists", "Locks"}, {"Design", "Pros", "Interior Design"},
	{"Home", "Fixers", "Home Machines"}, {"Water Heater", "Pros", "Water Heaters"}, {"Total", "Solutions", domain.AllInOneLabel},
	{"Quick", "Plumbers", "Plumbing"}, {"Spark", "Electric", "Electricity"}, {"Color", "Masters", "Painting"},
	{"Tidy", "Homes", "Housekeeping"}, {"Green", "Thumbs", "Gardening"}, {"Custom", "Wood", "Carpentry"},
	{"Arctic", "Cooling", "Air Conditioner"}, {"Secure", "Locks", "Locks"},
}

var serviceTemplates = map[domain.FieldOfWork][]string{
	domain.FieldPlumbing:       {"Emergency Plumbing", "Pipe Installation", "Drain Cleaning", "Leak Repair"},
	domain.FieldElectricity:    {"Wiring Installation", "Electrical Repair", "Panel Upgrade", "Outlet Installation"},
	domain.FieldPainting:       {"Interior Painting", "Exterior Painting", "Wall Preparation", "Color Consultation"},
	domain.FieldHousekeeping:   {"Deep Cleaning", "Regular Cleaning", "Move-in Cleaning", "Office Cleaning"},
	domain.FieldGardening:      {"Lawn Maintenance", "Garden Design", "Tree Pruning", "Landscaping"},
	domain.FieldCarpentry:      {"Custom Furniture", "Cabinet Installation", "Deck Building", "Door Installation"},
	domain.FieldAirConditioner: {"AC Installation", "AC Repair", "AC Maintenance", "Duct Cleaning"},
	domain.FieldLocks:          {"Lock Installation", "Lock Repair", "Key Duplication", "Security Upgrade"},
	domain.FieldInteriorDesign: {"Room Design", "Space Planning", "Furniture Selection", "Color Schemes"},
	domain.FieldHomeMachines:   {"Appliance Repair", "Installation Service", "Maintenance Check", "Troubleshooting"},
	domain.FieldWaterHeaters:   {"Heater Installation", "Heater Repair", "Maintenance Service", "Replacement"},
}

// wildcardFields are the fields "All in One" companies publish in.
var wildcardFields = []domain.FieldOfWork{
	domain.FieldPlumbing, domain.FieldElectricity, domain.FieldPainting, domain.FieldHousekeeping,
}

var streets = []string{"Main St", "Oak Ave", "Pine Rd", "Elm Dr", "Maple Ln"}

var reviews = []string{
	"Excellent service! Highly recommended.",
	"Great work, very professional.",
	"Good quality service, will use again.",
	"Satisfied with the work done.",
	"Professional and timely service.",
	"",
	"Outstanding work quality.",
	"Very pleased with the results.",
}

// Repositories are the tables the seeder writes to.
type Repositories struct {
	Identities repository.IdentityRepository
	Staff      repository.StaffRepository
	Catalog    repository.CatalogRepository
	Requests   repository.RequestRepository
	Ratings    repository.RatingRepository
}

// Summary counts what a run created.
type Summary struct {
	Skipped   bool
	Admin     string
	Customers int
	Companies int
	Services  int
	Requests  int
	Ratings   int
}

// Seeder writes demo data.
type Seeder struct {
	repos      Repositories
	admin      config.SeedConfig
	bcryptCost int
	rnd        *rand.Rand
	logger     *zap.Logger
}

// New builds a seeder. A nil rnd is seeded from the clock.
func New(repos Repositories, admin config.SeedConfig, bcryptCost int, rnd *rand.Rand, logger *zap.Logger) *Seeder {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{repos: repos, admin: admin, bcryptCost: bcryptCost, rnd: rnd, logger: logger}
}

// Run seeds the database once. When the first demo customer already exists
// it returns a skipped summary and writes nothing.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if _, err := s.repos.Identities.GetByEmail(ctx, customerEmail(customers[0])); err == nil {
		summary.Skipped = true
		return summary, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return summary, err
	}

	hash, err := auth.HashPassword(Password, s.bcryptCost)
	if err != nil {
		return summary, err
	}

	admin, err := s.ensureAdmin(ctx)
	if err != nil {
		return summary, fmt.Errorf("admin: %w", err)
	}
	summary.Admin = admin.Email

	seededCustomers, err := s.createCustomers(ctx, hash)
	if err != nil {
		return summary, fmt.Errorf("customers: %w", err)
	}
	summary.Customers = len(seededCustomers)

	entries := []domain.CatalogEntry{}
	for _, c := range companies {
		company, err := s.createCompany(ctx, c, hash)
		if err != nil {
			return summary, fmt.Errorf("company %s %s: %w", c.first, c.last, err)
		}
		summary.Companies++

		created, err := s.createServices(ctx, company)
		if err != nil {
			return summary, fmt.Errorf("services for %s: %w", company.Username, err)
		}
		entries = append(entries, created...)
	}

	ids := lo.Map(entries, func(e domain.CatalogEntry, _ int) string { return e.ID })
	approved, err := s.repos.Catalog.TransitionMany(ctx, ids, domain.StatusApproved, admin.ID, time.Now().UTC())
	if err != nil {
		return summary, fmt.Errorf("approve services: %w", err)
	}
	summary.Services = approved

	if summary.Requests, err = s.createRequests(ctx, seededCustomers, entries); err != nil {
		return summary, fmt.Errorf("requests: %w", err)
	}
	if summary.Ratings, err = s.createRatings(ctx, seededCustomers, entries); err != nil {
		return summary, fmt.Errorf("ratings: %w", err)
	}

	s.logger.Info("database seeded",
		zap.Int("customers", summary.Customers),
		zap.Int("companies", summary.Companies),
		zap.Int("services", summary.Services),
		zap.Int("requests", summary.Requests),
		zap.Int("ratings", summary.Ratings))
	return summary, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context) (*domain.StaffMember, error) {
	email := s.admin.AdminEmail
	if email == "" {
		email = defaultAdminEmail
	}
	existing, err := s.repos.Staff.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	password := s.admin.AdminPassword
	if password == "" {
		password = Password
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &domain.StaffMember{
		Name:         lo.Ternary(s.admin.AdminName != "", s.admin.AdminName, "admin"),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.StaffRoleAdmin,
		Active:       true,
	}
	if err := s.repos.Staff.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func customerEmail(p person) string {
	return fmt.Sprintf("%s.%s@customer.example.com", lower(p.first), lower(p.last))
}

func (s *Seeder) createCustomers(ctx context.Context, hash string) ([]*domain.Identity, error) {
	out := make([]*domain.Identity, 0, len(customers))
	for i, p := range customers {
		dob := time.Date(1980+i, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC)
		customer := domain.NewCustomer(username(p.first, p.last), customerEmail(p), &dob)
		customer.FirstName, customer.LastName = p.first, p.last
		customer.PasswordHash = hash
		if err := s.repos.Identities.Create(ctx, customer); err != nil {
			return nil, err
		}
		out = append(out, customer)
	}
	return out, nil
}

func (s *Seeder) createCompany(ctx context.Context, c companySeed, hash string) (*domain.Identity, error) {
	scope, err := domain.ParseFieldScope(c.scope)
	if err != nil {
		return nil, err
	}
	name := username(c.first, c.last)
	company, err := domain.NewCompany(name, name+"@company.example.com", scope)
	if err != nil {
		return nil, err
	}
	company.FirstName, company.LastName = c.first, c.last
	company.PasswordHash = hash
	if err := s.repos.Identities.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// createServices stores pending entries that go through the moderation
// transition afterwards.
func (s *Seeder) createServices(ctx context.Context, company *domain.Identity) ([]domain.CatalogEntry, error) {
	profile, _ := company.AsCompany()

	type offer struct {
		name  string
		field domain.FieldOfWork
	}
	var offers []offer
	if field, concrete := profile.Scope.Field(); concrete {
		offers = lo.Map(serviceTemplates[field], func(name string, _ int) offer { return offer{name, field} })
	} else {
		all := lo.FlatMap(domain.Fields(), func(f domain.FieldOfWork, _ int) []string { return serviceTemplates[f] })
		offers = lo.Map(all, func(name string, _ int) offer {
			return offer{name, wildcardFields[s.rnd.Intn(len(wildcardFields))]}
		})
		s.rnd.Shuffle(len(offers), func(i, j int) { offers[i], offers[j] = offers[j], offers[i] })
	}

	out := make([]domain.CatalogEntry, 0, servicesPerCompany)
	for _, o := range lo.Slice(offers, 0, servicesPerCompany) {
		validated, err := domain.ValidateNewService(company, domain.ServiceDraft{
			Name:        fmt.Sprintf("%s by %s", o.name, company.Username),
			Description: fmt.Sprintf("Professional %s service provided by experienced technicians.", strings.ToLower(o.name)),
			Field:       o.field.String(),
			HourlyRate:  s.amount(25, 100).String(),
		})
		if err != nil {
			return nil, err
		}
		entry := validated.Entry(company.ID)
		if err := s.repos.Catalog.Create(ctx, entry); err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, nil
}

func (s *Seeder) createRequests(ctx context.Context, customers []*domain.Identity, entries []domain.CatalogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	created := 0
	for i := 0; i < requestCount; i++ {
		customer := customers[s.rnd.Intn(len(customers))]
		entry := entries[s.rnd.Intn(len(entries))]
		request := &domain.ServiceRequest{
			EntryID:       entry.ID,
			CustomerID:    customer.ID,
			Address:       fmt.Sprintf("%d %s", 100+s.rnd.Intn(9900), streets[s.rnd.Intn(len(streets))]),
			DurationHours: s.amount(1, 8),
			HourlyRate:    entry.HourlyRate,
		}
		if err := s.repos.Requests.Create(ctx, request); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) createRatings(ctx context.Context, customers []*domain.Identity, entries []domain.CatalogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	created := 0
	for i := 0; i < ratingAttempts; i++ {
		customer := customers[s.rnd.Intn(len(customers))]
		entry := entries[s.rnd.Intn(len(entries))]
		rated, err := s.repos.Ratings.Exists(ctx, entry.ID, customer.ID)
		if err != nil {
			return created, err
		}
		if rated {
			continue
		}
		rating := &domain.Rating{
			EntryID:    entry.ID,
			CustomerID: customer.ID,
			Score:      3 + s.rnd.Intn(3),
			Review:     reviews[s.rnd.Intn(len(reviews))],
		}
		if err := s.repos.Ratings.Create(ctx, rating); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

// amount returns a random two-decimal value in [min, max).
func (s *Seeder) amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + s.rnd.Float64()*(max-min)).Round(2)
}

func username(first, last string) string {
	return lower(first) + "." + lower(last)
}

func lower(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}
