// Package testutil provides in-memory repositories for service and handler
// tests. Check-and-write operations run under one mutex, so they keep the
// same atomicity as the Postgres constraints and conditional updates.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
)

// Store holds every table in memory.
type Store struct {
	mu         sync.Mutex
	clock      time.Time
	identities map[string]domain.Identity
	staff      map[string]domain.StaffMember
	entries    map[string]domain.CatalogEntry
	requests   map[string]domain.ServiceRequest
	ratings    map[string]domain.Rating
}

// NewStore returns an empty store whose clock starts at a fixed instant.
func NewStore() *Store {
	return &Store{
		clock:      time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC),
		identities: map[string]domain.Identity{},
		staff:      map[string]domain.StaffMember{},
		entries:    map[string]domain.CatalogEntry{},
		requests:   map[string]domain.ServiceRequest{},
		ratings:    map[string]domain.Rating{},
	}
}

// tick advances the store clock so creation order is strictly increasing.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

// Identities returns the identity repository view.
func (s *Store) Identities() repository.IdentityRepository { return identityRepo{s} }

// Staff returns the staff repository view.
func (s *Store) Staff() repository.StaffRepository { return staffRepo{s} }

// Catalog returns the catalog repository view.
func (s *Store) Catalog() repository.CatalogRepository { return catalogRepo{s} }

// Requests returns the request repository view.
func (s *Store) Requests() repository.RequestRepository { return requestRepo{s} }

// Ratings returns the rating repository view.
func (s *Store) Ratings() repository.RatingRepository { return ratingRepo{s} }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

type identityRepo struct{ s *Store }

func (r identityRepo) Create(_ context.Context, identity *domain.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.identities {
		if strings.EqualFold(existing.Email, identity.Email) || existing.Username == identity.Username {
			return fmt.Errorf("%w: identities", repository.ErrDuplicate)
		}
	}
	identity.ID = uuid.NewString()
	identity.CreatedAt = r.s.tick()
	r.s.identities[identity.ID] = *identity
	return nil
}

func (r identityRepo) find(match func(domain.Identity) bool) (*domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, identity := range r.s.identities {
		if match(identity) {
			found := identity
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r identityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	return r.find(func(i domain.Identity) bool { return i.ID == id })
}

func (r identityRepo) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	return r.find(func(i domain.Identity) bool { return strings.EqualFold(i.Email, email) })
}

func (r identityRepo) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	return r.find(func(i domain.Identity) bool { return i.Username == username })
}

func (r identityRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r identityRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	identity, ok := r.s.identities[id]
	if !ok {
		return pgx.ErrNoRows
	}
	identity.PasswordHash = passwordHash
	r.s.identities[id] = identity
	return nil
}

func (r identityRepo) CountByRole(_ context.Context, role domain.Role) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return lo.CountBy(lo.Values(r.s.identities), func(i domain.Identity) bool { return i.Role() == role }), nil
}

type staffRepo struct{ s *Store }

func (r staffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.staff {
		if strings.EqualFold(existing.Email, staff.Email) {
			return fmt.Errorf("%w: staff_members", repository.ErrDuplicate)
		}
	}
	staff.ID = uuid.NewString()
	staff.CreatedAt = r.s.tick()
	staff.UpdatedAt = staff.CreatedAt
	r.s.staff[staff.ID] = *staff
	return nil
}

func (r staffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &staff, nil
}

func (r staffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, staff := range r.s.staff {
		if strings.EqualFold(staff.Email, email) {
			found := staff
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r staffRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.PasswordHash = passwordHash
	r.s.staff[id] = staff
	return nil
}

type catalogRepo struct{ s *Store }

// withCompany must be called with the lock held.
func (r catalogRepo) withCompany(entry domain.CatalogEntry) domain.CatalogEntry {
	entry.CompanyName = r.s.identities[entry.CompanyID].Username
	return entry
}

func (r catalogRepo) Create(_ context.Context, entry *domain.CatalogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.identities[entry.CompanyID]; !ok {
		return fmt.Errorf("unknown company %s", entry.CompanyID)
	}
	if !entry.HourlyRate.IsPositive() || !domain.FitsNumeric(entry.HourlyRate, domain.HourlyRatePrecision) {
		return fmt.Errorf("hourly_rate %s out of range for NUMERIC(%d,%d)", entry.HourlyRate, domain.HourlyRatePrecision, domain.AmountScale)
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.s.tick()
	r.s.entries[entry.ID] = *entry
	return nil
}

func (r catalogRepo) GetByID(_ context.Context, id string) (*domain.CatalogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	entry = r.withCompany(entry)
	return &entry, nil
}

func (r catalogRepo) filtered(filter repository.CatalogFilter) []domain.CatalogEntry {
	matches := lo.Filter(lo.Values(r.s.entries), func(e domain.CatalogEntry, _ int) bool {
		if filter.Status != nil && e.Status != *filter.Status {
			return false
		}
		if filter.Field != nil && e.Field != *filter.Field {
			return false
		}
		if filter.CompanyID != nil && e.CompanyID != *filter.CompanyID {
			return false
		}
		return true
	})
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

func (r catalogRepo) List(_ context.Context, filter repository.CatalogFilter) ([]domain.CatalogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	return lo.Map(page(r.filtered(filter), limit, filter.Offset), func(e domain.CatalogEntry, _ int) domain.CatalogEntry {
		return r.withCompany(e)
	}), nil
}

func (r catalogRepo) Count(_ context.Context, filter repository.CatalogFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(filter)), nil
}

// transitionLocked must be called with the lock held.
func (r catalogRepo) transitionLocked(id string, status domain.ModerationStatus, moderatorID string, at time.Time) bool {
	entry, ok := r.s.entries[id]
	if !ok || entry.Status != domain.StatusPending {
		return false
	}
	entry.Status = status
	entry.ModeratedBy = &moderatorID
	entry.ModeratedAt = &at
	r.s.entries[id] = entry
	return true
}

func (r catalogRepo) Transition(_ context.Context, id string, status domain.ModerationStatus, moderatorID string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transitionLocked(id, status, moderatorID, at), nil
}

func (r catalogRepo) TransitionMany(_ context.Context, ids []string, status domain.ModerationStatus, moderatorID string, at time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	changed := 0
	for _, id := range lo.Uniq(ids) {
		if r.transitionLocked(id, status, moderatorID, at) {
			changed++
		}
	}
	return changed, nil
}

func (r catalogRepo) CountByField(_ context.Context) ([]domain.FieldCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	approved := lo.Filter(lo.Values(r.s.entries), func(e domain.CatalogEntry, _ int) bool { return e.IsApproved() })
	counts := lo.CountValuesBy(approved, func(e domain.CatalogEntry) domain.FieldOfWork { return e.Field })
	result := lo.MapToSlice(counts, func(f domain.FieldOfWork, n int) domain.FieldCount {
		return domain.FieldCount{Field: f, Count: n}
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Field < result[j].Field
	})
	return result, nil
}

type requestRepo struct{ s *Store }

func (r requestRepo) Create(_ context.Context, request *domain.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[request.EntryID]; !ok {
		return fmt.Errorf("unknown entry %s", request.EntryID)
	}
	if request.DurationHours.LessThan(domain.MinimumDurationHours) || !domain.FitsNumeric(request.DurationHours, domain.DurationPrecision) {
		return fmt.Errorf("duration_hours %s out of range for NUMERIC(%d,%d)", request.DurationHours, domain.DurationPrecision, domain.AmountScale)
	}
	if !domain.FitsNumeric(request.HourlyRate, domain.HourlyRatePrecision) {
		return fmt.Errorf("hourly_rate %s out of range for NUMERIC(%d,%d)", request.HourlyRate, domain.HourlyRatePrecision, domain.AmountScale)
	}
	request.ID = uuid.NewString()
	request.CreatedAt = r.s.tick()
	r.s.requests[request.ID] = *request
	return nil
}

// view must be called with the lock held.
func (r requestRepo) view(req domain.ServiceRequest) domain.ServiceRequestView {
	entry := r.s.entries[req.EntryID]
	company := r.s.identities[entry.CompanyID]
	customer := r.s.identities[req.CustomerID]
	return domain.ServiceRequestView{
		Request:      req,
		EntryName:    entry.Name,
		EntryField:   entry.Field,
		CompanyID:    entry.CompanyID,
		CompanyName:  company.Username,
		CompanyMail:  company.Email,
		CustomerName: customer.Username,
		CustomerMail: customer.Email,
	}
}

func (r requestRepo) GetView(_ context.Context, id string) (*domain.ServiceRequestView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	view := r.view(req)
	return &view, nil
}

func (r requestRepo) list(match func(domain.ServiceRequestView) bool, limit, offset int) []domain.ServiceRequestView {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	views := lo.Filter(lo.Map(lo.Values(r.s.requests), func(req domain.ServiceRequest, _ int) domain.ServiceRequestView {
		return r.view(req)
	}), func(v domain.ServiceRequestView, _ int) bool { return match(v) })
	sort.Slice(views, func(i, j int) bool {
		return views[i].Request.CreatedAt.After(views[j].Request.CreatedAt)
	})
	return page(views, limit, offset)
}

func (r requestRepo) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]domain.ServiceRequestView, error) {
	return r.list(func(v domain.ServiceRequestView) bool { return v.Request.CustomerID == customerID }, limit, offset), nil
}

func (r requestRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]domain.ServiceRequestView, error) {
	return r.list(func(v domain.ServiceRequestView) bool { return v.CompanyID == companyID }, limit, offset), nil
}

func (r requestRepo) ListByEntry(_ context.Context, entryID string, limit, offset int) ([]domain.ServiceRequestView, error) {
	return r.list(func(v domain.ServiceRequestView) bool { return v.Request.EntryID == entryID }, limit, offset), nil
}

func (r requestRepo) CountByCompany(_ context.Context, companyID string) (int, error) {
	return len(r.list(func(v domain.ServiceRequestView) bool { return v.CompanyID == companyID }, 0, 0)), nil
}

func (r requestRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.requests), nil
}

func (r requestRepo) MostRequested(_ context.Context, limit int) ([]domain.RequestedEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := lo.CountValuesBy(lo.Values(r.s.requests), func(req domain.ServiceRequest) string { return req.EntryID })
	result := []domain.RequestedEntry{}
	for entryID, n := range counts {
		entry := r.s.entries[entryID]
		if !entry.IsApproved() {
			continue
		}
		result = append(result, domain.RequestedEntry{
			EntryID:     entryID,
			Name:        entry.Name,
			Field:       entry.Field,
			CompanyName: r.s.identities[entry.CompanyID].Username,
			Requests:    n,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Requests != result[j].Requests {
			return result[i].Requests > result[j].Requests
		}
		return result[i].Name < result[j].Name
	})
	return page(result, limit, 0), nil
}

type ratingRepo struct{ s *Store }

func (r ratingRepo) Create(_ context.Context, rating *domain.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.ratings {
		if existing.EntryID == rating.EntryID && existing.CustomerID == rating.CustomerID {
			return fmt.Errorf("%w: ratings_entry_customer_key", repository.ErrDuplicate)
		}
	}
	rating.ID = uuid.NewString()
	rating.CreatedAt = r.s.tick()
	r.s.ratings[rating.ID] = *rating
	return nil
}

func (r ratingRepo) Exists(_ context.Context, entryID, customerID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return lo.SomeBy(lo.Values(r.s.ratings), func(rt domain.Rating) bool {
		return rt.EntryID == entryID && rt.CustomerID == customerID
	}), nil
}

func (r ratingRepo) list(match func(domain.Rating) bool, limit, offset int) []domain.RatingView {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := lo.Filter(lo.Values(r.s.ratings), func(rt domain.Rating, _ int) bool { return match(rt) })
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	views := lo.Map(matches, func(rt domain.Rating, _ int) domain.RatingView {
		return domain.RatingView{
			Rating:       rt,
			CustomerName: r.s.identities[rt.CustomerID].Username,
			EntryName:    r.s.entries[rt.EntryID].Name,
		}
	})
	return page(views, limit, offset)
}

func (r ratingRepo) ListByEntry(_ context.Context, entryID string, limit, offset int) ([]domain.RatingView, error) {
	return r.list(func(rt domain.Rating) bool { return rt.EntryID == entryID }, limit, offset), nil
}

func (r ratingRepo) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]domain.RatingView, error) {
	return r.list(func(rt domain.Rating) bool { return rt.CustomerID == customerID }, limit, offset), nil
}

// scoresLocked must be called with the lock held.
func (r ratingRepo) scoresLocked() map[string][]int {
	scores := map[string][]int{}
	for _, rt := range r.s.ratings {
		scores[rt.EntryID] = append(scores[rt.EntryID], rt.Score)
	}
	return scores
}

func (r ratingRepo) Summary(_ context.Context, entryID string) (domain.RatingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return domain.SummarizeRatings(r.scoresLocked()[entryID]), nil
}

func (r ratingRepo) Summaries(_ context.Context, entryIDs []string) (map[string]domain.RatingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scores := r.scoresLocked()
	result := map[string]domain.RatingSummary{}
	for _, id := range entryIDs {
		if s, ok := scores[id]; ok {
			result[id] = domain.SummarizeRatings(s)
		}
	}
	return result, nil
}

func (r ratingRepo) TopRated(_ context.Context, limit, minCount int) ([]domain.RatedEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []domain.RatedEntry{}
	for entryID, scores := range r.scoresLocked() {
		entry := r.s.entries[entryID]
		if !entry.IsApproved() || len(scores) < minCount {
			continue
		}
		result = append(result, domain.RatedEntry{
			EntryID:     entryID,
			Name:        entry.Name,
			Field:       entry.Field,
			CompanyName: r.s.identities[entry.CompanyID].Username,
			Rating:      domain.SummarizeRatings(scores),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Rating.Average != result[j].Rating.Average {
			return result[i].Rating.Average > result[j].Rating.Average
		}
		return result[i].Name < result[j].Name
	})
	return page(result, limit, 0), nil
}
