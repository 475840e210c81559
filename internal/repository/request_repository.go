package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/xpertshub/internal/domain"
)

// RequestRepository persists the append-only request ledger.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetView(ctx context.Context, id string) (*domain.ServiceRequestView, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.ServiceRequestView, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.ServiceRequestView, error)
	ListByEntry(ctx context.Context, entryID string, limit, offset int) ([]domain.ServiceRequestView, error)
	CountByCompany(ctx context.Context, companyID string) (int, error)
	Count(ctx context.Context) (int, error)
	MostRequested(ctx context.Context, limit int) ([]domain.RequestedEntry, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestViewSelect = `
        SELECT r.id, r.entry_id, r.customer_id, r.address, r.duration_hours, r.hourly_rate, r.created_at,
            e.name, e.field, e.company_id, co.username, co.email, cu.username, cu.email
        FROM service_requests r
        JOIN catalog_entries e ON e.id = r.entry_id
        JOIN identities co ON co.id = e.company_id
        JOIN identities cu ON cu.id = r.customer_id`

func scanRequestView(row rowScanner) (*domain.ServiceRequestView, error) {
	var view domain.ServiceRequestView
	if err := row.Scan(
		&view.Request.ID,
		&view.Request.EntryID,
		&view.Request.CustomerID,
		&view.Request.Address,
		&view.Request.DurationHours,
		&view.Request.HourlyRate,
		&view.Request.CreatedAt,
		&view.EntryName,
		&view.EntryField,
		&view.CompanyID,
		&view.CompanyName,
		&view.CompanyMail,
		&view.CustomerName,
		&view.CustomerMail,
	); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (entry_id, customer_id, address, duration_hours, hourly_rate)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		request.EntryID,
		request.CustomerID,
		request.Address,
		request.DurationHours,
		request.HourlyRate,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *requestRepository) GetView(ctx context.Context, id string) (*domain.ServiceRequestView, error) {
	return scanRequestView(r.pool.QueryRow(ctx, requestViewSelect+` WHERE r.id=$1`, id))
}

func (r *requestRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.ServiceRequestView, error) {
	return r.list(ctx, ` WHERE r.customer_id=$1`, customerID, limit, offset)
}

func (r *requestRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.ServiceRequestView, error) {
	return r.list(ctx, ` WHERE e.company_id=$1`, companyID, limit, offset)
}

func (r *requestRepository) ListByEntry(ctx context.Context, entryID string, limit, offset int) ([]domain.ServiceRequestView, error) {
	return r.list(ctx, ` WHERE r.entry_id=$1`, entryID, limit, offset)
}

func (r *requestRepository) list(ctx context.Context, where string, arg any, limit, offset int) ([]domain.ServiceRequestView, error) {
	limit, offset = normalizePage(limit, offset, 50)
	query := requestViewSelect + where + fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceRequestView
	for rows.Next() {
		view, err := scanRequestView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *view)
	}
	return result, rows.Err()
}

func (r *requestRepository) CountByCompany(ctx context.Context, companyID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM service_requests r
        JOIN catalog_entries e ON e.id = r.entry_id
        WHERE e.company_id=$1`

	var count int
	err := r.pool.QueryRow(ctx, query, companyID).Scan(&count)
	return count, err
}

func (r *requestRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_requests`).Scan(&count)
	return count, err
}

func (r *requestRepository) MostRequested(ctx context.Context, limit int) ([]domain.RequestedEntry, error) {
	const query = `
        SELECT e.id, e.name, e.field, co.username, COUNT(r.id) AS requests
        FROM catalog_entries e
        JOIN identities co ON co.id = e.company_id
        JOIN service_requests r ON r.entry_id = e.id
        WHERE e.status=$1
        GROUP BY e.id, e.name, e.field, co.username
        ORDER BY requests DESC, e.name
        LIMIT $2`

	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, query, domain.StatusApproved, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestedEntry
	for rows.Next() {
		var entry domain.RequestedEntry
		if err := rows.Scan(&entry.EntryID, &entry.Name, &entry.Field, &entry.CompanyName, &entry.Requests); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
