package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/xpertshub/internal/domain"
)

// CatalogFilter narrows catalog listings. Nil fields are not applied.
type CatalogFilter struct {
	Status    *domain.ModerationStatus
	Field     *domain.FieldOfWork
	CompanyID *string
	Limit     int
	Offset    int
}

// CatalogRepository encapsulates catalog entry persistence.
type CatalogRepository interface {
	Create(ctx context.Context, entry *domain.CatalogEntry) error
	GetByID(ctx context.Context, id string) (*domain.CatalogEntry, error)
	List(ctx context.Context, filter CatalogFilter) ([]domain.CatalogEntry, error)
	Count(ctx context.Context, filter CatalogFilter) (int, error)
	// Transition moves a pending entry to status and reports whether a row changed.
	Transition(ctx context.Context, id string, status domain.ModerationStatus, moderatorID string, at time.Time) (bool, error)
	// TransitionMany moves every pending entry among ids and returns how many changed.
	TransitionMany(ctx context.Context, ids []string, status domain.ModerationStatus, moderatorID string, at time.Time) (int, error)
	CountByField(ctx context.Context) ([]domain.FieldCount, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository instantiates the repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

const catalogSelect = `
        SELECT e.id, e.company_id, i.username, e.name, e.description, e.field, e.hourly_rate,
            e.status, e.created_at, e.moderated_by, e.moderated_at
        FROM catalog_entries e
        JOIN identities i ON i.id = e.company_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	if err := row.Scan(
		&entry.ID,
		&entry.CompanyID,
		&entry.CompanyName,
		&entry.Name,
		&entry.Description,
		&entry.Field,
		&entry.HourlyRate,
		&entry.Status,
		&entry.CreatedAt,
		&entry.ModeratedBy,
		&entry.ModeratedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *catalogRepository) Create(ctx context.Context, entry *domain.CatalogEntry) error {
	const query = `
        INSERT INTO catalog_entries (company_id, name, description, field, hourly_rate, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.CompanyID,
		entry.Name,
		entry.Description,
		entry.Field,
		entry.HourlyRate,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)
	return translateWriteError(err)
}

func (r *catalogRepository) GetByID(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx, catalogSelect+` WHERE e.id=$1`, id))
}

func buildCatalogWhere(filter CatalogFilter) (string, []any) {
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("e.status=$%d", len(args)))
	}
	if filter.Field != nil {
		args = append(args, *filter.Field)
		clauses = append(clauses, fmt.Sprintf("e.field=$%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("e.company_id=$%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *catalogRepository) List(ctx context.Context, filter CatalogFilter) ([]domain.CatalogEntry, error) {
	where, args := buildCatalogWhere(filter)
	limit, offset := normalizePage(filter.Limit, filter.Offset, 50)
	query := catalogSelect + where + fmt.Sprintf(" ORDER BY e.created_at DESC, e.id LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *catalogRepository) Count(ctx context.Context, filter CatalogFilter) (int, error) {
	where, args := buildCatalogWhere(filter)
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_entries e`+where, args...).Scan(&count)
	return count, err
}

func (r *catalogRepository) Transition(ctx context.Context, id string, status domain.ModerationStatus, moderatorID string, at time.Time) (bool, error) {
	const query = `
        UPDATE catalog_entries SET status=$1, moderated_by=$2, moderated_at=$3
        WHERE id=$4 AND status=$5`

	cmd, err := r.pool.Exec(ctx, query, status, moderatorID, at, id, domain.StatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *catalogRepository) TransitionMany(ctx context.Context, ids []string, status domain.ModerationStatus, moderatorID string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `
        UPDATE catalog_entries SET status=$1, moderated_by=$2, moderated_at=$3
        WHERE id = ANY($4::uuid[]) AND status=$5`

	cmd, err := r.pool.Exec(ctx, query, status, moderatorID, at, ids, domain.StatusPending)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *catalogRepository) CountByField(ctx context.Context) ([]domain.FieldCount, error) {
	const query = `
        SELECT field, COUNT(*) FROM catalog_entries
        WHERE status=$1
        GROUP BY field
        ORDER BY COUNT(*) DESC, field`

	rows, err := r.pool.Query(ctx, query, domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FieldCount
	for rows.Next() {
		var fc domain.FieldCount
		if err := rows.Scan(&fc.Field, &fc.Count); err != nil {
			return nil, err
		}
		result = append(result, fc)
	}
	return result, rows.Err()
}
