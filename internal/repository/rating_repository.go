package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/xpertshub/internal/domain"
)

// RatingRepository persists customer ratings. At most one rating exists per
// (entry, customer); a second insert fails with ErrDuplicate.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	Exists(ctx context.Context, entryID, customerID string) (bool, error)
	ListByEntry(ctx context.Context, entryID string, limit, offset int) ([]domain.RatingView, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.RatingView, error)
	Summary(ctx context.Context, entryID string) (domain.RatingSummary, error)
	Summaries(ctx context.Context, entryIDs []string) (map[string]domain.RatingSummary, error)
	TopRated(ctx context.Context, limit, minCount int) ([]domain.RatedEntry, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository instantiates the repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	const query = `
        INSERT INTO ratings (entry_id, customer_id, score, review)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		rating.EntryID,
		rating.CustomerID,
		rating.Score,
		rating.Review,
	).Scan(&rating.ID, &rating.CreatedAt)
	return translateWriteError(err)
}

func (r *ratingRepository) Exists(ctx context.Context, entryID, customerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM ratings WHERE entry_id=$1 AND customer_id=$2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, entryID, customerID).Scan(&exists)
	return exists, err
}

const ratingViewSelect = `
        SELECT r.id, r.entry_id, r.customer_id, r.score, r.review, r.created_at, cu.username, e.name
        FROM ratings r
        JOIN identities cu ON cu.id = r.customer_id
        JOIN catalog_entries e ON e.id = r.entry_id`

func (r *ratingRepository) ListByEntry(ctx context.Context, entryID string, limit, offset int) ([]domain.RatingView, error) {
	return r.list(ctx, ` WHERE r.entry_id=$1`, entryID, limit, offset)
}

func (r *ratingRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.RatingView, error) {
	return r.list(ctx, ` WHERE r.customer_id=$1`, customerID, limit, offset)
}

func (r *ratingRepository) list(ctx context.Context, where string, arg any, limit, offset int) ([]domain.RatingView, error) {
	limit, offset = normalizePage(limit, offset, 50)
	query := ratingViewSelect + where + fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RatingView
	for rows.Next() {
		var view domain.RatingView
		if err := rows.Scan(
			&view.Rating.ID,
			&view.Rating.EntryID,
			&view.Rating.CustomerID,
			&view.Rating.Score,
			&view.Rating.Review,
			&view.Rating.CreatedAt,
			&view.CustomerName,
			&view.EntryName,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}

func (r *ratingRepository) Summary(ctx context.Context, entryID string) (domain.RatingSummary, error) {
	const query = `SELECT COALESCE(AVG(score), 0)::float8, COUNT(*) FROM ratings WHERE entry_id=$1`

	var summary domain.RatingSummary
	err := r.pool.QueryRow(ctx, query, entryID).Scan(&summary.Average, &summary.Count)
	return summary, err
}

func (r *ratingRepository) Summaries(ctx context.Context, entryIDs []string) (map[string]domain.RatingSummary, error) {
	result := make(map[string]domain.RatingSummary, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT entry_id, AVG(score)::float8, COUNT(*)
        FROM ratings WHERE entry_id = ANY($1::uuid[])
        GROUP BY entry_id`

	rows, err := r.pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID string
			summary domain.RatingSummary
		)
		if err := rows.Scan(&entryID, &summary.Average, &summary.Count); err != nil {
			return nil, err
		}
		result[entryID] = summary
	}
	return result, rows.Err()
}

func (r *ratingRepository) TopRated(ctx context.Context, limit, minCount int) ([]domain.RatedEntry, error) {
	const query = `
        SELECT e.id, e.name, e.field, co.username, AVG(r.score)::float8 AS average, COUNT(r.id)
        FROM catalog_entries e
        JOIN identities co ON co.id = e.company_id
        JOIN ratings r ON r.entry_id = e.id
        WHERE e.status=$1
        GROUP BY e.id, e.name, e.field, co.username
        HAVING COUNT(r.id) >= $2
        ORDER BY average DESC, COUNT(r.id) DESC, e.name
        LIMIT $3`

	if limit <= 0 {
		limit = 5
	}
	if minCount <= 0 {
		minCount = 1
	}
	rows, err := r.pool.Query(ctx, query, domain.StatusApproved, minCount, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RatedEntry
	for rows.Next() {
		var entry domain.RatedEntry
		if err := rows.Scan(
			&entry.EntryID,
			&entry.Name,
			&entry.Field,
			&entry.CompanyName,
			&entry.Rating.Average,
			&entry.Rating.Count,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
