package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/xpertshub/internal/domain"
)

// IdentityRepository defines persistence access for customers and companies.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

const identityColumns = `id, username, email, first_name, last_name, password_hash, role, field_of_work, date_of_birth, created_at`

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (username, email, first_name, last_name, password_hash, role, field_of_work, date_of_birth)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		identity.Username,
		identity.Email,
		identity.FirstName,
		identity.LastName,
		identity.PasswordHash,
		identity.Role(),
		identity.FieldOfWorkLabel(),
		identity.DateOfBirth(),
	).Scan(&identity.ID, &identity.CreatedAt)
	return translateWriteError(err)
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.getOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE id=$1`, id)
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.getOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE lower(email)=lower($1)`, email)
}

func (r *identityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.getOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE username=$1`, username)
}

func (r *identityRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM identities WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE identities SET password_hash=$1 WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM identities WHERE role=$1`, role).Scan(&count)
	return count, err
}

func (r *identityRepository) getOne(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var (
		base        domain.Identity
		role        domain.Role
		fieldOfWork *string
		dateOfBirth *time.Time
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&base.ID,
		&base.Username,
		&base.Email,
		&base.FirstName,
		&base.LastName,
		&base.PasswordHash,
		&role,
		&fieldOfWork,
		&dateOfBirth,
		&base.CreatedAt,
	); err != nil {
		return nil, err
	}
	return domain.RestoreIdentity(base, role, fieldOfWork, dateOfBirth)
}
