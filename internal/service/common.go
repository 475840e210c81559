package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/xpertshub/internal/access"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

const defaultListLimit = 50

// Viewer is whoever is looking at the catalog. Both fields are nil for
// anonymous visitors.
type Viewer struct {
	Identity *domain.Identity
	Staff    *domain.StaffMember
}

// validID reports whether raw is a well-formed entity id.
func validID(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}

// loadVisibleEntry fetches an entry and hides it behind NotFound when the
// viewer may not see it.
func loadVisibleEntry(ctx context.Context, catalog repository.CatalogRepository, viewer Viewer, id string) (*domain.CatalogEntry, error) {
	notFound := apperrors.NewNotFound("service", map[string]any{"id": id})
	if !validID(id) {
		return nil, notFound
	}
	entry, err := catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, apperrors.MapError(err)
	}
	if !access.CanView(viewer.Identity, viewer.Staff, entry) {
		return nil, notFound
	}
	return entry, nil
}

func pageBounds(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}
