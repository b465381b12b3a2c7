package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/recipe-api/internal/model"
)

// TagRepo encapsulates all database queries related to tags.
type TagRepo struct {
	t labelTable
}

func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{t: labelTable{db: db, table: "tags"}}
}

// Create inserts a tag and populates its ID.  Duplicate names are allowed.
func (r *TagRepo) Create(ctx context.Context, tag *model.Tag) error {
	row, err := r.t.insert(ctx, tag.OwnerID, tag.Name)
	if err != nil {
		return err
	}
	tag.ID, tag.CreatedAt = row.ID, row.CreatedAt
	return nil
}

// ListByOwner returns the owner's tags ordered by name descending.
func (r *TagRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Tag, error) {
	rows, err := r.t.listByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toTags(rows), nil
}

// ListByIDsAndOwner returns the tags among ids owned by ownerID.
func (r *TagRepo) ListByIDsAndOwner(ctx context.Context, ids []uint64, ownerID uint64) ([]*model.Tag, error) {
	rows, err := r.t.listByIDsAndOwner(ctx, ids, ownerID)
	if err != nil {
		return nil, err
	}
	return toTags(rows), nil
}

func toTags(rows []labelRow) []*model.Tag {
	out := make([]*model.Tag, 0, len(rows))
	for _, l := range rows {
		out = append(out, &model.Tag{ID: l.ID, OwnerID: l.OwnerID, Name: l.Name, CreatedAt: l.CreatedAt})
	}
	return out
}
