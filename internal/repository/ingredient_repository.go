package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/recipe-api/internal/model"
)

// IngredientRepo encapsulates all database queries related to ingredients.
type IngredientRepo struct {
	t labelTable
}

func NewIngredientRepo(db *sql.DB) *IngredientRepo {
	return &IngredientRepo{t: labelTable{db: db, table: "ingredients"}}
}

// Create inserts an ingredient and populates its ID.  Duplicate names are allowed.
func (r *IngredientRepo) Create(ctx context.Context, ing *model.Ingredient) error {
	row, err := r.t.insert(ctx, ing.OwnerID, ing.Name)
	if err != nil {
		return err
	}
	ing.ID, ing.CreatedAt = row.ID, row.CreatedAt
	return nil
}

// ListByOwner returns the owner's ingredients ordered by name descending.
func (r *IngredientRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Ingredient, error) {
	rows, err := r.t.listByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toIngredients(rows), nil
}

// ListByIDsAndOwner returns the ingredients among ids owned by ownerID.
func (r *IngredientRepo) ListByIDsAndOwner(ctx context.Context, ids []uint64, ownerID uint64) ([]*model.Ingredient, error) {
	rows, err := r.t.listByIDsAndOwner(ctx, ids, ownerID)
	if err != nil {
		return nil, err
	}
	return toIngredients(rows), nil
}

func toIngredients(rows []labelRow) []*model.Ingredient {
	out := make([]*model.Ingredient, 0, len(rows))
	for _, l := range rows {
		out = append(out, &model.Ingredient{ID: l.ID, OwnerID: l.OwnerID, Name: l.Name, CreatedAt: l.CreatedAt})
	}
	return out
}
