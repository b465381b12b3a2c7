package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/recipe-api/internal/database"
	"github.com/iliyamo/recipe-api/internal/model"
)

// ErrRecipeNotFound is returned when a recipe does not exist or is owned by
// someone else.
var ErrRecipeNotFound = fmt.Errorf("recipe %w", ErrNotFound)

const recipeColumns = "id, user_id, title, time_minutes, created_at, updated_at"

// RecipeRepo provides persistence for recipes and their tag and
// ingredient links.  A recipe and its links are always written in one
// transaction so a partially linked recipe is never visible.
type RecipeRepo struct {
	db *sql.DB
}

func NewRecipeRepo(db *sql.DB) *RecipeRepo { return &RecipeRepo{db: db} }

// Create inserts the recipe row, then one link row per entry in r.Tags and
// r.Ingredients.  On success r.ID and the timestamps are populated.  The
// caller is responsible for checking that the linked ids belong to
// r.OwnerID.
func (repo *RecipeRepo) Create(ctx context.Context, r *model.Recipe) error {
	var id uint64
	err := database.WithTx(ctx, repo.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO recipes (user_id, title, time_minutes) VALUES (?, ?, ?)",
			r.OwnerID, r.Title, r.TimeMinutes)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		id = uint64(lastID)

		if err := insertLinks(ctx, tx, "recipe_tags", "tag_id", id, r.TagIDs()); err != nil {
			return err
		}
		if err := insertLinks(ctx, tx, "recipe_ingredients", "ingredient_id", id, r.IngredientIDs()); err != nil {
			return err
		}
		// Query back the row to populate timestamps and defaults
		return tx.QueryRowContext(ctx,
			"SELECT created_at, updated_at FROM recipes WHERE id = ?", id).
			Scan(&r.CreatedAt, &r.UpdatedAt)
	})
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// insertLinks writes all link rows for one recipe in a single statement.
// An empty id list is a no-op.
func insertLinks(ctx context.Context, tx database.DBTX, table, column string, recipeID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf("INSERT INTO %s (recipe_id, %s) VALUES ", table, column)
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, recipeID, id)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// ListByOwner returns the owner's recipes ordered by id with their tags and
// ingredients loaded.
func (repo *RecipeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Recipe, error) {
	rows, err := repo.db.QueryContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	out := []*model.Recipe{}
	byID := map[uint64]*model.Recipe{}
	for rows.Next() {
		r := &model.Recipe{}
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Title, &r.TimeMinutes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		out = append(out, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	const ownerFilter = "JOIN recipes r ON r.id = l.recipe_id WHERE r.user_id = ?"
	if err := repo.attachTags(ctx, byID, ownerFilter, ownerID); err != nil {
		return nil, err
	}
	if err := repo.attachIngredients(ctx, byID, ownerFilter, ownerID); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndOwner fetches a recipe with its associations, but only if it
// belongs to ownerID.  Otherwise ErrRecipeNotFound is returned.
func (repo *RecipeRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Recipe, error) {
	r := &model.Recipe{}
	err := repo.db.QueryRowContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE id = ? AND user_id = ?", id, ownerID).
		Scan(&r.ID, &r.OwnerID, &r.Title, &r.TimeMinutes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("query recipe: %w", err)
	}

	byID := map[uint64]*model.Recipe{r.ID: r}
	const recipeFilter = "WHERE l.recipe_id = ?"
	if err := repo.attachTags(ctx, byID, recipeFilter, r.ID); err != nil {
		return nil, err
	}
	if err := repo.attachIngredients(ctx, byID, recipeFilter, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func (repo *RecipeRepo) attachTags(ctx context.Context, byID map[uint64]*model.Recipe, filter string, arg any) error {
	q := `SELECT l.recipe_id, t.id, t.user_id, t.name, t.created_at
	      FROM recipe_tags l JOIN tags t ON t.id = l.tag_id ` + filter + `
	      ORDER BY l.recipe_id, t.id`
	return repo.eachLink(ctx, q, arg, func(recipeID uint64, row labelRow) {
		if r, ok := byID[recipeID]; ok {
			r.Tags = append(r.Tags, model.Tag{ID: row.ID, OwnerID: row.OwnerID, Name: row.Name, CreatedAt: row.CreatedAt})
		}
	})
}

func (repo *RecipeRepo) attachIngredients(ctx context.Context, byID map[uint64]*model.Recipe, filter string, arg any) error {
	q := `SELECT l.recipe_id, i.id, i.user_id, i.name, i.created_at
	      FROM recipe_ingredients l JOIN ingredients i ON i.id = l.ingredient_id ` + filter + `
	      ORDER BY l.recipe_id, i.id`
	return repo.eachLink(ctx, q, arg, func(recipeID uint64, row labelRow) {
		if r, ok := byID[recipeID]; ok {
			r.Ingredients = append(r.Ingredients, model.Ingredient{ID: row.ID, OwnerID: row.OwnerID, Name: row.Name, CreatedAt: row.CreatedAt})
		}
	})
}

func (repo *RecipeRepo) eachLink(ctx context.Context, q string, arg any, fn func(uint64, labelRow)) error {
	rows, err := repo.db.QueryContext(ctx, q, arg)
	if err != nil {
		return fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			recipeID uint64
			l        labelRow
		)
		if err := rows.Scan(&recipeID, &l.ID, &l.OwnerID, &l.Name, &l.CreatedAt); err != nil {
			return fmt.Errorf("scan link: %w", err)
		}
		fn(recipeID, l)
	}
	return rows.Err()
}
