package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-api/internal/model"
)

var (
	insertRecipeSQL  = regexp.QuoteMeta("INSERT INTO recipes (user_id, title, time_minutes) VALUES (?, ?, ?)")
	recipeStampsSQL  = regexp.QuoteMeta("SELECT created_at, updated_at FROM recipes WHERE id = ?")
	recipeCols       = []string{"id", "user_id", "title", "time_minutes", "created_at", "updated_at"}
	linkCols         = []string{"recipe_id", "id", "user_id", "name", "created_at"}
	tagLinksSQL      = regexp.QuoteMeta("FROM recipe_tags l JOIN tags t")
	ingredientLinkSQ = regexp.QuoteMeta("FROM recipe_ingredients l JOIN ingredients i")
)

func TestRecipeRepo_CreateBasic(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(insertRecipeSQL).WithArgs(uint64(1), "chocolate", 2).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(recipeStampsSQL).WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	r := &model.Recipe{OwnerID: 1, Title: "chocolate", TimeMinutes: 2}
	require.NoError(t, repo.Create(context.Background(), r))
	assert.Equal(t, uint64(7), r.ID)
	assert.Equal(t, now, r.CreatedAt)
}

func TestRecipeRepo_CreateWithLinks(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(insertRecipeSQL).WithArgs(uint64(1), "blassss", 33).
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?),(?, ?)")).
		WithArgs(uint64(8), uint64(1), uint64(8), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES (?, ?)")).
		WithArgs(uint64(8), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(recipeStampsSQL).WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	r := &model.Recipe{
		OwnerID:     1,
		Title:       "blassss",
		TimeMinutes: 33,
		Tags:        []model.Tag{{ID: 1}, {ID: 2}},
		Ingredients: []model.Ingredient{{ID: 5}},
	}
	require.NoError(t, repo.Create(context.Background(), r))
	assert.Equal(t, uint64(8), r.ID)
}

func TestRecipeRepo_CreateRollsBackOnLinkFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertRecipeSQL).WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO recipe_tags").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	r := &model.Recipe{OwnerID: 1, Title: "x", TimeMinutes: 1, Tags: []model.Tag{{ID: 3}}}
	err := repo.Create(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fk violation")
	assert.Zero(t, r.ID)
}

func TestRecipeRepo_ListByOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM recipes WHERE user_id = ? ORDER BY id")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(recipeCols).
			AddRow(uint64(1), uint64(1), "Sample recipe", 5, now, now).
			AddRow(uint64(3), uint64(1), "Other recipe", 10, now, now))
	mock.ExpectQuery(tagLinksSQL).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(linkCols).
			AddRow(uint64(1), uint64(4), uint64(1), "Vegan", now).
			AddRow(uint64(3), uint64(2), uint64(1), "Dessert", now).
			AddRow(uint64(3), uint64(4), uint64(1), "Vegan", now))
	mock.ExpectQuery(ingredientLinkSQ).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(linkCols).
			AddRow(uint64(3), uint64(6), uint64(1), "Salt", now))

	list, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Sample recipe", list[0].Title)
	assert.Equal(t, []uint64{4}, list[0].TagIDs())
	assert.Empty(t, list[0].Ingredients)
	assert.Equal(t, []uint64{2, 4}, list[1].TagIDs())
	assert.Equal(t, []uint64{6}, list[1].IngredientIDs())
}

func TestRecipeRepo_ListByOwner_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM recipes WHERE user_id = ?")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(recipeCols))

	list, err := repo.ListByOwner(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRecipeRepo_GetByIDAndOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM recipes WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(3), uint64(1)).
		WillReturnRows(sqlmock.NewRows(recipeCols).AddRow(uint64(3), uint64(1), "Sample recipe", 5, now, now))
	mock.ExpectQuery(tagLinksSQL).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(linkCols).AddRow(uint64(3), uint64(4), uint64(1), "some tag", now))
	mock.ExpectQuery(ingredientLinkSQ).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(linkCols).AddRow(uint64(3), uint64(8), uint64(1), "some ingredient", now))

	r, err := repo.GetByIDAndOwner(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Len(t, r.Tags, 1)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, "some tag", r.Tags[0].Name)
	assert.Equal(t, "some ingredient", r.Ingredients[0].Name)
}

func TestRecipeRepo_GetByIDAndOwner_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipeRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM recipes WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(3), uint64(2)).
		WillReturnRows(sqlmock.NewRows(recipeCols))

	_, err := repo.GetByIDAndOwner(context.Background(), 3, 2)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}
