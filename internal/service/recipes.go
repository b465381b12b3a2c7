// Package service is the access layer between HTTP handlers and the
// repositories.  Every operation receives the caller's auth.Identity
// explicitly, filters by ownership and picks the serializer view.
package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/recipe-api/internal/auth"
	"github.com/iliyamo/recipe-api/internal/model"
	"github.com/iliyamo/recipe-api/internal/queue"
	"github.com/iliyamo/recipe-api/internal/repository"
	"github.com/iliyamo/recipe-api/internal/serializer"
)

// maxTextLen matches the VARCHAR(255) columns; time_minutes is a signed INT.
const maxTextLen = 255

// RecipeStore is the recipe persistence used by RecipeService.
type RecipeStore interface {
	Create(ctx context.Context, r *model.Recipe) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Recipe, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Recipe, error)
}

// TagStore is the tag persistence used by RecipeService.
type TagStore interface {
	Create(ctx context.Context, t *model.Tag) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Tag, error)
	ListByIDsAndOwner(ctx context.Context, ids []uint64, ownerID uint64) ([]*model.Tag, error)
}

// IngredientStore is the ingredient persistence used by RecipeService.
type IngredientStore interface {
	Create(ctx context.Context, i *model.Ingredient) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Ingredient, error)
	ListByIDsAndOwner(ctx context.Context, ids []uint64, ownerID uint64) ([]*model.Ingredient, error)
}

// EventPublisher receives recipe.created events.  A nil publisher disables
// events.
type EventPublisher interface {
	PublishRecipeCreated(ctx context.Context, ev queue.RecipeCreatedEvent) error
}

// CreateRecipeInput is the recognized payload of a create request.
// Pointer fields distinguish an absent value from a zero value.
type CreateRecipeInput struct {
	Title       *string  `json:"title"`
	TimeMinutes *int     `json:"time_minutes"`
	Tags        []uint64 `json:"tags"`
	Ingredients []uint64 `json:"ingredients"`
}

// CreateLabelInput is the payload for creating a tag or ingredient.
type CreateLabelInput struct {
	Name string `json:"name"`
}

type RecipeService struct {
	recipes     RecipeStore
	tags        TagStore
	ingredients IngredientStore
	events      EventPublisher
	log         *slog.Logger
}

func NewRecipeService(r RecipeStore, t TagStore, i IngredientStore, events EventPublisher, log *slog.Logger) *RecipeService {
	if r == nil || t == nil || i == nil {
		panic("nil store passed to NewRecipeService")
	}
	if log == nil {
		log = slog.Default()
	}
	return &RecipeService{recipes: r, tags: t, ingredients: i, events: events, log: log}
}

// ListRecipes returns the caller's recipes ordered by id, summary view.
func (s *RecipeService) ListRecipes(ctx context.Context, id auth.Identity) ([]serializer.RecipeSummary, error) {
	if !id.Authenticated() {
		return nil, ErrUnauthenticated
	}
	recipes, err := s.recipes.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return serializer.Summaries(recipes), nil
}

// GetRecipe returns one of the caller's recipes, detail view.  Recipes of
// other users are reported as not found.
func (s *RecipeService) GetRecipe(ctx context.Context, id auth.Identity, recipeID uint64) (serializer.RecipeDetail, error) {
	if !id.Authenticated() {
		return serializer.RecipeDetail{}, ErrUnauthenticated
	}
	r, err := s.recipes.GetByIDAndOwner(ctx, recipeID, id.UserID)
	if err != nil {
		return serializer.RecipeDetail{}, err
	}
	return serializer.Detail(r), nil
}

// CreateRecipe validates in, verifies that every referenced tag and
// ingredient belongs to the caller and stores the recipe with its links.
// The owner is always the caller.
func (s *RecipeService) CreateRecipe(ctx context.Context, id auth.Identity, in CreateRecipeInput) (serializer.RecipeSummary, error) {
	if !id.Authenticated() {
		return serializer.RecipeSummary{}, ErrUnauthenticated
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return serializer.RecipeSummary{}, repository.Missing("title")
	}
	if in.TimeMinutes == nil {
		return serializer.RecipeSummary{}, repository.Missing("time_minutes")
	}
	if utf8.RuneCountInString(strings.TrimSpace(*in.Title)) > maxTextLen {
		return serializer.RecipeSummary{}, repository.Invalid("title")
	}
	if *in.TimeMinutes < 0 || *in.TimeMinutes > math.MaxInt32 {
		return serializer.RecipeSummary{}, repository.Invalid("time_minutes")
	}

	tagIDs := dedupe(in.Tags)
	tags, err := s.tags.ListByIDsAndOwner(ctx, tagIDs, id.UserID)
	if err != nil {
		return serializer.RecipeSummary{}, err
	}
	if len(tags) != len(tagIDs) {
		return serializer.RecipeSummary{}, repository.Invalid("tags")
	}
	ingredientIDs := dedupe(in.Ingredients)
	ingredients, err := s.ingredients.ListByIDsAndOwner(ctx, ingredientIDs, id.UserID)
	if err != nil {
		return serializer.RecipeSummary{}, err
	}
	if len(ingredients) != len(ingredientIDs) {
		return serializer.RecipeSummary{}, repository.Invalid("ingredients")
	}

	r := &model.Recipe{
		OwnerID:     id.UserID,
		Title:       strings.TrimSpace(*in.Title),
		TimeMinutes: *in.TimeMinutes,
	}
	for _, t := range tags {
		r.Tags = append(r.Tags, *t)
	}
	for _, i := range ingredients {
		r.Ingredients = append(r.Ingredients, *i)
	}
	if err := s.recipes.Create(ctx, r); err != nil {
		return serializer.RecipeSummary{}, err
	}
	s.publishCreated(ctx, r)
	return serializer.Summary(r), nil
}

// publishCreated is best effort: the recipe is already committed.
func (s *RecipeService) publishCreated(ctx context.Context, r *model.Recipe) {
	if s.events == nil {
		return
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	ev := queue.RecipeCreatedEvent{
		RecipeID:      r.ID,
		UserID:        r.OwnerID,
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		TagIDs:        r.TagIDs(),
		IngredientIDs: r.IngredientIDs(),
		CreatedAt:     created.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishRecipeCreated(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish recipe.created failed", "recipe_id", r.ID, "err", err)
	}
}

// ListTags returns the caller's tags.
func (s *RecipeService) ListTags(ctx context.Context, id auth.Identity) ([]serializer.Tag, error) {
	if !id.Authenticated() {
		return nil, ErrUnauthenticated
	}
	tags, err := s.tags.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return serializer.Tags(tags), nil
}

// CreateTag stores a tag owned by the caller.
func (s *RecipeService) CreateTag(ctx context.Context, id auth.Identity, in CreateLabelInput) (serializer.Tag, error) {
	if !id.Authenticated() {
		return serializer.Tag{}, ErrUnauthenticated
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return serializer.Tag{}, repository.Missing("name")
	}
	if utf8.RuneCountInString(name) > maxTextLen {
		return serializer.Tag{}, repository.Invalid("name")
	}
	t := &model.Tag{OwnerID: id.UserID, Name: name}
	if err := s.tags.Create(ctx, t); err != nil {
		return serializer.Tag{}, err
	}
	return serializer.NewTag(*t), nil
}

// ListIngredients returns the caller's ingredients.
func (s *RecipeService) ListIngredients(ctx context.Context, id auth.Identity) ([]serializer.Ingredient, error) {
	if !id.Authenticated() {
		return nil, ErrUnauthenticated
	}
	ings, err := s.ingredients.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return serializer.Ingredients(ings), nil
}

// CreateIngredient stores an ingredient owned by the caller.
func (s *RecipeService) CreateIngredient(ctx context.Context, id auth.Identity, in CreateLabelInput) (serializer.Ingredient, error) {
	if !id.Authenticated() {
		return serializer.Ingredient{}, ErrUnauthenticated
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return serializer.Ingredient{}, repository.Missing("name")
	}
	if utf8.RuneCountInString(name) > maxTextLen {
		return serializer.Ingredient{}, repository.Invalid("name")
	}
	i := &model.Ingredient{OwnerID: id.UserID, Name: name}
	if err := s.ingredients.Create(ctx, i); err != nil {
		return serializer.Ingredient{}, err
	}
	return serializer.NewIngredient(*i), nil
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
