// Package serializer maps entities to their JSON views.  Recipes have a
// summary view (list and create responses, associations as ids) and a
// detail view (retrieve responses, associations nested).
package serializer

import "github.com/iliyamo/recipe-api/internal/model"

// Tag is the JSON view of a tag.
type Tag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Ingredient is the JSON view of an ingredient.
type Ingredient struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// RecipeSummary lists tags and ingredients by id only.
type RecipeSummary struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	TimeMinutes int      `json:"time_minutes"`
	Tags        []uint64 `json:"tags"`
	Ingredients []uint64 `json:"ingredients"`
}

// RecipeDetail nests the full tag and ingredient views.
type RecipeDetail struct {
	ID          uint64       `json:"id"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"`
	Tags        []Tag        `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
}

func NewTag(t model.Tag) Tag { return Tag{ID: t.ID, Name: t.Name} }

func NewIngredient(i model.Ingredient) Ingredient { return Ingredient{ID: i.ID, Name: i.Name} }

// Tags serializes a list; the result is never nil so it encodes as [].
func Tags(in []*model.Tag) []Tag {
	out := make([]Tag, 0, len(in))
	for _, t := range in {
		out = append(out, NewTag(*t))
	}
	return out
}

// Ingredients serializes a list; the result is never nil so it encodes as [].
func Ingredients(in []*model.Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(in))
	for _, i := range in {
		out = append(out, NewIngredient(*i))
	}
	return out
}

func Summary(r *model.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
	}
}

// Summaries serializes recipes in the given order.
func Summaries(in []*model.Recipe) []RecipeSummary {
	out := make([]RecipeSummary, 0, len(in))
	for _, r := range in {
		out = append(out, Summary(r))
	}
	return out
}

func Detail(r *model.Recipe) RecipeDetail {
	d := RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Tags:        make([]Tag, 0, len(r.Tags)),
		Ingredients: make([]Ingredient, 0, len(r.Ingredients)),
	}
	for _, t := range r.Tags {
		d.Tags = append(d.Tags, NewTag(t))
	}
	for _, i := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, NewIngredient(i))
	}
	return d
}
