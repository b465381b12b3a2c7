package model

import "time"

// Recipe represents a row in the `recipes` table together with its
// associations.  Tags and Ingredients are stored through the
// `recipe_tags` and `recipe_ingredients` link tables and must belong to
// the same owner as the recipe.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user ID of the recipe owner.
//  Title       – display title.
//  TimeMinutes – preparation time in minutes.
//  Tags        – linked tags ordered by id.
//  Ingredients – linked ingredients ordered by id.
type Recipe struct {
    ID          uint64       // recipes.id
    OwnerID     uint64       // recipes.user_id
    Title       string       // recipes.title
    TimeMinutes int          // recipes.time_minutes
    Tags        []Tag        // via recipe_tags
    Ingredients []Ingredient // via recipe_ingredients
    CreatedAt   time.Time    // recipes.created_at
    UpdatedAt   time.Time    // recipes.updated_at
}

func (r Recipe) String() string { return r.Title }

// TagIDs returns the ids of the linked tags in their stored order.
func (r Recipe) TagIDs() []uint64 {
    ids := make([]uint64, 0, len(r.Tags))
    for _, t := range r.Tags {
        ids = append(ids, t.ID)
    }
    return ids
}

// IngredientIDs returns the ids of the linked ingredients in their stored order.
func (r Recipe) IngredientIDs() []uint64 {
    ids := make([]uint64, 0, len(r.Ingredients))
    for _, i := range r.Ingredients {
        ids = append(ids, i.ID)
    }
    return ids
}
