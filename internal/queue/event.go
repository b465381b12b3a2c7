// Package queue defines message payloads exchanged over the message broker.
package queue

// RecipeCreatedQueue is the durable queue that carries RecipeCreatedEvent.
const RecipeCreatedQueue = "recipe.created"

// RecipeCreatedEvent is published after a recipe and its links commit.
// It carries enough information for downstream consumers to log or index
// the recipe without querying the primary database.
type RecipeCreatedEvent struct {
    RecipeID      uint64   `json:"recipe_id"`
    UserID        uint64   `json:"user_id"`
    Title         string   `json:"title"`
    TimeMinutes   int      `json:"time_minutes"`
    TagIDs        []uint64 `json:"tags"`
    IngredientIDs []uint64 `json:"ingredients"`
    CreatedAt     string   `json:"created_at"`
}
