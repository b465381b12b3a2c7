package model

import "time"

// Ingredient is a user-scoped ingredient name referenced by recipes.
// It corresponds to a row in the `ingredients` table.
type Ingredient struct {
    ID        uint64    // ingredients.id
    OwnerID   uint64    // ingredients.user_id
    Name      string    // ingredients.name
    CreatedAt time.Time // ingredients.created_at
}

func (i Ingredient) String() string { return i.Name }
