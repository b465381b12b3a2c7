package model

import "time"

// Tag is a user-scoped label attached to recipes (e.g. "vegan", "dessert").
// It corresponds to a row in the `tags` table.
type Tag struct {
    ID        uint64    // tags.id
    OwnerID   uint64    // tags.user_id
    Name      string    // tags.name
    CreatedAt time.Time // tags.created_at
}

func (t Tag) String() string { return t.Name }
