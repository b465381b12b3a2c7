package model

import (
    "strings"
    "time"

    "github.com/iliyamo/recipe-api/internal/utils"
)

// User represents an account record as stored in the `users` table.
// The plaintext password is never kept; only its bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, fully lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account may log in.
//  IsStaff      – whether the account has staff privileges.
//  IsSuperuser  – whether the account has every privilege.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    IsActive     bool      // users.is_active
    IsStaff      bool      // users.is_staff
    IsSuperuser  bool      // users.is_superuser
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
    if u == nil || u.PasswordHash == "" {
        return false
    }
    return utils.VerifyPassword(u.PasswordHash, plain)
}

// String returns the email, which identifies the account.
func (u *User) String() string {
    if u == nil {
        return ""
    }
    return u.Email
}

// NormalizeEmail trims surrounding whitespace and lowercases the whole address.
func NormalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
