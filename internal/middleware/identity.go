package middleware

// identity.go stores the resolved auth.Identity in the echo context and
// reads it back for handlers and other middleware.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/recipe-api/internal/auth"
)

const identityKey = "identity"

func setIdentity(c echo.Context, id auth.Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the identity set by Identify or JWTAuth, or
// auth.Anonymous when neither ran.
func IdentityFrom(c echo.Context) auth.Identity {
    if id, ok := c.Get(identityKey).(auth.Identity); ok {
        return id
    }
    return auth.Anonymous
}
