package middleware // reusable HTTP middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/recipe-api/internal/auth"
    "github.com/iliyamo/recipe-api/internal/utils"
)

// Identify resolves the request's auth.Identity from a Bearer access token
// and never rejects: a missing or unusable token leaves the caller
// anonymous.  It runs ahead of the rate limiter and access logger so both
// see the caller.
func Identify(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, _ := identityFromHeader(c, secret)
            setIdentity(c, id)
            return next(c)
        }
    }
}

// JWTAuth is the strict variant guarding API routes.  A request without an
// Authorization header continues as auth.Anonymous so that the access layer
// decides what anonymous callers may do.  A header that is present but
// malformed, expired or badly signed is answered with 401 right away.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, msg := identityFromHeader(c, secret)
            if msg != "" {
                return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
            }
            setIdentity(c, id)
            return next(c)
        }
    }
}

// identityFromHeader parses the Authorization header.  msg is non-empty
// when a header was sent but could not be accepted.
func identityFromHeader(c echo.Context, secret string) (id auth.Identity, msg string) {
    header := c.Request().Header.Get("Authorization")
    if header == "" {
        return auth.Anonymous, ""
    }
    if !strings.HasPrefix(header, "Bearer ") {
        return auth.Anonymous, "missing bearer token"
    }
    claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
    if err != nil {
        return auth.Anonymous, "invalid token"
    }
    return auth.User(claims.UserID, claims.Staff), ""
}
