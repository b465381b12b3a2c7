package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireAuth aborts with 401 unless JWTAuth resolved an authenticated
// identity.  Recipe routes do not need it since the access layer checks the
// identity itself; account routes do.
func RequireAuth() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !IdentityFrom(c).Authenticated() {
                return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication credentials were not provided"})
            }
            return next(c)
        }
    }
}
