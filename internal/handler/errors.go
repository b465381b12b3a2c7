package handler

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/recipe-api/internal/repository"
    "github.com/iliyamo/recipe-api/internal/service"
)

// writeError maps domain errors onto HTTP responses.  Unknown errors are
// logged and reported as a generic 500.
func writeError(c echo.Context, log *slog.Logger, err error) error {
    var ve *repository.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Error()})
    case errors.Is(err, service.ErrUnauthenticated):
        return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, map[string]string{"error": "email already exists"})
    }
    if log == nil {
        log = slog.Default()
    }
    log.ErrorContext(c.Request().Context(), "request failed",
        "method", c.Request().Method, "path", c.Path(), "err", err)
    return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func badBody(c echo.Context) error {
    return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
}
