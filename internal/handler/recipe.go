package handler

import (
    "context"
    "log/slog"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/recipe-api/internal/auth"
    "github.com/iliyamo/recipe-api/internal/middleware"
    "github.com/iliyamo/recipe-api/internal/repository"
    "github.com/iliyamo/recipe-api/internal/serializer"
    "github.com/iliyamo/recipe-api/internal/service"
)

// RecipeAPI is the part of service.RecipeService used by the HTTP layer.
type RecipeAPI interface {
    ListRecipes(ctx context.Context, id auth.Identity) ([]serializer.RecipeSummary, error)
    GetRecipe(ctx context.Context, id auth.Identity, recipeID uint64) (serializer.RecipeDetail, error)
    CreateRecipe(ctx context.Context, id auth.Identity, in service.CreateRecipeInput) (serializer.RecipeSummary, error)
    ListTags(ctx context.Context, id auth.Identity) ([]serializer.Tag, error)
    CreateTag(ctx context.Context, id auth.Identity, in service.CreateLabelInput) (serializer.Tag, error)
    ListIngredients(ctx context.Context, id auth.Identity) ([]serializer.Ingredient, error)
    CreateIngredient(ctx context.Context, id auth.Identity, in service.CreateLabelInput) (serializer.Ingredient, error)
}

// RecipeHandler serves recipes, tags and ingredients.  It only translates
// between HTTP and the access layer; ownership and validation live there.
type RecipeHandler struct {
    Svc RecipeAPI
    Log *slog.Logger
}

func NewRecipeHandler(svc RecipeAPI, log *slog.Logger) *RecipeHandler {
    if svc == nil {
        panic("nil service passed to NewRecipeHandler")
    }
    if log == nil {
        log = slog.Default()
    }
    return &RecipeHandler{Svc: svc, Log: log}
}

// ListRecipes: GET /v1/recipes/
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
    out, err := h.Svc.ListRecipes(c.Request().Context(), middleware.IdentityFrom(c))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, out)
}

// GetRecipe: GET /v1/recipes/:id/
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
    id := middleware.IdentityFrom(c)
    if !id.Authenticated() {
        return writeError(c, h.Log, service.ErrUnauthenticated)
    }
    recipeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || recipeID == 0 {
        return writeError(c, h.Log, repository.ErrRecipeNotFound)
    }
    out, err := h.Svc.GetRecipe(c.Request().Context(), id, recipeID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, out)
}

// CreateRecipe: POST /v1/recipes/
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
    id := middleware.IdentityFrom(c)
    if !id.Authenticated() {
        return writeError(c, h.Log, service.ErrUnauthenticated)
    }
    var in service.CreateRecipeInput
    if err := c.Bind(&in); err != nil {
        return badBody(c)
    }
    out, err := h.Svc.CreateRecipe(c.Request().Context(), id, in)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// ListTags: GET /v1/tags/
func (h *RecipeHandler) ListTags(c echo.Context) error {
    out, err := h.Svc.ListTags(c.Request().Context(), middleware.IdentityFrom(c))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, out)
}

// CreateTag: POST /v1/tags/
func (h *RecipeHandler) CreateTag(c echo.Context) error {
    id := middleware.IdentityFrom(c)
    if !id.Authenticated() {
        return writeError(c, h.Log, service.ErrUnauthenticated)
    }
    var in service.CreateLabelInput
    if err := c.Bind(&in); err != nil {
        return badBody(c)
    }
    out, err := h.Svc.CreateTag(c.Request().Context(), id, in)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// ListIngredients: GET /v1/ingredients/
func (h *RecipeHandler) ListIngredients(c echo.Context) error {
    out, err := h.Svc.ListIngredients(c.Request().Context(), middleware.IdentityFrom(c))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, out)
}

// CreateIngredient: POST /v1/ingredients/
func (h *RecipeHandler) CreateIngredient(c echo.Context) error {
    id := middleware.IdentityFrom(c)
    if !id.Authenticated() {
        return writeError(c, h.Log, service.ErrUnauthenticated)
    }
    var in service.CreateLabelInput
    if err := c.Bind(&in); err != nil {
        return badBody(c)
    }
    out, err := h.Svc.CreateIngredient(c.Request().Context(), id, in)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, out)
}
