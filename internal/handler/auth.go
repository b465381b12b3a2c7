package handler

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/recipe-api/internal/config"
    "github.com/iliyamo/recipe-api/internal/middleware"
    "github.com/iliyamo/recipe-api/internal/model"
    "github.com/iliyamo/recipe-api/internal/repository"
    "github.com/iliyamo/recipe-api/internal/utils"
)

// UserStore is implemented by repository.UserRepo.
type UserStore interface {
    CreateUser(ctx context.Context, email, password string, opts ...repository.UserOption) (*model.User, error)
    GetByEmail(ctx context.Context, email string) (*model.User, error)
    GetByID(ctx context.Context, id uint64) (*model.User, error)
    SetPassword(ctx context.Context, id uint64, password string) error
}

// TokenStore is implemented by repository.TokenRepo.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth and account endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
    Log    *slog.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, log *slog.Logger) *AuthHandler {
    if log == nil {
        log = slog.Default()
    }
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type credentialsReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}
type passwordReq struct {
    CurrentPassword string `json:"current_password"`
    NewPassword     string `json:"new_password"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID          uint64 `json:"id"`
    Email       string `json:"email"`
    IsStaff     bool   `json:"is_staff"`
    IsSuperuser bool   `json:"is_superuser"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func newUserPart(u *model.User) userPart {
    return userPart{ID: u.ID, Email: u.Email, IsStaff: u.IsStaff, IsSuperuser: u.IsSuperuser}
}

// issue creates an access token and a stored refresh token for u.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.IsStaff, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    newUserPart(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req credentialsReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    if req.Password == "" {
        return writeError(c, h.Log, repository.Missing("password"))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.CreateUser(ctx, req.Email, req.Password)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req credentialsReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    if strings.TrimSpace(req.Email) == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
        }
        return writeError(c, h.Log, err)
    }
    if !u.IsActive || !u.CheckPassword(req.Password) {
        return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if errors.Is(err, repository.ErrTokenInvalid) {
            return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid refresh"})
        }
        return writeError(c, h.Log, err)
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return writeError(c, h.Log, err)
    }

    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid refresh"})
        }
        return writeError(c, h.Log, err)
    }
    if !u.IsActive {
        return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid refresh"})
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the caller when only a bearer access token is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
    // An empty body binds cleanly; a body that does not parse is rejected.
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    refreshToken := strings.TrimSpace(req.RefreshToken)
    id := middleware.IdentityFrom(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    switch {
    case refreshToken != "":
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return writeError(c, h.Log, err)
        }
        return c.NoContent(http.StatusNoContent)
    case id.Authenticated():
        if err := h.Tokens.RevokeAllForUser(ctx, id.UserID); err != nil {
            return writeError(c, h.Log, err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, map[string]string{"error": "provide Authorization header or refresh_token"})
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c echo.Context) error {
    id := middleware.IdentityFrom(c)
    u, err := h.Users.GetByID(c.Request().Context(), id.UserID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, newUserPart(u))
}

// ChangePassword checks the current password, stores the new one and
// revokes all refresh tokens so other sessions must sign in again.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    var req passwordReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    if req.NewPassword == "" {
        return writeError(c, h.Log, repository.Missing("new_password"))
    }
    id := middleware.IdentityFrom(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id.UserID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    if !u.CheckPassword(req.CurrentPassword) {
        return writeError(c, h.Log, repository.Invalid("current_password"))
    }
    if err := h.Users.SetPassword(ctx, u.ID, req.NewPassword); err != nil {
        return writeError(c, h.Log, err)
    }
    if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
        return writeError(c, h.Log, err)
    }
    return c.NoContent(http.StatusNoContent)
}
