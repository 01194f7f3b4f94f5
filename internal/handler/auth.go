package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/utils"
)

// AuthHandler implements registration, login and profile lookup.  The
// identity layer is deliberately small: a single short-lived HS256
// access token per session, no refresh rotation.
type AuthHandler struct {
    Users        *repository.UserRepo // user persistence
    JWTSecret    string               // secret used to sign access tokens
    AccessTTLMin int                  // access token lifetime in minutes
    BcryptCost   int                  // bcrypt cost for password hashing
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *repository.UserRepo, secret string, ttlMin, bcryptCost int) *AuthHandler {
    if users == nil {
        panic("nil repository passed to NewAuthHandler")
    }
    return &AuthHandler{Users: users, JWTSecret: secret, AccessTTLMin: ttlMin, BcryptCost: bcryptCost}
}

// Register handles POST /v1/auth/register.  New accounts always get
// the READER role; administrators are promoted out of band.
func (h *AuthHandler) Register(c echo.Context) error {
    var body struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    email := strings.ToLower(strings.TrimSpace(body.Email))
    if email == "" || !strings.Contains(email, "@") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email is required"})
    }
    if len(body.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
    }

    hash, err := utils.HashPassword(body.Password, h.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hash password"})
    }

    u := &model.User{Email: email, PasswordHash: hash, Role: model.RoleReader}
    if err := h.Users.Create(c.Request().Context(), u); err != nil {
        if errors.Is(err, repository.ErrEmailTaken) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "id":    u.ID,
        "email": u.Email,
        "role":  u.Role,
    })
}

// Login handles POST /v1/auth/login and returns a signed access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var body struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    email := strings.ToLower(strings.TrimSpace(body.Email))

    u, err := h.Users.GetByEmail(c.Request().Context(), email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            // Same response as a wrong password; do not leak which one it was.
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
    }
    if !utils.VerifyPassword(u.PasswordHash, body.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign token"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "access_token": tok.Token,
        "expires_at":   tok.Exp,
        "role":         u.Role,
    })
}

// Me handles GET /v1/me and returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    u, err := h.Users.GetByID(c.Request().Context(), userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":         u.ID,
        "email":      u.Email,
        "role":       u.Role,
        "created_at": u.CreatedAt,
    })
}
