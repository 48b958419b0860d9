package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // errors.Is matches repository sentinels
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/davitp/timesheet-tracker/internal/config"     // app configuration
    "github.com/davitp/timesheet-tracker/internal/repository" // DB repositories
    "github.com/davitp/timesheet-tracker/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for the credential endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type logoutReq struct {
	Token string `json:"token"`
}

type authResp struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Register: create the user, issue a session token and store it as the
// user's single active session.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
	}
	name, msg := validateName(req.Name)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	email, msg := validateEmail(req.Email)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	if msg := validatePassword(req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, name, email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	token, err := h.issueSession(ctx, uid, email, name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusCreated, authResp{Name: name, Email: email, Token: token})
}

// Login: verify the credentials and rotate the active session token.
// The failure message never says which half of the pair was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required"})
	}
	email, msg := validateEmail(req.Email)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}

	token, err := h.issueSession(ctx, u.ID, u.Email, u.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, authResp{Name: u.Name, Email: u.Email, Token: token})
}

// Logout: end the session identified by the presented token.  The token may
// arrive in the Authorization header or in the body.  A token that matches
// no stored session (including one already logged out) is rejected.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer "))
	if token == "" {
		var req logoutReq
		_ = c.Bind(&req)
		token = strings.TrimSpace(req.Token)
	}
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if err := h.Users.ClearActiveToken(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me: return the acting user resolved by the auth guard.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    uid,
		"name":  c.Get("name"),
		"email": c.Get("email"),
	})
}

// issueSession signs a fresh session token and persists it as the user's
// active token, displacing any previous session.
func (h *AuthHandler) issueSession(ctx context.Context, uid uint64, email, name string) (string, error) {
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, email, name, h.Cfg.TokenTTLDays)
	if err != nil {
		return "", err
	}
	if err := h.Users.SetActiveToken(ctx, uid, tok.Token); err != nil {
		return "", err
	}
	return tok.Token, nil
}
