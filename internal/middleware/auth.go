package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // context is part of the UserSource contract
    "errors"   // errors.Is distinguishes the token failure modes
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/davitp/timesheet-tracker/internal/model"      // user record returned by the source
    "github.com/davitp/timesheet-tracker/internal/repository" // sentinel errors from the store
    "github.com/davitp/timesheet-tracker/internal/utils"      // session token parsing
)

// UserSource is the slice of the user store the guard needs: resolving the
// token's subject to a live user record. *repository.UserRepo satisfies it.
type UserSource interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// BearerAuth returns an Echo middleware that gates every protected operation.
// It extracts a Bearer token, verifies its signature and expiry, resolves the
// decoded user against the store, and then requires the user's stored active
// token to equal the presented token exactly.  The second check is what
// invalidates a token the moment its owner logs out or logs in elsewhere,
// even while the token's own signature and expiry are still valid.
//
// On success the acting user's identity is injected into the request context
// under "user_id", "email" and "name" for handlers to consume.
func BearerAuth(secret string, users UserSource) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the token.
            auth := c.Request().Header.Get("Authorization")
            if auth == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authorization header is required"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is required"})
            }

            // Verify signature and expiry.  Expired tokens get a distinct
            // message so clients know to re-authenticate rather than retry.
            claims, err := utils.ParseSessionToken(secret, raw)
            if err != nil {
                if errors.Is(err, utils.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token has expired"})
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
            }

            // The decoded user must still exist...
            u, err := users.GetByID(c.Request().Context(), claims.UserID)
            if err != nil {
                if errors.Is(err, repository.ErrUserNotFound) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "User not found"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
            }
            // ...and the presented token must be the user's single live
            // session token.
            if u.ActiveToken != raw {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
            }

            c.Set("user_id", u.ID)
            c.Set("email", u.Email)
            c.Set("name", u.Name)
            return next(c)
        }
    }
}
