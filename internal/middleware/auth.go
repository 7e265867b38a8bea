// Package middleware contains HTTP middleware for the Matchplay API —
// cross-cutting concerns that run before route handlers. Only authentication
// lives here: the spectator surface is deliberately public (the share code is
// its whole credential) and everything else just needs a known owner.
package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/trentd187/golf-matchplay/internal/config"
	"github.com/trentd187/golf-matchplay/internal/models"
)

// Claims defines the data we expect inside the identity provider's JWT.
// Subject carries the provider's user ID; the custom claims populate our
// users table on first sight:
//
//	"role":  "{{user.public_metadata.role}}"
//	"email": "{{user.primary_email_address}}"
//	"name":  "{{user.full_name}}"
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Auth returns a Fiber middleware that:
//  1. Validates the JWT from the "Authorization: Bearer <token>" header
//  2. Finds the matching user in our database, creating one on first visit
//     (lazy user sync)
//  3. Stores the user's internal UUID and role in the request context via
//     c.Locals, so handlers never re-parse the token
//
// The owner identity set here is what keys the saved match, the local cache
// file, and the share codes — a request without it can only hit the public
// spectator routes.
func Auth(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		// TODO: replace ParseUnverified with full JWKS signature verification
		// before production — unverified parsing is only acceptable in dev.
		token, _, err := jwt.NewParser().ParseUnverified(tokenStr, &Claims{})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token claims"})
		}

		providerUserID := claims.Subject
		if providerUserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token missing subject"})
		}

		role := roleFromClaim(claims.Role)

		// Fall back to deterministic placeholders when the JWT template
		// doesn't carry the custom claims yet.
		email := claims.Email
		if email == "" {
			email = fmt.Sprintf("%s@clerk.local", providerUserID)
		}
		name := claims.Name
		if name == "" {
			name = "Player"
		}

		var user models.User
		result := db.Where("clerk_id = ?", providerUserID).First(&user)
		if result.Error != nil {
			if result.Error != gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
			}
			user = models.User{
				ClerkID:     &providerUserID,
				DisplayName: name,
				Email:       email,
				Role:        role,
			}
			if err := db.Create(&user).Error; err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create user record"})
			}
		} else if user.Role != role && claims.Role != "" {
			// Role changed at the identity provider; sync it.
			db.Model(&user).Update("role", role)
			user.Role = role
		}

		c.Locals("userID", user.ID.String())
		c.Locals("userRole", string(user.Role))
		return c.Next()
	}
}

// roleFromClaim converts the raw role claim into our typed enum, defaulting
// to the least-privileged role when missing or unrecognised.
func roleFromClaim(s string) models.UserRole {
	if s == "admin" {
		return models.UserRoleAdmin
	}
	return models.UserRoleUser
}
