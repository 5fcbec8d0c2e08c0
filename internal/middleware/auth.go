// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"kindler/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer is the expected issuer of all tokens minted by this service.
	TokenIssuer = "kindler-api"
	// TokenAudience is the expected audience of all tokens minted by this service.
	TokenAudience = "kindler-client"
)

// TokenRevoker checks whether an access token has been revoked by its JWT ID.
type TokenRevoker interface {
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	cfg     *config.Config
	revoker TokenRevoker
)

// InitMiddleware initializes authentication middleware with the given config
// and an optional token revoker. A nil revoker disables revocation checks.
func InitMiddleware(c *config.Config, r TokenRevoker) {
	cfg = c
	revoker = r
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
	})
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized(c, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)

	if err != nil || !token.Valid {
		return unauthorized(c, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(c, "Invalid token claims")
	}

	// Refresh tokens must not be accepted on API routes
	if typ, _ := claims["typ"].(string); typ != "access" {
		return unauthorized(c, "Invalid token type")
	}

	if revoker != nil {
		if jti, _ := claims["jti"].(string); jti != "" {
			// Revocation check fails open when the store is unreachable
			if revoked, err := revoker.IsAccessTokenRevoked(c.UserContext(), jti); err == nil && revoked {
				return unauthorized(c, "Token has been revoked")
			}
		}
	}

	subClaim, ok := claims["sub"]
	if !ok {
		return unauthorized(c, "Invalid token structure - missing subject")
	}

	subStr, ok := subClaim.(string)
	if !ok {
		return unauthorized(c, "Invalid token subject type")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return unauthorized(c, "Invalid user ID in token")
	}

	c.Locals("userID", uint(userIDVal))

	return c.Next()
}
