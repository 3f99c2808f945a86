// Package middleware contains the fiber middleware shared by all routes.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"devconnect/internal/auth"
	"devconnect/internal/models"
	"devconnect/internal/observability"
)

// TokenHeader carries the credential. Authorization: Bearer is accepted when it is absent.
const TokenHeader = "x-auth-token"

// TokenVerifier resolves a credential to the caller's identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// credential returns the presented token and whether one was presented at
// all. A token header that is sent but blank still counts as presented.
func credential(c *fiber.Ctx) (string, bool) {
	if hasHeader(c, TokenHeader) {
		return strings.TrimSpace(c.Get(TokenHeader)), true
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:]), true
	}
	return "", false
}

func hasHeader(c *fiber.Ctx, name string) bool {
	found := false
	c.Request().Header.VisitAll(func(key, _ []byte) {
		if strings.EqualFold(string(key), name) {
			found = true
		}
	})
	return found
}

// AuthRequired rejects requests without a valid credential and stores the
// caller's id in c.Locals("userID") and in the request context.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, presented := credential(c)
		if !presented {
			return models.RespondWithError(c, models.NewUnauthenticatedError())
		}

		identity, err := verifier.Verify(token)
		if errors.Is(err, auth.ErrNoCredential) {
			err = fmt.Errorf("%w: blank token", auth.ErrInvalidCredential)
		}
		if err != nil {
			Logger.DebugContext(c.UserContext(), "credential rejected", "error", err)
			return models.RespondWithError(c, models.NewInvalidCredentialError(err))
		}

		c.Locals("userID", identity.UserID)
		ctx := context.WithValue(c.UserContext(), observability.UserIDKey, identity.UserID)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("user.id", identity.UserID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// UserID returns the id stored by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
