package auth

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	ApiKeyHeaderName = "X-Api-Key"
	UserIDHeaderName = "X-User-Id"

	// UserIDKey is the fiber locals key carrying the acting user id.
	UserIDKey = "user_id"
)

// New guards mutating endpoints with the service api key and copies the
// acting user id out of the gateway header. The gateway has already
// authenticated the account and only forwards approved actors, so the id
// is trusted as-is here.
func New() fiber.Handler {
	apiKey := os.Getenv("ApiKey")

	return func(ctx *fiber.Ctx) error {
		apiKeyNeeded := strings.Contains(ctx.Path(), "pprof")

		switch ctx.Method() {
		case fiber.MethodPost, fiber.MethodPatch, fiber.MethodDelete:
			apiKeyNeeded = true
		}

		if apiKeyNeeded && ctx.GetReqHeaders()[ApiKeyHeaderName] != apiKey {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}

		ctx.Locals(UserIDKey, ctx.GetReqHeaders()[UserIDHeaderName])
		return ctx.Next()
	}
}

// UserID reads the acting user id stored by New. Empty means anonymous.
func UserID(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}
