package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yardimagi/backend-api-go/cache"
)

// InvalidateCache drops every cached response. Operators hit this after
// out-of-band data fixes.
func InvalidateCache() fiber.Handler {
	cacheRepo := cache.NewRedisRepository()

	return func(ctx *fiber.Ctx) error {
		if err := cacheRepo.Prune(); err != nil {
			ctx.Status(fiber.StatusInternalServerError)
			return ctx.SendString(err.Error())
		}

		return ctx.SendStatus(fiber.StatusOK)
	}
}
