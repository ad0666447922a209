package cache

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yardimagi/backend-api-go/cache"
	"github.com/yardimagi/backend-api-go/middleware/auth"
	log "github.com/yardimagi/backend-api-go/pkg/logger"
)

const cacheTTL = time.Minute

// New caches GET responses in redis for a short window. Responses are
// viewer-dependent (redaction, capability flags, own-request exclusion), so
// the acting user id is part of the cache key and entries never cross
// viewers. Mutations drop the matching entry instead of being cached.
func New() fiber.Handler {
	cacheRepo := cache.NewRedisRepository()
	return func(c *fiber.Ctx) error {
		if c.Path() == "/healthcheck" ||
			c.Path() == "/metrics" ||
			c.Path() == "/monitor" {
			return c.Next()
		}

		keySource := auth.UserID(c) + ":" + c.OriginalURL()
		hashURL := uuid.NewSHA1(uuid.NameSpaceOID, []byte(keySource)).String()

		if c.Method() != http.MethodGet {
			if err := cacheRepo.Delete(hashURL); err != nil {
				log.Logger().Warn("could not invalidate cache entry", zap.Error(err))
			}
			return c.Next()
		}

		cacheData := cacheRepo.Get(hashURL)
		if len(cacheData) == 0 {
			err := c.Next()
			if err == nil && c.Response().StatusCode() == fiber.StatusOK && len(c.Response().Body()) > 0 {
				cacheRepo.SetKey(hashURL, c.Response().Body(), cacheTTL)
			}
			return err
		}

		c.Set("x-cached-response", "true")
		c.Response().SetBodyRaw(cacheData)
		c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
		return nil
	}
}
