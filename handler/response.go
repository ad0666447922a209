package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/yardimagi/backend-api-go/matching"
	log "github.com/yardimagi/backend-api-go/pkg/logger"
	"github.com/yardimagi/backend-api-go/requests"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ListResponse struct {
	Count      int                 `json:"count"`
	Results    []matching.Result   `json:"results"`
	Pagination matching.Pagination `json:"pagination"`
}

// respondError maps domain error kinds onto HTTP statuses in one place.
// Anything that is not a typed domain error becomes an opaque 500; the
// detail stays in the logs.
func respondError(ctx *fiber.Ctx, err error) error {
	var domainErr *requests.Error
	if errors.As(err, &domainErr) {
		return ctx.Status(statusOf(domainErr.Kind)).JSON(ErrorResponse{
			Message: domainErr.Message,
			Fields:  domainErr.Fields,
		})
	}

	log.Logger().Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "internal error",
	})
}

func statusOf(kind requests.ErrorKind) int {
	switch kind {
	case requests.KindValidation:
		return fiber.StatusBadRequest
	case requests.KindNotFound:
		return fiber.StatusNotFound
	case requests.KindForbidden:
		return fiber.StatusForbidden
	case requests.KindConflict:
		return fiber.StatusConflict
	case requests.KindInvalidState:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// queryFloat reads an optional float query param. Absent or unparseable
// values report false so callers can fall back.
func queryFloat(ctx *fiber.Ctx, name string) (float64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func queryInt(ctx *fiber.Ctx, name string, def int) int {
	value, err := strconv.Atoi(ctx.Query(name))
	if err != nil {
		return def
	}
	return value
}
