package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yardimagi/backend-api-go/matching"
	"github.com/yardimagi/backend-api-go/middleware/auth"
	"github.com/yardimagi/backend-api-go/requests"
)

type RequestsHandler struct {
	service *requests.Service
	matcher *matching.Matcher
}

func NewRequestsHandler(service *requests.Service, matcher *matching.Matcher) *RequestsHandler {
	return &RequestsHandler{service: service, matcher: matcher}
}

// handleCreate godoc
// @Summary            Create a help request
// @Tags               Request
// @Accept             json
// @Produce            json
// @Success            201 {object} requests.HelpRequest
// @Param              body body requests.CreateRequestInput true "RequestBody"
// @Router             /requests [POST]
func (h *RequestsHandler) HandleCreate(ctx *fiber.Ctx) error {
	input := requests.CreateRequestInput{}
	if err := ctx.BodyParser(&input); err != nil {
		return respondError(ctx, requests.Validation("could not parse request body"))
	}

	req, err := h.service.Create(ctx.UserContext(), auth.UserID(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// handleGet godoc
// @Summary            Get a help request by id
// @Tags               Request
// @Produce            json
// @Success            200 {object} requests.RequestView
// @Param              id path string true "Request Id"
// @Router             /requests/{id} [GET]
func (h *RequestsHandler) HandleGet(ctx *fiber.Ctx) error {
	view, err := h.service.Get(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(view)
}

// handleUpdate godoc
// @Summary            Edit an open help request
// @Tags               Request
// @Accept             json
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Param              body body requests.UpdateRequestInput true "RequestBody"
// @Router             /requests/{id} [PATCH]
func (h *RequestsHandler) HandleUpdate(ctx *fiber.Ctx) error {
	input := requests.UpdateRequestInput{}
	if err := ctx.BodyParser(&input); err != nil {
		return respondError(ctx, requests.Validation("could not parse request body"))
	}

	req, err := h.service.Update(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// handleDelete godoc
// @Summary            Delete an open help request
// @Tags               Request
// @Produce            json
// @Success            204
// @Param              id path string true "Request Id"
// @Router             /requests/{id} [DELETE]
func (h *RequestsHandler) HandleDelete(ctx *fiber.Ctx) error {
	if err := h.service.Delete(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
