package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yardimagi/backend-api-go/middleware/auth"
	"github.com/yardimagi/backend-api-go/requests"
)

type noteRequest struct {
	Text string `json:"text"`
}

type rateRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

type flagRequest struct {
	Reason string `json:"reason"`
}

// handleApprove godoc
// @Summary            Approve an open request as its donor
// @Tags               Lifecycle
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Router             /requests/{id}/approve [POST]
func (h *RequestsHandler) HandleApprove(ctx *fiber.Ctx) error {
	req, err := h.service.Approve(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// handleComplete godoc
// @Summary            Mark an approved request as completed
// @Tags               Lifecycle
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Router             /requests/{id}/complete [POST]
func (h *RequestsHandler) HandleComplete(ctx *fiber.Ctx) error {
	req, err := h.service.Complete(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// handleAddNote godoc
// @Summary            Append a coordination note
// @Tags               Lifecycle
// @Accept             json
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Param              body body noteRequest true "RequestBody"
// @Router             /requests/{id}/notes [POST]
func (h *RequestsHandler) HandleAddNote(ctx *fiber.Ctx) error {
	body := noteRequest{}
	if err := ctx.BodyParser(&body); err != nil {
		return respondError(ctx, requests.Validation("could not parse request body"))
	}

	req, err := h.service.AddNote(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx), body.Text)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// handleMarkInterest godoc
// @Summary            Mark interest in an open request
// @Tags               Lifecycle
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Router             /requests/{id}/interest [POST]
func (h *RequestsHandler) HandleMarkInterest(ctx *fiber.Ctx) error {
	req, err := h.service.MarkInterested(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// handleRate godoc
// @Summary            Rate the other party of a completed request
// @Tags               Lifecycle
// @Accept             json
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Param              body body rateRequest true "RequestBody"
// @Router             /requests/{id}/rate [POST]
func (h *RequestsHandler) HandleRate(ctx *fiber.Ctx) error {
	body := rateRequest{}
	if err := ctx.BodyParser(&body); err != nil {
		return respondError(ctx, requests.Validation("could not parse request body"))
	}

	req, err := h.service.Rate(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx), body.Stars, body.Comment)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}

// handleFlag godoc
// @Summary            Flag a request for moderation
// @Tags               Lifecycle
// @Accept             json
// @Produce            json
// @Success            200 {object} requests.HelpRequest
// @Param              id path string true "Request Id"
// @Param              body body flagRequest true "RequestBody"
// @Router             /requests/{id}/flag [POST]
func (h *RequestsHandler) HandleFlag(ctx *fiber.Ctx) error {
	body := flagRequest{}
	if err := ctx.BodyParser(&body); err != nil {
		return respondError(ctx, requests.Validation("could not parse request body"))
	}

	req, err := h.service.Flag(ctx.UserContext(), ctx.Params("id"), auth.UserID(ctx), body.Reason)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(req)
}
