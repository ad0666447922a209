package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yardimagi/backend-api-go/geo"
	"github.com/yardimagi/backend-api-go/matching"
	"github.com/yardimagi/backend-api-go/middleware/auth"
	"github.com/yardimagi/backend-api-go/requests"
)

// handleNearby godoc
// @Summary            List open requests near the caller
// @Tags               Request
// @Produce            json
// @Success            200 {object} ListResponse
// @Param              lat query number false "Origin latitude"
// @Param              lng query number false "Origin longitude"
// @Param              radius query number false "Radius in km, 0 lists everything"
// @Param              category query string false "Category filter"
// @Param              priority query string false "Priority filter"
// @Param              q query string false "Free text search over title and description"
// @Param              page query integer false "Page"
// @Param              page_size query integer false "Page size"
// @Router             /requests/nearby [GET]
func (h *RequestsHandler) HandleNearby(ctx *fiber.Ctx) error {
	query := matching.Query{
		CallerID: auth.UserID(ctx),
		Category: requests.Category(ctx.Query("category")),
		Priority: requests.Priority(ctx.Query("priority")),
		Search:   ctx.Query("q"),
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", matching.DefaultPageSize),
	}

	lat, latOK := queryFloat(ctx, "lat")
	lng, lngOK := queryFloat(ctx, "lng")
	if latOK && lngOK {
		query.Origin = &geo.Point{Lat: lat, Lng: lng}
	}
	if radius, ok := queryFloat(ctx, "radius"); ok {
		query.RadiusKm = radius
	}

	page, err := h.matcher.Search(ctx.UserContext(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(ListResponse{
		Count:      len(page.Items),
		Results:    page.Items,
		Pagination: page.Pagination,
	})
}
