// Package profile is the client for the account/profile service that owns
// user addresses and coordinates. Pickup locations are copied from here at
// request creation time; they are never caller-supplied.
package profile

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/yardimagi/backend-api-go/geo"
	log "github.com/yardimagi/backend-api-go/pkg/logger"
	"github.com/yardimagi/backend-api-go/requests"
)

const requestTimeout = time.Second * 5

type Client struct {
	baseURL string
	apiKey  string
}

func NewClient() *Client {
	baseURL := os.Getenv("PROFILE_API_URL")
	if baseURL == "" {
		log.Logger().Panic("PROFILE_API_URL env variable must be set")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("PROFILE_API_KEY"),
	}
}

type profilePayload struct {
	UserID      string     `json:"user_id"`
	Address     string     `json:"address"`
	ZipCode     string     `json:"zip_code"`
	Coordinates *geo.Point `json:"coordinates"`
}

// Get fetches a user's profile. A 404 from the profile service means the
// user has none, which is reported as (nil, nil), not an error.
func (c *Client) Get(ctx context.Context, userID string) (*requests.Profile, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(res)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.SetRequestURI(c.baseURL + "/profiles/" + url.PathEscape(userID))

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(requestTimeout)
	}
	if err := fasthttp.DoDeadline(req, res, deadline); err != nil {
		return nil, fmt.Errorf("could not reach profile service: %w", err)
	}

	switch res.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("profile service returned status %d", res.StatusCode())
	}

	var payload profilePayload
	if err := jsoniter.Unmarshal(res.Body(), &payload); err != nil {
		return nil, fmt.Errorf("could not decode profile response: %w", err)
	}

	return &requests.Profile{
		UserID:      payload.UserID,
		Address:     payload.Address,
		ZipCode:     payload.ZipCode,
		Coordinates: payload.Coordinates,
	}, nil
}

var _ requests.ProfileDirectory = (*Client)(nil)
