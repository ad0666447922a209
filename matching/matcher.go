package matching

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yardimagi/backend-api-go/geo"
	"github.com/yardimagi/backend-api-go/requests"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// candidateLimit caps the bounding-box fetch; past this the feed is
	// paginating noise anyway.
	candidateLimit = 1000
)

// Query describes one nearby listing call. Origin carries explicit caller
// coordinates; when nil (or invalid) the caller's profile location is tried
// instead. RadiusKm <= 0 disables distance filtering and returns the full
// matching set.
type Query struct {
	CallerID string
	Origin   *geo.Point
	RadiusKm float64
	Category requests.Category
	Priority requests.Priority
	Search   string
	Page     int
	PageSize int
}

// Result is a feed entry: the redacted request plus its exact distance from
// the resolved origin. Distance fields stay empty when no origin resolved.
type Result struct {
	requests.HelpRequest
	DistanceKm        *float64 `json:"distance,omitempty"`
	DistanceFormatted string   `json:"distance_formatted,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type Page struct {
	Items      []Result   `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Matcher runs the donor-facing nearby listing: a bounding-box candidate
// fetch against the store, an exact Haversine recheck of every candidate,
// ranking, then pagination over what survived. Pagination happens after the
// strict recheck so reported totals match what callers can actually page
// through.
type Matcher struct {
	store    requests.Store
	profiles requests.ProfileDirectory
	now      func() time.Time
}

func NewMatcher(store requests.Store, profiles requests.ProfileDirectory) *Matcher {
	return &Matcher{store: store, profiles: profiles, now: time.Now}
}

func (m *Matcher) Search(ctx context.Context, q Query) (*Page, error) {
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, requests.Validation("priority filter must be one of low, medium, high, critical")
	}

	origin, err := m.resolveOrigin(ctx, q)
	if err != nil {
		return nil, err
	}

	filter := requests.CandidateFilter{
		ExcludeRecipient: q.CallerID,
		Category:         q.Category,
		Priority:         q.Priority,
		Search:           strings.TrimSpace(q.Search),
		Now:              m.now(),
		Limit:            candidateLimit,
	}

	// The box is a spherical-cap approximation: it can admit points just
	// outside the true circle, so every candidate is rechecked with the
	// exact distance below.
	radiusActive := origin != nil && q.RadiusKm > 0
	if radiusActive {
		box := geo.BoundingBox(*origin, q.RadiusKm)
		filter.Box = &box
	}

	candidates, err := m.store.Candidates(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(candidates))
	for _, req := range candidates {
		res := Result{HelpRequest: requests.RedactForViewer(req, q.CallerID)}
		if origin != nil {
			exact := geo.Haversine(*origin, req.Pickup.Coordinates)
			if radiusActive && exact > q.RadiusKm {
				continue
			}
			d := geo.RoundKm(exact)
			res.DistanceKm = &d
			res.DistanceFormatted = geo.FormatDistance(d)
		}
		results = append(results, res)
	}

	if origin != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			ri, rj := results[i].Priority.Rank(), results[j].Priority.Rank()
			if ri != rj {
				return ri > rj
			}
			return results[i].CreatedAt.After(results[j].CreatedAt)
		})
	}

	return paginate(results, q.Page, q.PageSize), nil
}

// resolveOrigin picks the query origin: explicit coordinates when valid,
// else the caller's profile location, else none. No fixed fallback location
// is ever substituted; an unresolvable origin means an unranked feed.
func (m *Matcher) resolveOrigin(ctx context.Context, q Query) (*geo.Point, error) {
	if q.Origin != nil && q.Origin.Valid() {
		p := *q.Origin
		return &p, nil
	}
	if q.CallerID == "" {
		return nil, nil
	}
	profile, err := m.profiles.Get(ctx, q.CallerID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Coordinates == nil || !profile.Coordinates.Valid() {
		return nil, nil
	}
	p := *profile.Coordinates
	return &p, nil
}

// paginate slices the post-filter result set. Out-of-range pages clamp to
// the last valid page instead of erroring or returning an empty tail.
func paginate(results []Result, page, pageSize int) *Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(results)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &Page{
		Items: results[start:end],
		Pagination: Pagination{
			Page:       page,
			TotalPages: totalPages,
			TotalItems: total,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
