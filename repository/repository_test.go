package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardimagi/backend-api-go/geo"
	"github.com/yardimagi/backend-api-go/requests"
)

var queryNow = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCandidatesQueryMinimal(t *testing.T) {
	sql, args, err := candidatesQuery(requests.CandidateFilter{Now: queryNow})
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM help_requests")
	assert.Contains(t, sql, "status = $1")
	assert.Contains(t, sql, "window_end > $2")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.NotContains(t, sql, "latitude")
	assert.NotContains(t, sql, "ILIKE")
	assert.NotContains(t, sql, "LIMIT")

	assert.Equal(t, []interface{}{requests.StatusOpen, queryNow}, args)
}

func TestCandidatesQueryFullFilter(t *testing.T) {
	box := geo.Box{SwLat: 39.9, SwLng: -74.2, NeLat: 40.1, NeLng: -73.8}
	sql, args, err := candidatesQuery(requests.CandidateFilter{
		ExcludeRecipient: "donor-1",
		Category:         "food",
		Priority:         requests.PriorityHigh,
		Search:           "battaniye",
		Box:              &box,
		Now:              queryNow,
		Limit:            1000,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "recipient_id <> $3")
	assert.Contains(t, sql, "category = $4")
	assert.Contains(t, sql, "priority = $5")
	assert.Contains(t, sql, "(title ILIKE $6 OR description ILIKE $7)")
	assert.Contains(t, sql, "latitude >= $8")
	assert.Contains(t, sql, "latitude <= $9")
	assert.Contains(t, sql, "longitude >= $10")
	assert.Contains(t, sql, "longitude <= $11")
	assert.Contains(t, sql, "LIMIT 1000")

	assert.Equal(t, []interface{}{
		requests.StatusOpen, queryNow, "donor-1",
		requests.Category("food"), requests.PriorityHigh,
		"%battaniye%", "%battaniye%",
		39.9, 40.1, -74.2, -73.8,
	}, args)
}

func TestCandidatesQuerySearchPattern(t *testing.T) {
	_, args, err := candidatesQuery(requests.CandidateFilter{Now: queryNow, Search: "çadır"})
	require.NoError(t, err)
	require.Len(t, args, 4)
	assert.Equal(t, "%çadır%", args[2])
	assert.Equal(t, "%çadır%", args[3])
}

func TestCandidatesQueryBoxBounds(t *testing.T) {
	// the box built from a radius lands in the query as plain range checks
	box := geo.BoundingBox(geo.Point{Lat: 40.0, Lng: -74.0}, 10)
	sql, args, err := candidatesQuery(requests.CandidateFilter{Now: queryNow, Box: &box})
	require.NoError(t, err)

	assert.Contains(t, sql, "latitude >= $3")
	assert.Contains(t, sql, "longitude <= $6")
	require.Len(t, args, 6)
	assert.Equal(t, box.SwLat, args[2])
	assert.Equal(t, box.NeLat, args[3])
	assert.Equal(t, box.SwLng, args[4])
	assert.Equal(t, box.NeLng, args[5])
}
