package requests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

func openRequest() *HelpRequest {
	return &HelpRequest{
		ID:          "req-1",
		RecipientID: "recipient-1",
		Title:       "Battaniye ve erzak",
		Status:      StatusOpen,
		Priority:    PriorityMedium,
		Window: AvailabilityWindow{
			StartDate: testNow.Add(-2 * time.Hour),
			EndDate:   testNow.Add(48 * time.Hour),
		},
	}
}

func approvedRequest() *HelpRequest {
	req := openRequest()
	req.Status = StatusApproved
	donor := "donor-1"
	req.DonorID = &donor
	at := testNow.Add(-time.Hour)
	req.ApprovedAt = &at
	return req
}

func completedRequest() *HelpRequest {
	req := approvedRequest()
	req.Status = StatusCompleted
	at := testNow.Add(-time.Minute)
	req.CompletedAt = &at
	return req
}

func TestCanApprove(t *testing.T) {
	assert.NoError(t, CanApprove(openRequest(), "donor-1", testNow))
}

func TestCanApproveOwnerAlwaysForbidden(t *testing.T) {
	req := openRequest()
	for _, status := range []Status{StatusOpen, StatusApproved, StatusCompleted} {
		req.Status = status
		err := CanApprove(req, req.RecipientID, testNow)
		assert.Equal(t, KindForbidden, KindOf(err), "status %s", status)
	}
}

func TestCanApproveNonOpenConflict(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(CanApprove(approvedRequest(), "donor-2", testNow)))
	assert.Equal(t, KindConflict, KindOf(CanApprove(completedRequest(), "donor-2", testNow)))
}

func TestCanApproveExpiredConflict(t *testing.T) {
	req := openRequest()
	req.Window.EndDate = testNow.Add(-time.Minute)
	assert.Equal(t, KindConflict, KindOf(CanApprove(req, "donor-1", testNow)))
}

func TestCanComplete(t *testing.T) {
	req := approvedRequest()
	assert.NoError(t, CanComplete(req, req.RecipientID))
	assert.NoError(t, CanComplete(req, *req.DonorID))
}

func TestCanCompleteChecksStateBeforeActor(t *testing.T) {
	// A never-approved request is InvalidState for anyone, even a stranger.
	err := CanComplete(openRequest(), "stranger")
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestCanCompleteStrangerForbidden(t *testing.T) {
	err := CanComplete(approvedRequest(), "stranger")
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCanCompleteCompletedIsTerminal(t *testing.T) {
	req := completedRequest()
	err := CanComplete(req, req.RecipientID)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestCanEdit(t *testing.T) {
	req := openRequest()
	assert.NoError(t, CanEdit(req, req.RecipientID, testNow))
	assert.Equal(t, KindForbidden, KindOf(CanEdit(req, "stranger", testNow)))
	assert.Equal(t, KindForbidden, KindOf(CanEdit(req, "", testNow)))
}

func TestCanEditNonOpenConflict(t *testing.T) {
	req := approvedRequest()
	assert.Equal(t, KindConflict, KindOf(CanEdit(req, req.RecipientID, testNow)))
}

func TestCanEditExpiredConflict(t *testing.T) {
	req := openRequest()
	req.Window.EndDate = testNow.Add(-time.Minute)
	assert.Equal(t, KindConflict, KindOf(CanEdit(req, req.RecipientID, testNow)))
}

func TestCanDelete(t *testing.T) {
	req := openRequest()
	assert.NoError(t, CanDelete(req, req.RecipientID))
	assert.Equal(t, KindForbidden, KindOf(CanDelete(req, "stranger")))
}

func TestCanDeleteApprovedConflict(t *testing.T) {
	req := approvedRequest()
	assert.Equal(t, KindConflict, KindOf(CanDelete(req, req.RecipientID)))
}

func TestCanDeleteCompletedConflict(t *testing.T) {
	req := completedRequest()
	assert.Equal(t, KindConflict, KindOf(CanDelete(req, req.RecipientID)))
}

func TestCanDeleteExpiredStillAllowed(t *testing.T) {
	req := openRequest()
	req.Window.EndDate = testNow.Add(-time.Minute)
	assert.NoError(t, CanDelete(req, req.RecipientID))
}

func TestCanAddNote(t *testing.T) {
	req := approvedRequest()
	assert.NoError(t, CanAddNote(req, req.RecipientID))
	assert.NoError(t, CanAddNote(req, *req.DonorID))
	assert.Equal(t, KindForbidden, KindOf(CanAddNote(req, "stranger")))
	assert.Equal(t, KindForbidden, KindOf(CanAddNote(req, "")))
}

func TestCanAddNoteAnyStatus(t *testing.T) {
	req := completedRequest()
	assert.NoError(t, CanAddNote(req, req.RecipientID))
}

func TestCanMarkInterest(t *testing.T) {
	req := openRequest()
	assert.NoError(t, CanMarkInterest(req, "donor-1", testNow))
	assert.Equal(t, KindForbidden, KindOf(CanMarkInterest(req, req.RecipientID, testNow)))
}

func TestCanMarkInterestClosedConflict(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(CanMarkInterest(approvedRequest(), "donor-2", testNow)))

	expired := openRequest()
	expired.Window.EndDate = testNow.Add(-time.Minute)
	assert.Equal(t, KindConflict, KindOf(CanMarkInterest(expired, "donor-1", testNow)))
}

func TestCanRate(t *testing.T) {
	req := completedRequest()
	assert.NoError(t, CanRate(req, req.RecipientID))
	assert.NoError(t, CanRate(req, *req.DonorID))
	assert.Equal(t, KindForbidden, KindOf(CanRate(req, "stranger")))
}

func TestCanRateNonCompletedConflict(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(CanRate(openRequest(), "recipient-1")))
	req := approvedRequest()
	assert.Equal(t, KindConflict, KindOf(CanRate(req, *req.DonorID)))
}

func TestCanFlag(t *testing.T) {
	assert.NoError(t, CanFlag("user-1", "spam"))
	assert.Equal(t, KindForbidden, KindOf(CanFlag("", "spam")))
	assert.Equal(t, KindValidation, KindOf(CanFlag("user-1", "")))
}

func TestExpiredIsDerivedAtReadTime(t *testing.T) {
	req := openRequest()
	assert.False(t, req.Expired(testNow))
	assert.True(t, req.Expired(req.Window.EndDate))
	assert.True(t, req.Expired(testNow.Add(72*time.Hour)))
	// stored status is untouched by expiry
	assert.Equal(t, StatusOpen, req.Status)
}
