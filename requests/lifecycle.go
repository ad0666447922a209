package requests

import "time"

// Lifecycle guards. Every transition re-derives expiry from the availability
// window at call time, so an expired-but-still-open request behaves as closed
// for approve/edit/markInterested without its stored status changing.

// CanApprove checks the open → approved transition for actorID.
// The owner check comes first: self-approval is Forbidden regardless of state.
func CanApprove(req *HelpRequest, actorID string, now time.Time) error {
	if req.IsOwner(actorID) {
		return Forbidden("recipients cannot approve their own request")
	}
	if req.Status != StatusOpen {
		return Conflict("request is no longer open")
	}
	if req.Expired(now) {
		return Conflict("request availability window has ended")
	}
	return nil
}

// CanComplete checks the approved → completed transition. The state check
// comes first: completing a never-approved request is InvalidState even for
// a stranger.
func CanComplete(req *HelpRequest, actorID string) error {
	if req.Status != StatusApproved {
		return InvalidState("only an approved request can be completed")
	}
	if !req.IsParty(actorID) {
		return Forbidden("only the recipient or the donor can complete the request")
	}
	return nil
}

func CanEdit(req *HelpRequest, actorID string, now time.Time) error {
	if !req.IsOwner(actorID) {
		return Forbidden("only the recipient can edit the request")
	}
	if !req.OpenAndUnexpired(now) {
		return Conflict("only an open request can be edited")
	}
	return nil
}

// CanDelete allows the owner to remove an open request. Expiry does not block
// deletion; the other states each refuse for their own reason.
func CanDelete(req *HelpRequest, actorID string) error {
	if !req.IsOwner(actorID) {
		return Forbidden("only the recipient can delete the request")
	}
	switch req.Status {
	case StatusOpen:
		return nil
	case StatusApproved:
		return Conflict("an approved request models a commitment and cannot be deleted")
	case StatusCompleted:
		return Conflict("a completed request is kept for history")
	}
	return Conflict("request cannot be deleted in its current state")
}

func CanAddNote(req *HelpRequest, actorID string) error {
	if !req.IsParty(actorID) {
		return Forbidden("only the recipient or the donor can add notes")
	}
	return nil
}

func CanMarkInterest(req *HelpRequest, actorID string, now time.Time) error {
	if req.IsOwner(actorID) {
		return Forbidden("recipients cannot mark interest in their own request")
	}
	if !req.OpenAndUnexpired(now) {
		return Conflict("request is no longer open")
	}
	return nil
}

func CanRate(req *HelpRequest, actorID string) error {
	if req.Status != StatusCompleted {
		return Conflict("only a completed request can be rated")
	}
	if !req.IsParty(actorID) {
		return Forbidden("only the recipient or the donor can rate the request")
	}
	return nil
}

func CanFlag(actorID, reason string) error {
	if actorID == "" {
		return Forbidden("flagging requires an authenticated actor")
	}
	if reason == "" {
		return Validation("flag reason is required")
	}
	return nil
}
