package requests

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yardimagi/backend-api-go/geo"
	"github.com/yardimagi/backend-api-go/notifier"
)

// Store is the persistence contract for help requests. The transition
// methods returning a bool are conditionally atomic: false means the row no
// longer satisfied the transition guard when the update ran, so racing
// callers observe a clean conflict instead of a half-applied state.
type Store interface {
	Insert(ctx context.Context, req *HelpRequest) error
	GetByID(ctx context.Context, id string) (*HelpRequest, error)
	Update(ctx context.Context, req *HelpRequest) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Approve(ctx context.Context, id, donorID string, now time.Time) (bool, error)
	Complete(ctx context.Context, id string, now time.Time) (bool, error)
	AppendNote(ctx context.Context, id string, note Note) error
	AddInterest(ctx context.Context, id string, entry Interest) (bool, error)
	SetRating(ctx context.Context, id, slot string, entry RatingEntry) error
	SetFlag(ctx context.Context, id string, flag FlagInfo) error
	IncrementViews(ctx context.Context, id string) error
	Candidates(ctx context.Context, filter CandidateFilter) ([]HelpRequest, error)
}

// CandidateFilter narrows the stored open-request set before any exact
// distance work happens. Box is an optional bounding-box pre-filter; callers
// doing proximity work re-check exact distances on what comes back.
type CandidateFilter struct {
	ExcludeRecipient string
	Category         Category
	Priority         Priority
	Search           string
	Box              *geo.Box
	Now              time.Time
	Limit            int
}

// Catalog validates item references and reports each known item's category.
// Unknown or inactive ids come back in the second return value.
type Catalog interface {
	Validate(ctx context.Context, ids []string) (map[string]Category, []string, error)
}

type Profile struct {
	UserID      string
	Address     string
	ZipCode     string
	Coordinates *geo.Point
}

// ProfileDirectory resolves user pickup locations. Get returns (nil, nil)
// when the user has no stored profile; absence is a result, not an error.
type ProfileDirectory interface {
	Get(ctx context.Context, userID string) (*Profile, error)
}

type CreateRequestInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Items       ItemList           `json:"items"`
	Priority    Priority           `json:"priority"`
	Window      AvailabilityWindow `json:"availability_window"`
}

// UpdateRequestInput is a partial patch: nil fields are left untouched.
type UpdateRequestInput struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Items       ItemList            `json:"items"`
	Priority    *Priority           `json:"priority"`
	Window      *AvailabilityWindow `json:"availability_window"`
}

// RequestView is a viewer-scoped read model: the request after redaction plus
// the capability flags clients render action buttons from.
type RequestView struct {
	HelpRequest
	CanApprove bool `json:"can_approve"`
	CanEdit    bool `json:"can_edit"`
}

type Service struct {
	store    Store
	catalog  Catalog
	profiles ProfileDirectory
	notify   notifier.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, catalog Catalog, profiles ProfileDirectory, notify notifier.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		profiles: profiles,
		notify:   notify,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates the payload, copies the recipient's stored pickup location
// onto the request and derives its category from the item mix.
func (s *Service) Create(ctx context.Context, recipientID string, input CreateRequestInput) (*HelpRequest, error) {
	if recipientID == "" {
		return nil, Forbidden("authentication required")
	}
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Coordinates == nil || !profile.Coordinates.Valid() {
		return nil, NotFound("no pickup location on file for this account")
	}

	categories, invalid, err := s.catalog.Validate(ctx, itemIDs(input.Items))
	if err != nil {
		return nil, err
	}
	if len(invalid) > 0 {
		return nil, ValidationFields("some items are unknown or inactive", map[string]string{
			"items": strings.Join(invalid, ", "),
		})
	}

	now := s.now().UTC()
	req := &HelpRequest{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Items:       input.Items,
		Category:    InferCategory(input.Items, categories),
		Priority:    input.Priority,
		Status:      StatusOpen,
		Pickup: PickupLocation{
			Address:     profile.Address,
			Coordinates: *profile.Coordinates,
			ZipCode:     profile.ZipCode,
		},
		Window:     input.Window,
		Notes:      NoteList{},
		Interested: InterestList{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Insert(ctx, req); err != nil {
		return nil, err
	}

	s.emit("request.created", req.ID, s.notify.RequestCreated(ctx, notifier.RequestCreatedEvent{
		RequestID:   req.ID,
		RecipientID: req.RecipientID,
		Title:       req.Title,
		Category:    string(req.Category),
		Priority:    string(req.Priority),
	}))
	return req, nil
}

// Get returns the viewer-scoped read model. Non-owner reads bump the view
// counter; the counter is best effort and a failed bump never fails the read.
func (s *Service) Get(ctx context.Context, id, viewerID string) (*RequestView, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.IsOwner(viewerID) {
		if err := s.store.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("view counter increment failed",
				zap.String("request_id", id), zap.Error(err))
		} else {
			req.Views++
		}
	}

	now := s.now()
	return &RequestView{
		HelpRequest: RedactForViewer(*req, viewerID),
		CanApprove:  viewerID != "" && CanApprove(req, viewerID, now) == nil,
		CanEdit:     CanEdit(req, viewerID, now) == nil,
	}, nil
}

// Update applies a partial patch to an open request. A patched item set is
// re-validated against the catalog and the category recomputed from it.
func (s *Service) Update(ctx context.Context, id, actorID string, input UpdateRequestInput) (*HelpRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := CanEdit(req, actorID, now); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, Validation("title cannot be empty")
		}
		req.Title = title
	}
	if input.Description != nil {
		req.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, Validation("priority must be one of low, medium, high, critical")
		}
		req.Priority = *input.Priority
	}
	if input.Window != nil {
		if err := validateWindow(input.Window); err != nil {
			return nil, err
		}
		req.Window = *input.Window
	}
	if input.Items != nil {
		if len(input.Items) == 0 {
			return nil, Validation("at least one item is required")
		}
		if err := normalizeItems(input.Items); err != nil {
			return nil, err
		}
		categories, invalid, err := s.catalog.Validate(ctx, itemIDs(input.Items))
		if err != nil {
			return nil, err
		}
		if len(invalid) > 0 {
			return nil, ValidationFields("some items are unknown or inactive", map[string]string{
				"items": strings.Join(invalid, ", "),
			})
		}
		req.Items = input.Items
		req.Category = InferCategory(input.Items, categories)
	}

	req.UpdatedAt = now.UTC()
	updated, err := s.store.Update(ctx, req)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, Conflict("request is no longer open")
	}
	return req, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CanDelete(req, actorID); err != nil {
		return err
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return Conflict("request is no longer open")
	}
	return nil
}

// Approve assigns the acting donor to an open request. The store update is
// conditional on the request still being open and unexpired, so of two
// racing donors exactly one wins and the other gets a conflict.
func (s *Service) Approve(ctx context.Context, id, actorID string) (*HelpRequest, error) {
	if actorID == "" {
		return nil, Forbidden("authentication required")
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := CanApprove(req, actorID, now); err != nil {
		return nil, err
	}

	at := now.UTC()
	approved, err := s.store.Approve(ctx, id, actorID, at)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, Conflict("request was approved by another donor")
	}

	req.Status = StatusApproved
	req.DonorID = &actorID
	req.ApprovedAt = &at
	req.UpdatedAt = at

	s.emit("request.approved", req.ID, s.notify.RequestApproved(ctx, notifier.RequestApprovedEvent{
		RequestID:   req.ID,
		RecipientID: req.RecipientID,
		DonorID:     actorID,
		Title:       req.Title,
	}))
	return req, nil
}

func (s *Service) Complete(ctx context.Context, id, actorID string) (*HelpRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanComplete(req, actorID); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	completed, err := s.store.Complete(ctx, id, at)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, InvalidState("only an approved request can be completed")
	}

	req.Status = StatusCompleted
	req.CompletedAt = &at
	req.UpdatedAt = at

	var donorID string
	if req.DonorID != nil {
		donorID = *req.DonorID
	}
	s.emit("request.completed", req.ID, s.notify.RequestCompleted(ctx, notifier.RequestCompletedEvent{
		RequestID:   req.ID,
		RecipientID: req.RecipientID,
		DonorID:     donorID,
		Title:       req.Title,
	}))
	return req, nil
}

func (s *Service) AddNote(ctx context.Context, id, actorID, text string) (*HelpRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("note text is required")
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanAddNote(req, actorID); err != nil {
		return nil, err
	}

	note := Note{AuthorID: actorID, Text: text, CreatedAt: s.now().UTC()}
	if err := s.store.AppendNote(ctx, id, note); err != nil {
		return nil, err
	}
	req.Notes = append(req.Notes, note)
	req.UpdatedAt = note.CreatedAt

	var donorID string
	if req.DonorID != nil {
		donorID = *req.DonorID
	}
	s.emit("request.note_added", req.ID, s.notify.NoteAdded(ctx, notifier.NoteAddedEvent{
		RequestID:   req.ID,
		AuthorID:    actorID,
		RecipientID: req.RecipientID,
		DonorID:     donorID,
		Preview:     notePreview(text),
	}))
	return req, nil
}

// MarkInterested records the actor on the interested list. The list has set
// semantics: repeat calls, including concurrent duplicates, leave a single
// entry and succeed quietly.
func (s *Service) MarkInterested(ctx context.Context, id, actorID string) (*HelpRequest, error) {
	if actorID == "" {
		return nil, Forbidden("authentication required")
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanMarkInterest(req, actorID, s.now()); err != nil {
		return nil, err
	}

	if req.Interested.Has(actorID) {
		return req, nil
	}

	entry := Interest{UserID: actorID, At: s.now().UTC()}
	added, err := s.store.AddInterest(ctx, id, entry)
	if err != nil {
		return nil, err
	}
	if added {
		req.Interested = append(req.Interested, entry)
		req.UpdatedAt = entry.At
		s.emit("request.interest_marked", req.ID, s.notify.InterestMarked(ctx, notifier.InterestMarkedEvent{
			RequestID:   req.ID,
			RecipientID: req.RecipientID,
			UserID:      actorID,
			Title:       req.Title,
		}))
	}
	return req, nil
}

// Rate stores the actor's review of the other party. The recipient fills the
// donor slot and the donor fills the recipient slot; repeat calls overwrite.
func (s *Service) Rate(ctx context.Context, id, actorID string, stars int, comment string) (*HelpRequest, error) {
	if stars < 1 || stars > 5 {
		return nil, Validation("stars must be between 1 and 5")
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanRate(req, actorID); err != nil {
		return nil, err
	}

	entry := RatingEntry{Stars: stars, Comment: strings.TrimSpace(comment), RatedAt: s.now().UTC()}
	slot := RatingSlotDonor
	if req.IsDonor(actorID) {
		slot = RatingSlotRecipient
	}
	if err := s.store.SetRating(ctx, id, slot, entry); err != nil {
		return nil, err
	}

	if req.Rating == nil {
		req.Rating = &Rating{}
	}
	if slot == RatingSlotDonor {
		req.Rating.DonorRating = &entry
	} else {
		req.Rating.RecipientRating = &entry
	}
	req.UpdatedAt = entry.RatedAt
	return req, nil
}

// Flag marks the request for moderator review. A newer flag overwrites any
// earlier one; flagging never touches the lifecycle status.
func (s *Service) Flag(ctx context.Context, id, actorID, reason string) (*HelpRequest, error) {
	reason = strings.TrimSpace(reason)
	if err := CanFlag(actorID, reason); err != nil {
		return nil, err
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flag := FlagInfo{Reason: reason, FlaggedBy: actorID, FlaggedAt: s.now().UTC()}
	if err := s.store.SetFlag(ctx, id, flag); err != nil {
		return nil, err
	}
	req.Flag = &flag
	req.UpdatedAt = flag.FlaggedAt
	return req, nil
}

// emit logs and drops notification failures: delivery problems must never
// fail or roll back the transition that triggered them.
func (s *Service) emit(event, requestID string, err error) {
	if err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("event", event),
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

func validateCreate(input *CreateRequestInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Validation("title is required")
	}
	if len(input.Items) == 0 {
		return Validation("at least one item is required")
	}
	if err := normalizeItems(input.Items); err != nil {
		return err
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	if !input.Priority.Valid() {
		return Validation("priority must be one of low, medium, high, critical")
	}
	return validateWindow(&input.Window)
}

func normalizeItems(items ItemList) error {
	for i := range items {
		items[i].ItemID = strings.TrimSpace(items[i].ItemID)
		if items[i].ItemID == "" {
			return Validation("every item needs an item_id")
		}
		if items[i].Quantity < 1 {
			return Validation("item quantity must be at least 1")
		}
		if items[i].Urgency == "" {
			items[i].Urgency = UrgencyMedium
		}
		if !items[i].Urgency.Valid() {
			return Validation("item urgency must be one of low, medium, high, critical")
		}
	}
	return nil
}

func validateWindow(w *AvailabilityWindow) error {
	if w.StartDate.IsZero() || w.EndDate.IsZero() {
		return Validation("availability window start and end dates are required")
	}
	if !w.EndDate.After(w.StartDate) {
		return Validation("availability window must end after it starts")
	}
	return nil
}

func itemIDs(items ItemList) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ItemID]; ok {
			continue
		}
		seen[item.ItemID] = struct{}{}
		ids = append(ids, item.ItemID)
	}
	return ids
}

func notePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= 80 {
		return text
	}
	return string(runes[:80])
}
