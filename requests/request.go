package requests

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/yardimagi/backend-api-go/geo"

	jsoniter "github.com/json-iterator/go"
)

// Status is the lifecycle state of a help request.
// open → approved → completed; completed is terminal.
type Status string

const (
	StatusOpen      Status = "open"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities for the no-origin listing sort. Higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Category is the derived classification of a request, taken from the
// dominant catalog category of its items.
type Category string

type Item struct {
	ItemID      string  `json:"item_id"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
	Urgency     Urgency `json:"urgency"`
}

type ItemList []Item

func (l ItemList) Value() (driver.Value, error) {
	return jsoniter.Marshal(l)
}

func (l *ItemList) Scan(value interface{}) error {
	return scanJSON(value, l, "ItemList")
}

type TimeSlots []string

func (t TimeSlots) Value() (driver.Value, error) {
	if t == nil {
		return jsoniter.Marshal(TimeSlots{})
	}
	return jsoniter.Marshal(t)
}

func (t *TimeSlots) Scan(value interface{}) error {
	return scanJSON(value, t, "TimeSlots")
}

type Note struct {
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type NoteList []Note

func (l NoteList) Value() (driver.Value, error) {
	if l == nil {
		return jsoniter.Marshal(NoteList{})
	}
	return jsoniter.Marshal(l)
}

func (l *NoteList) Scan(value interface{}) error {
	return scanJSON(value, l, "NoteList")
}

type Interest struct {
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

type InterestList []Interest

func (l InterestList) Value() (driver.Value, error) {
	if l == nil {
		return jsoniter.Marshal(InterestList{})
	}
	return jsoniter.Marshal(l)
}

func (l *InterestList) Scan(value interface{}) error {
	return scanJSON(value, l, "InterestList")
}

func (l InterestList) Has(userID string) bool {
	for _, entry := range l {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}

type FlagInfo struct {
	Reason    string    `json:"reason"`
	FlaggedBy string    `json:"flagged_by"`
	FlaggedAt time.Time `json:"flagged_at"`
}

type RatingEntry struct {
	Stars   int       `json:"stars"`
	Comment string    `json:"comment,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// Rating holds both parties' reviews. The recipient writes DonorRating and
// the donor writes RecipientRating: each slot rates the other party.
type Rating struct {
	RecipientRating *RatingEntry `json:"recipient_rating,omitempty"`
	DonorRating     *RatingEntry `json:"donor_rating,omitempty"`
}

// Rating slot keys, matching the Rating struct's JSON field names so stores
// can address a single slot in place.
const (
	RatingSlotRecipient = "recipient_rating"
	RatingSlotDonor     = "donor_rating"
)

type PickupLocation struct {
	Address     string    `json:"address"`
	Coordinates geo.Point `json:"coordinates"`
	ZipCode     string    `json:"zip_code,omitempty"`
}

type AvailabilityWindow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TimeSlots TimeSlots `json:"time_slots,omitempty"`
}

type HelpRequest struct {
	ID          string             `json:"id"`
	RecipientID string             `json:"recipient_id"`
	DonorID     *string            `json:"donor_id,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Items       ItemList           `json:"items"`
	Category    Category           `json:"category"`
	Priority    Priority           `json:"priority"`
	Status      Status             `json:"status"`
	Pickup      PickupLocation     `json:"pickup_location"`
	Window      AvailabilityWindow `json:"availability_window"`
	Notes       NoteList           `json:"notes,omitempty"`
	Rating      *Rating            `json:"rating,omitempty"`
	Views       int64              `json:"views"`
	Interested  InterestList       `json:"interested,omitempty"`
	Flag        *FlagInfo          `json:"flag,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	ApprovedAt  *time.Time         `json:"approved_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

func (r *HelpRequest) IsOwner(userID string) bool {
	return userID != "" && r.RecipientID == userID
}

func (r *HelpRequest) IsDonor(userID string) bool {
	return userID != "" && r.DonorID != nil && *r.DonorID == userID
}

// IsParty reports whether the user is the recipient or the committed donor.
func (r *HelpRequest) IsParty(userID string) bool {
	return r.IsOwner(userID) || r.IsDonor(userID)
}

// Expired is derived at read time from the availability window; the stored
// status never auto-transitions on expiry.
func (r *HelpRequest) Expired(now time.Time) bool {
	return !r.Window.EndDate.After(now)
}

func (r *HelpRequest) OpenAndUnexpired(now time.Time) bool {
	return r.Status == StatusOpen && !r.Expired(now)
}

func scanJSON(value interface{}, dest interface{}, typeName string) error {
	if value == nil {
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New(typeName + "::Scan type assertion failed")
	}
	if len(b) == 0 {
		return nil
	}
	return jsoniter.Unmarshal(b, dest)
}
