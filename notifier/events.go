package notifier

// Event payloads published on lifecycle transitions. Delivery (push, SMS,
// e-mail fan-out) happens downstream of the topic and is not this service's
// concern.

type RequestCreatedEvent struct {
	RequestID   string `json:"request_id"`
	RecipientID string `json:"recipient_id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type RequestApprovedEvent struct {
	RequestID   string `json:"request_id"`
	RecipientID string `json:"recipient_id"`
	DonorID     string `json:"donor_id"`
	Title       string `json:"title"`
}

type RequestCompletedEvent struct {
	RequestID   string `json:"request_id"`
	RecipientID string `json:"recipient_id"`
	DonorID     string `json:"donor_id"`
	Title       string `json:"title"`
}

type NoteAddedEvent struct {
	RequestID   string `json:"request_id"`
	AuthorID    string `json:"author_id"`
	RecipientID string `json:"recipient_id"`
	DonorID     string `json:"donor_id,omitempty"`
	Preview     string `json:"preview"`
}

type InterestMarkedEvent struct {
	RequestID   string `json:"request_id"`
	RecipientID string `json:"recipient_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
}
