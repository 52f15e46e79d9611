package service

import (
	"context"
	"time"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

// SubmitInput is the raw contact form as sent by the client.
type SubmitInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ClientMeta is best-effort information about the submitter taken from the
// transport layer. Empty values are stored as model.UnknownClient.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// SubmitResult is returned for every accepted submission. Stored is false when
// the message could not be persisted; ID is then empty.
type SubmitResult struct {
	ID        string
	Timestamp time.Time
	Stored    bool
}

// ListQuery carries the admin listing parameters before normalization.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
	// Sort is a field name with an optional "-" prefix for descending order.
	Sort string
}

// ListResult is one page of contact messages.
type ListResult struct {
	Messages   []*model.ContactMessage
	Pagination model.Pagination
}

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates and stores a new contact message and dispatches a
	// notification. Storage outages do not fail the submission.
	Submit(ctx context.Context, in SubmitInput, meta ClientMeta) (*SubmitResult, error)

	// List returns a page of contact messages according to q.
	List(ctx context.Context, q ListQuery) (*ListResult, error)

	Get(ctx context.Context, id string) (*model.ContactMessage, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.ContactStats, error)
}
