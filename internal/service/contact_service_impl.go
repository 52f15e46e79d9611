package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/metrics"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/repository"
	"github.com/usmansyedcoder/Portfolio-Backend/pkg/mailer"
)

const (
	maxNameLength    = 100
	maxSubjectLength = 200
	maxMessageLength = 2000

	defaultPageSize = 10
	maxPageSize     = 100
	maxPage         = 1_000_000
	defaultSort     = "-created_at"
)

// sortAliases accepts the camelCase keys used by the frontend.
var sortAliases = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Notifier schedules a notification without waiting for delivery.
type Notifier interface {
	Dispatch(ctx context.Context, msg mailer.Message)
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo     repository.ContactRepository
	notifier Notifier
	now      func() time.Time
}

// NewContactService creates a ContactService backed by the given repository.
// notifier receives one notification per accepted submission.
func NewContactService(repo repository.ContactRepository, notifier Notifier) ContactService {
	return &contactServiceImpl{repo: repo, notifier: notifier, now: time.Now}
}

// Submit validates the input in order (required fields, email syntax, field
// lengths), stores the normalized message with status "new" and dispatches a
// notification. A store outage is logged and the submission still succeeds.
func (s *contactServiceImpl) Submit(ctx context.Context, in SubmitInput, meta ClientMeta) (*SubmitResult, error) {
	msg, err := normalizeSubmission(in, meta)
	if err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	now := s.now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	result := &SubmitResult{Timestamp: now}
	if err := s.repo.Save(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrValidation) {
			metrics.ContactSubmissionsTotal.WithLabelValues("rejected").Inc()
			detail := strings.TrimPrefix(err.Error(), repository.ErrValidation.Error()+": ")
			return nil, newValidationError(KindInvalid, "", detail)
		}
		metrics.ContactSubmissionsTotal.WithLabelValues("degraded").Inc()
		slog.Warn("contact message not persisted; logging submission as fallback record",
			"error", err,
			"name", msg.Name,
			"email", msg.Email,
			"subject", msg.Subject,
			"message", msg.Message,
			"ip", msg.IPAddress,
		)
	} else {
		metrics.ContactSubmissionsTotal.WithLabelValues("stored").Inc()
		result.ID = msg.ID
		result.Timestamp = msg.CreatedAt
		result.Stored = true
		slog.Info("contact message received",
			"id", msg.ID,
			"name", msg.Name,
			"email", msg.Email,
			"subject", msg.Subject,
			"preview", preview(msg.Message, 100),
			"ip", msg.IPAddress,
		)
	}

	s.notify(ctx, msg)
	return result, nil
}

func (s *contactServiceImpl) notify(ctx context.Context, msg *model.ContactMessage) {
	if s.notifier == nil {
		return
	}
	n, err := buildNotification(msg)
	if err != nil {
		slog.Error("build contact notification", "error", err)
		return
	}
	s.notifier.Dispatch(ctx, n)
}

// normalizeSubmission validates in and returns the trimmed message.
func normalizeSubmission(in SubmitInput, meta ClientMeta) (*model.ContactMessage, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)

	if name == "" || email == "" || subject == "" || message == "" {
		return nil, newValidationError(KindMissingField, "", "All fields are required")
	}
	if !model.IsValidEmail(email) {
		return nil, newValidationError(KindInvalidEmail, "email", "Please enter a valid email address")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, newValidationError(KindFieldTooLong, "name", fmt.Sprintf("Name cannot exceed %d characters", maxNameLength))
	}
	if utf8.RuneCountInString(subject) > maxSubjectLength {
		return nil, newValidationError(KindFieldTooLong, "subject", fmt.Sprintf("Subject cannot exceed %d characters", maxSubjectLength))
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, newValidationError(KindFieldTooLong, "message", fmt.Sprintf("Message cannot exceed %d characters", maxMessageLength))
	}

	return &model.ContactMessage{
		Name:      name,
		Email:     strings.ToLower(email),
		Subject:   subject,
		Message:   message,
		Status:    model.StatusNew,
		IPAddress: orUnknown(meta.IP),
		UserAgent: orUnknown(meta.UserAgent),
	}, nil
}

// List returns one page of messages plus pagination metadata.
func (s *contactServiceImpl) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	opts, page, err := listOptions(q)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	total, err := s.repo.Count(ctx, opts.Status)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	return &ListResult{
		Messages:   messages,
		Pagination: model.NewPagination(page, opts.Limit, total),
	}, nil
}

func listOptions(q ListQuery) (model.ContactListOptions, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	status := strings.TrimSpace(q.Status)
	if status == "all" {
		status = ""
	}
	if status != "" && !model.IsValidContactStatus(status) {
		return model.ContactListOptions{}, 0, newValidationError(KindInvalidStatus, "status", "Invalid status")
	}

	sort := strings.TrimSpace(q.Sort)
	if sort == "" {
		sort = defaultSort
	}
	desc := strings.HasPrefix(sort, "-")
	field := strings.TrimPrefix(sort, "-")
	if alias, ok := sortAliases[field]; ok {
		field = alias
	}
	if _, ok := repository.ContactSortFields[field]; !ok {
		return model.ContactListOptions{}, 0, newValidationError(KindInvalidSort, "sort", "Invalid sort field")
	}

	return model.ContactListOptions{
		Status:    status,
		SortField: field,
		SortDesc:  desc,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}, page, nil
}

// Get returns a single message.
func (s *contactServiceImpl) Get(ctx context.Context, id string) (*model.ContactMessage, error) {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError("get message", err)
	}
	return msg, nil
}

// UpdateStatus changes the status of a contact message. Unknown statuses are
// rejected before the store is touched.
func (s *contactServiceImpl) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if !model.IsValidContactStatus(status) {
		return nil, newValidationError(KindInvalidStatus, "status", "Invalid status")
	}
	msg, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, wrapStoreError("update message status", err)
	}
	return msg, nil
}

// Delete removes a message.
func (s *contactServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapStoreError("delete message", err)
	}
	return nil
}

// Stats returns aggregate counts; every status is present even when zero.
func (s *contactServiceImpl) Stats(ctx context.Context) (*model.ContactStats, error) {
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("contact stats: %w", err)
	}
	if stats.ByStatus == nil {
		stats.ByStatus = make(map[string]int, len(model.ContactStatuses))
	}
	for _, st := range model.ContactStatuses {
		if _, ok := stats.ByStatus[st]; !ok {
			stats.ByStatus[st] = 0
		}
	}
	return stats, nil
}

func wrapStoreError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return model.UnknownClient
	}
	return s
}

// preview shortens s to n runes for log output.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
