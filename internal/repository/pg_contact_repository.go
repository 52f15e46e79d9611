package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

// ContactRepository defines the persistence interface for contact messages.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	// Save validates msg, inserts it and populates msg.ID and timestamps.
	// A structurally invalid record yields an error wrapping ErrValidation.
	Save(ctx context.Context, msg *model.ContactMessage) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	// Count returns the number of messages matching the status filter
	// ("" or "all" counts every message).
	Count(ctx context.Context, status string) (int, error)
	GetByID(ctx context.Context, id string) (*model.ContactMessage, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*model.ContactStats, error)
}

// ContactSortFields maps accepted sort keys to their column names.
var ContactSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"email":      "email",
	"subject":    "subject",
	"status":     "status",
}

const contactColumns = `id, name, email, subject, message, status, ip_address, user_agent, created_at, updated_at`

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Save inserts a new contact_messages row. The ID is generated here; the
// timestamps come from the database RETURNING clause.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	if err := validateRecord(msg); err != nil {
		return err
	}
	id := uuid.New().String()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, status, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		id, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Status, msg.IPAddress, msg.UserAgent,
	).Scan(&msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	msg.ID = id
	return nil
}

// List returns contact messages filtered by status, sorted and paginated by
// limit/offset. Status "" or "all" returns all messages.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	where, args := statusFilter(opts.Status)

	column, ok := ContactSortFields[opts.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM contact_messages %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		contactColumns, where, column, direction, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Count returns the number of messages matching the status filter.
func (r *PgContactRepository) Count(ctx context.Context, status string) (int, error) {
	where, args := statusFilter(status)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}

// GetByID returns a single message. Unknown or malformed IDs yield ErrNotFound.
func (r *PgContactRepository) GetByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id)
	m, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// UpdateStatus sets the status and bumps updated_at, returning the updated row.
func (r *PgContactRepository) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	if !model.IsValidContactStatus(status) {
		return nil, fmt.Errorf("%w: status must be one of [%s]", ErrValidation, strings.Join(model.ContactStatuses, " "))
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE contact_messages SET status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+contactColumns,
		id, status,
	)
	m, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// Delete removes a message permanently.
func (r *PgContactRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates totals per status plus counts for the current UTC day and
// the trailing seven days relative to now.
func (r *PgContactRepository) Stats(ctx context.Context, now time.Time) (*model.ContactStats, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := now.Add(-7 * 24 * time.Hour)

	stats := &model.ContactStats{ByStatus: make(map[string]int, len(model.ContactStatuses))}
	var byNew, byRead, byReplied, byArchived int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'new'),
		        COUNT(*) FILTER (WHERE status = 'read'),
		        COUNT(*) FILTER (WHERE status = 'replied'),
		        COUNT(*) FILTER (WHERE status = 'archived'),
		        COUNT(*) FILTER (WHERE created_at >= $1),
		        COUNT(*) FILTER (WHERE created_at >= $2)
		 FROM contact_messages`,
		dayStart, weekStart,
	).Scan(&stats.Total, &byNew, &byRead, &byReplied, &byArchived, &stats.Today, &stats.ThisWeek)
	if err != nil {
		return nil, fmt.Errorf("contact stats: %w", err)
	}
	stats.ByStatus[model.StatusNew] = byNew
	stats.ByStatus[model.StatusRead] = byRead
	stats.ByStatus[model.StatusReplied] = byReplied
	stats.ByStatus[model.StatusArchived] = byArchived
	return stats, nil
}

func statusFilter(status string) (string, []any) {
	status = strings.TrimSpace(status)
	if status == "" || status == "all" {
		return "", nil
	}
	return "WHERE status = $1", []any{status}
}

func scanContact(row pgx.Row) (*model.ContactMessage, error) {
	var m model.ContactMessage
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status,
		&m.IPAddress, &m.UserAgent, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
