package model

import (
	"regexp"
	"time"
)

// Contact message statuses.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusReplied  = "replied"
	StatusArchived = "archived"
)

// ContactStatuses lists every valid status in display order.
var ContactStatuses = []string{StatusNew, StatusRead, StatusReplied, StatusArchived}

// IsValidContactStatus reports whether s is one of ContactStatuses.
func IsValidContactStatus(s string) bool {
	for _, st := range ContactStatuses {
		if s == st {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// IsValidEmail reports whether s is an address the contact form accepts.
// The store uses the same check through the contact_email validate tag.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// UnknownClient is stored when the origin IP or user agent cannot be determined.
const UnknownClient = "Unknown"

// ContactMessage represents a message submitted via the contact form.
// The validate tags are enforced by the store before insert.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,contact_email,max=254"`
	Subject   string    `json:"subject" validate:"required,max=200"`
	Message   string    `json:"message" validate:"required,max=2000"`
	Status    string    `json:"status" validate:"required,oneof=new read replied archived"`
	IPAddress string    `json:"ip_address" validate:"required"`
	UserAgent string    `json:"user_agent" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactListOptions carries filter, sort and pagination parameters for listing
// contact messages.
type ContactListOptions struct {
	// Status filters by message status. Empty string and "all" return all messages.
	Status string
	// SortField is a column name; SortDesc reverses the order.
	SortField string
	SortDesc  bool
	Limit     int
	Offset    int
}

// ContactStats aggregates contact messages for the admin dashboard.
type ContactStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Today    int            `json:"today"`
	ThisWeek int            `json:"this_week"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewPagination computes page metadata for a 1-based page of size limit.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	}
}
