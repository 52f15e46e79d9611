package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/service"
)

// maxSubmitBodyBytes caps the request body of the contact endpoints.
const maxSubmitBodyBytes = 1 << 20

const (
	msgSubmitted = "Thank you! Your message has been sent successfully. I'll get back to you soon."
	msgDegraded  = "Thank you! Your message has been received (database temporarily unavailable)."
	msgNotFound  = "Message not found"
)

// ContactHandler handles contact form submission and message administration.
type ContactHandler struct {
	contactService service.ContactService
	contactEmail   string
}

// NewContactHandler creates a ContactHandler with the given service.
// contactEmail is offered to the user as an alternative when submission fails.
func NewContactHandler(contactService service.ContactService, contactEmail string) *ContactHandler {
	return &ContactHandler{contactService: contactService, contactEmail: contactEmail}
}

// submitRequest is the expected JSON body for POST /api/contact.
type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type submitResponseData struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBodyBytes)).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.contactService.Submit(r.Context(), service.SubmitInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}, service.ClientMeta{IP: clientIP(r), UserAgent: userAgent(r)})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeFailure(w, http.StatusBadRequest, verr.Message)
			return
		}
		slog.Error("contact submit failed", "error", err)
		writeFailure(w, http.StatusInternalServerError,
			"Failed to send message. Please try again later or contact me directly at "+h.contactEmail)
		return
	}

	if !res.Stored {
		writeSuccess(w, http.StatusCreated, msgDegraded, submitResponseData{Timestamp: res.Timestamp})
		return
	}
	writeSuccess(w, http.StatusCreated, msgSubmitted, submitResponseData{ID: res.ID, Timestamp: res.Timestamp})
}

// List handles GET /api/contact.
// Query params: page, limit, status (or "all"), sort (field, "-" prefix for descending).
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.ListQuery{
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
	}
	if p := q.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			query.Page = n
		}
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			query.Limit = n
		}
	}

	res, err := h.contactService.List(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch messages")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       res.Messages,
		Pagination: res.Pagination,
	})
}

// Stats handles GET /api/contact/stats.
func (h *ContactHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contactService.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch statistics")
		return
	}
	writeSuccess(w, http.StatusOK, "", stats)
}

// Get handles GET /api/contact/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contactService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch message")
		return
	}
	writeSuccess(w, http.StatusOK, "", msg)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/contact/{id}/status.
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBodyBytes)).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.contactService.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update message status")
		return
	}
	writeSuccess(w, http.StatusOK, "Message marked as "+msg.Status, msg)
}

// Delete handles DELETE /api/contact/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "Failed to delete message")
		return
	}
	writeSuccess(w, http.StatusOK, "Message deleted successfully", nil)
}

// writeServiceError maps service errors to responses; fallback is the
// message for unexpected failures.
func (h *ContactHandler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFailure(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeFailure(w, http.StatusNotFound, msgNotFound)
	default:
		slog.Error(fallback, "error", err)
		writeFailure(w, http.StatusInternalServerError, fallback)
	}
}
