package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/notify"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/repository"
	"github.com/usmansyedcoder/Portfolio-Backend/pkg/mailer"
)

// mockContactRepository is a function-field mock of repository.ContactRepository.
type mockContactRepository struct {
	saveFunc         func(ctx context.Context, msg *model.ContactMessage) error
	listFunc         func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	countFunc        func(ctx context.Context, status string) (int, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.ContactMessage, error)
	updateStatusFunc func(ctx context.Context, id, status string) (*model.ContactMessage, error)
	deleteFunc       func(ctx context.Context, id string) error
	statsFunc        func(ctx context.Context, now time.Time) (*model.ContactStats, error)

	saveCalls int
}

func (m *mockContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	m.saveCalls++
	if m.saveFunc != nil {
		return m.saveFunc(ctx, msg)
	}
	msg.ID = "generated-id"
	return nil
}

func (m *mockContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockContactRepository) Count(ctx context.Context, status string) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockContactRepository) GetByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockContactRepository) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, repository.ErrNotFound
}

func (m *mockContactRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockContactRepository) Stats(ctx context.Context, now time.Time) (*model.ContactStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, now)
	}
	return &model.ContactStats{}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, msg mailer.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) messages() []mailer.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]mailer.Message(nil), n.sent...)
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestContactService(repo *mockContactRepository, notifier Notifier) *contactServiceImpl {
	return &contactServiceImpl{repo: repo, notifier: notifier, now: func() time.Time { return fixedNow }}
}

func validInput() SubmitInput {
	return SubmitInput{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hi",
		Message: "Hello there",
	}
}

func TestContactService_Submit_Stored(t *testing.T) {
	var saved *model.ContactMessage
	repo := &mockContactRepository{
		saveFunc: func(_ context.Context, msg *model.ContactMessage) error {
			msg.ID = "abc-123"
			saved = msg
			return nil
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestContactService(repo, notifier)

	in := SubmitInput{
		Name:    "  Ada  ",
		Email:   " Ada@Example.COM ",
		Subject: " Hi ",
		Message: "\tHello there\n",
	}
	res, err := svc.Submit(context.Background(), in, ClientMeta{IP: "203.0.113.9", UserAgent: "curl/8"})
	require.NoError(t, err)

	assert.True(t, res.Stored)
	assert.Equal(t, "abc-123", res.ID)
	assert.Equal(t, fixedNow, res.Timestamp)

	require.NotNil(t, saved)
	assert.Equal(t, "Ada", saved.Name)
	assert.Equal(t, "ada@example.com", saved.Email)
	assert.Equal(t, "Hi", saved.Subject)
	assert.Equal(t, "Hello there", saved.Message)
	assert.Equal(t, model.StatusNew, saved.Status)
	assert.Equal(t, "203.0.113.9", saved.IPAddress)
	assert.Equal(t, "curl/8", saved.UserAgent)

	sent := notifier.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "New Portfolio Contact: Hi", sent[0].Subject)
	assert.Equal(t, "ada@example.com", sent[0].ReplyTo)
	assert.Contains(t, sent[0].TextBody, "Hello there")
}

func TestContactService_Submit_UnknownClientMeta(t *testing.T) {
	var saved *model.ContactMessage
	repo := &mockContactRepository{
		saveFunc: func(_ context.Context, msg *model.ContactMessage) error {
			saved = msg
			return nil
		},
	}
	svc := newTestContactService(repo, nil)

	_, err := svc.Submit(context.Background(), validInput(), ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, model.UnknownClient, saved.IPAddress)
	assert.Equal(t, model.UnknownClient, saved.UserAgent)
}

func TestContactService_Submit_Validation(t *testing.T) {
	long := func(n int) string { return strings.Repeat("a", n) }

	tests := []struct {
		name   string
		mutate func(in *SubmitInput)
		kind   ValidationKind
		field  string
		msg    string
	}{
		{
			name:   "missing name",
			mutate: func(in *SubmitInput) { in.Name = "" },
			kind:   KindMissingField,
			msg:    "All fields are required",
		},
		{
			name:   "whitespace-only message",
			mutate: func(in *SubmitInput) { in.Message = "   " },
			kind:   KindMissingField,
			msg:    "All fields are required",
		},
		{
			name:   "missing field wins over bad email",
			mutate: func(in *SubmitInput) { in.Subject = ""; in.Email = "nope" },
			kind:   KindMissingField,
			msg:    "All fields are required",
		},
		{
			name:   "invalid email",
			mutate: func(in *SubmitInput) { in.Email = "not-an-email" },
			kind:   KindInvalidEmail,
			field:  "email",
			msg:    "Please enter a valid email address",
		},
		{
			name:   "bad email wins over long name",
			mutate: func(in *SubmitInput) { in.Email = "a@b"; in.Name = long(101) },
			kind:   KindInvalidEmail,
			field:  "email",
		},
		{
			name:   "name too long",
			mutate: func(in *SubmitInput) { in.Name = long(101) },
			kind:   KindFieldTooLong,
			field:  "name",
			msg:    "Name cannot exceed 100 characters",
		},
		{
			name:   "subject too long",
			mutate: func(in *SubmitInput) { in.Subject = long(201) },
			kind:   KindFieldTooLong,
			field:  "subject",
			msg:    "Subject cannot exceed 200 characters",
		},
		{
			name:   "message too long",
			mutate: func(in *SubmitInput) { in.Message = long(2001) },
			kind:   KindFieldTooLong,
			field:  "message",
			msg:    "Message cannot exceed 2000 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockContactRepository{}
			notifier := &recordingNotifier{}
			svc := newTestContactService(repo, notifier)

			in := validInput()
			tt.mutate(&in)
			_, err := svc.Submit(context.Background(), in, ClientMeta{})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.kind, verr.Kind)
			assert.Equal(t, tt.field, verr.Field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, verr.Message)
			}
			assert.Zero(t, repo.saveCalls, "store must not be written")
			assert.Empty(t, notifier.messages(), "no notification on rejection")
		})
	}
}

func TestContactService_Submit_LengthBoundaries(t *testing.T) {
	svc := newTestContactService(&mockContactRepository{}, nil)

	in := SubmitInput{
		Name:    strings.Repeat("é", 100),
		Email:   "ada@example.com",
		Subject: strings.Repeat("s", 200),
		Message: strings.Repeat("m", 2000),
	}
	res, err := svc.Submit(context.Background(), in, ClientMeta{})
	require.NoError(t, err)
	assert.True(t, res.Stored)
}

func TestContactService_Submit_StoreOutageIsDegradedSuccess(t *testing.T) {
	repo := &mockContactRepository{
		saveFunc: func(context.Context, *model.ContactMessage) error {
			return errors.New("connection refused")
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestContactService(repo, notifier)

	res, err := svc.Submit(context.Background(), validInput(), ClientMeta{})
	require.NoError(t, err)
	assert.False(t, res.Stored)
	assert.Empty(t, res.ID)
	assert.Equal(t, fixedNow, res.Timestamp)
	assert.Len(t, notifier.messages(), 1, "notification is still dispatched")
}

func TestContactService_Submit_StoreValidationError(t *testing.T) {
	repo := &mockContactRepository{
		saveFunc: func(context.Context, *model.ContactMessage) error {
			return fmt.Errorf("%w: Email must be a valid email address", repository.ErrValidation)
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestContactService(repo, notifier)

	_, err := svc.Submit(context.Background(), validInput(), ClientMeta{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalid, verr.Kind)
	assert.Equal(t, "Email must be a valid email address", verr.Message)
	assert.Empty(t, notifier.messages())
}

func TestContactService_List_Defaults(t *testing.T) {
	var got model.ContactListOptions
	repo := &mockContactRepository{
		listFunc: func(_ context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
			got = opts
			return nil, nil
		},
		countFunc: func(context.Context, string) (int, error) { return 0, nil },
	}
	svc := newTestContactService(repo, nil)

	res, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, model.ContactListOptions{SortField: "created_at", SortDesc: true, Limit: 10}, got)
	assert.NotNil(t, res.Messages)
	assert.Empty(t, res.Messages)
	assert.Equal(t, model.Pagination{Current: 1, Pages: 0, Total: 0}, res.Pagination)
}

func TestContactService_List_Pagination(t *testing.T) {
	var got model.ContactListOptions
	var countStatus string
	repo := &mockContactRepository{
		listFunc: func(_ context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
			got = opts
			return []*model.ContactMessage{{ID: "1"}, {ID: "2"}}, nil
		},
		countFunc: func(_ context.Context, status string) (int, error) {
			countStatus = status
			return 25, nil
		},
	}
	svc := newTestContactService(repo, nil)

	res, err := svc.List(context.Background(), ListQuery{Page: 2, Limit: 10, Status: "read", Sort: "name"})
	require.NoError(t, err)

	assert.Equal(t, "read", got.Status)
	assert.Equal(t, "read", countStatus)
	assert.Equal(t, "name", got.SortField)
	assert.False(t, got.SortDesc)
	assert.Equal(t, 10, got.Offset)
	assert.Equal(t, model.Pagination{Current: 2, Pages: 3, Total: 25, HasNext: true, HasPrev: true}, res.Pagination)
	assert.Len(t, res.Messages, 2)
}

func TestContactService_List_Normalization(t *testing.T) {
	tests := []struct {
		name string
		q    ListQuery
		want model.ContactListOptions
	}{
		{"status all means no filter", ListQuery{Status: "all"}, model.ContactListOptions{SortField: "created_at", SortDesc: true, Limit: 10}},
		{"limit clamped", ListQuery{Limit: 500}, model.ContactListOptions{SortField: "created_at", SortDesc: true, Limit: 100}},
		{"camelCase sort alias", ListQuery{Sort: "-updatedAt"}, model.ContactListOptions{SortField: "updated_at", SortDesc: true, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := listOptions(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContactService_List_HugePageIsClamped(t *testing.T) {
	var got model.ContactListOptions
	repo := &mockContactRepository{
		listFunc: func(_ context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
			got = opts
			return nil, nil
		},
		countFunc: func(context.Context, string) (int, error) { return 25, nil },
	}
	svc := newTestContactService(repo, nil)

	res, err := svc.List(context.Background(), ListQuery{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err)

	assert.Equal(t, (maxPage-1)*100, got.Offset)
	assert.Equal(t, maxPage, res.Pagination.Current)
	assert.False(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)
}

func TestContactService_List_InvalidQuery(t *testing.T) {
	svc := newTestContactService(&mockContactRepository{}, nil)

	_, err := svc.List(context.Background(), ListQuery{Status: "spam"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidStatus, verr.Kind)

	_, err = svc.List(context.Background(), ListQuery{Sort: "ip_address; DROP TABLE"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidSort, verr.Kind)
}

func TestContactService_UpdateStatus(t *testing.T) {
	t.Run("invalid status never reaches the store", func(t *testing.T) {
		called := false
		repo := &mockContactRepository{
			updateStatusFunc: func(context.Context, string, string) (*model.ContactMessage, error) {
				called = true
				return nil, nil
			},
		}
		svc := newTestContactService(repo, nil)

		_, err := svc.UpdateStatus(context.Background(), "abc", "deleted")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindInvalidStatus, verr.Kind)
		assert.False(t, called)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestContactService(&mockContactRepository{}, nil)
		_, err := svc.UpdateStatus(context.Background(), "missing", model.StatusRead)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("success", func(t *testing.T) {
		repo := &mockContactRepository{
			updateStatusFunc: func(_ context.Context, id, status string) (*model.ContactMessage, error) {
				return &model.ContactMessage{ID: id, Status: status}, nil
			},
		}
		svc := newTestContactService(repo, nil)
		msg, err := svc.UpdateStatus(context.Background(), "abc", model.StatusReplied)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReplied, msg.Status)
	})
}

func TestContactService_GetAndDelete(t *testing.T) {
	repo := &mockContactRepository{
		deleteFunc: func(context.Context, string) error { return repository.ErrNotFound },
	}
	svc := newTestContactService(repo, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	repo.deleteFunc = func(context.Context, string) error { return errors.New("boom") }
	err = svc.Delete(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestContactService_Stats_ZeroFillsStatuses(t *testing.T) {
	var gotNow time.Time
	repo := &mockContactRepository{
		statsFunc: func(_ context.Context, now time.Time) (*model.ContactStats, error) {
			gotNow = now
			return &model.ContactStats{Total: 3, ByStatus: map[string]int{"new": 3}, Today: 1, ThisWeek: 2}, nil
		},
	}
	svc := newTestContactService(repo, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixedNow, gotNow)
	assert.Equal(t, map[string]int{"new": 3, "read": 0, "replied": 0, "archived": 0}, stats.ByStatus)
	assert.Equal(t, 3, stats.Total)
}

type failingSender struct {
	calls int
	mu    sync.Mutex
}

func (f *failingSender) Send(context.Context, mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("smtp: 535 authentication failed")
}

func TestContactService_Submit_NotificationFailureDoesNotChangeResult(t *testing.T) {
	sender := &failingSender{}
	dispatcher := notify.NewDispatcher(sender, time.Second)
	svc := newTestContactService(&mockContactRepository{}, dispatcher)

	res, err := svc.Submit(context.Background(), validInput(), ClientMeta{})
	require.NoError(t, err)
	assert.True(t, res.Stored)
	assert.Equal(t, "generated-id", res.ID)

	require.NoError(t, dispatcher.Wait(context.Background()))
	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 1, sender.calls)
}

func TestBuildNotification_EscapesHTML(t *testing.T) {
	msg := &model.ContactMessage{
		ID:        "abc",
		Name:      "<script>alert(1)</script>",
		Email:     "ada@example.com",
		Subject:   "Hi",
		Message:   "line one\nline two",
		IPAddress: "203.0.113.9",
		CreatedAt: fixedNow,
	}

	n, err := buildNotification(msg)
	require.NoError(t, err)
	assert.Equal(t, "New Portfolio Contact: Hi", n.Subject)
	assert.Equal(t, "ada@example.com", n.ReplyTo)
	assert.NotContains(t, n.HTMLBody, "<script>")
	assert.Contains(t, n.HTMLBody, "&lt;script&gt;")
	assert.Contains(t, n.HTMLBody, "Message ID: abc")
	assert.Contains(t, n.TextBody, "<script>alert(1)</script>")
}
