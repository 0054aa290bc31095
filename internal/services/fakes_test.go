package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"groupregistration/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func int64Ptr(v int64) *int64 { return &v }

type mockRegistrableGroupRepository struct {
	groups []*domain.RegistrableGroup
	err    error
}

func (m *mockRegistrableGroupRepository) ListOrderedByTitle(ctx context.Context) ([]*domain.RegistrableGroup, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.groups, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
	err   error
}

func (m *mockUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[name]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type mockRegistrationRequestRepository struct {
	pending   []int64
	createErr error
	// pendingAfterCreate replaces pending once CreateBatch has been called.
	pendingAfterCreate []int64

	batches []*domain.RegistrationBatch
	rows    []*domain.RegistrationRequest
}

func (m *mockRegistrationRequestRepository) ListPendingGroupIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.pending, nil
}

func (m *mockRegistrationRequestRepository) CreateBatch(ctx context.Context, batch *domain.RegistrationBatch) ([]*domain.RegistrationRequest, error) {
	m.batches = append(m.batches, batch)
	if m.pendingAfterCreate != nil {
		m.pending = m.pendingAfterCreate
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	reqs := batch.Requests()
	for i, req := range reqs {
		req.ID = int64(len(m.rows) + i + 1)
	}
	m.rows = append(m.rows, reqs...)
	return reqs, nil
}

type mockAdminNotifier struct {
	calls []*domain.AdminNotificationData
}

func (m *mockAdminNotifier) NotifyAdmins(ctx context.Context, data *domain.AdminNotificationData) {
	m.calls = append(m.calls, data)
}

type mockMailer struct {
	mu       sync.Mutex
	sent     []*domain.MailMessage
	err      error
	panicMsg string
	// block waits for ctx cancellation before returning its error.
	block bool
}

func (m *mockMailer) Send(ctx context.Context, msg *domain.MailMessage) error {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) messages() []*domain.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.MailMessage(nil), m.sent...)
}

type mockRenderer struct {
	err error
}

func (m *mockRenderer) Render(templateName string, data any) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	d := data.(*domain.AdminNotificationData)
	return "<p>" + d.User.Name + "</p>", "user " + d.User.Name, nil
}

type mapTranslator map[string]string

func (t mapTranslator) Translate(key string) string {
	if v, ok := t[key]; ok {
		return v
	}
	return key
}

// capturingHandler records log records; safe for use from notification goroutines.
type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *capturingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *capturingHandler) WithGroup(_ string) slog.Handler { return h }

func (h *capturingHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}
