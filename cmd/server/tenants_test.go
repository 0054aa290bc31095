package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupregistration/config"
	"groupregistration/internal/domain"
	"groupregistration/internal/services"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, *domain.MailMessage) error { return nil }

type nopRenderer struct{}

func (nopRenderer) Render(string, any) (string, string, error) { return "", "", nil }

type nopTranslator struct{}

func (nopTranslator) Translate(key string) string { return key }

// recordingOpener hands out sqlmock pools and remembers the DSNs asked for.
type recordingOpener struct {
	mu    sync.Mutex
	dsns  []string
	mocks []sqlmock.Sqlmock
	fail  bool
}

func (o *recordingOpener) open(_ context.Context, dsn string) (*sql.DB, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dsns = append(o.dsns, dsn)
	if o.fail {
		return nil, errors.New("connection refused")
	}
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}
	mock.ExpectClose()
	o.mocks = append(o.mocks, mock)
	return db, nil
}

func newTestTenants(cfg *config.Config, opener *recordingOpener) *tenantServices {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := services.NewAdminNotificationService(nopMailer{}, nopRenderer{}, nopTranslator{}, nil, time.Second, logger)
	return newTenantServices(cfg, notifier, opener.open, logger)
}

func TestTenantServices_SharedDatabase(t *testing.T) {
	opener := &recordingOpener{}
	ts := newTestTenants(&config.Config{DBUrl: "postgres://shared/db"}, opener)

	a, err := ts.RegistrationService(context.Background(), "acme")
	require.NoError(t, err)
	b, err := ts.RegistrationService(context.Background(), "beta")
	require.NoError(t, err)
	a2, err := ts.RegistrationService(context.Background(), "acme")
	require.NoError(t, err)

	assert.NotNil(t, a)
	assert.NotNil(t, b)
	assert.Same(t, a, a2)
	assert.Equal(t, []string{"postgres://shared/db"}, opener.dsns)

	ts.Close()
	for _, m := range opener.mocks {
		assert.NoError(t, m.ExpectationsWereMet())
	}
}

func TestTenantServices_PerTenantDatabase(t *testing.T) {
	opener := &recordingOpener{}
	cfg := &config.Config{
		DBUrl: "postgres://db/{tenant}",
		Tenants: map[string]config.TenantConfig{
			"vip": {DatabaseURL: "postgres://vip-host/registration"},
		},
	}
	ts := newTestTenants(cfg, opener)

	for _, name := range []string{"acme", "beta", "vip", "acme"} {
		_, err := ts.RegistrationService(context.Background(), name)
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, []string{
		"postgres://db/acme",
		"postgres://db/beta",
		"postgres://vip-host/registration",
	}, opener.dsns)

	ts.Close()
	for _, m := range opener.mocks {
		assert.NoError(t, m.ExpectationsWereMet())
	}
}

func TestTenantServices_OverrideInSharedMode(t *testing.T) {
	opener := &recordingOpener{}
	cfg := &config.Config{
		DBUrl:   "postgres://shared/db",
		Tenants: map[string]config.TenantConfig{"vip": {DatabaseURL: "postgres://vip-host/db"}},
	}
	ts := newTestTenants(cfg, opener)

	for _, name := range []string{"acme", "vip", "beta"} {
		_, err := ts.RegistrationService(context.Background(), name)
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"postgres://shared/db", "postgres://vip-host/db"}, opener.dsns)
	ts.Close()
}

func TestTenantServices_OpenFailureIsRetried(t *testing.T) {
	opener := &recordingOpener{fail: true}
	ts := newTestTenants(&config.Config{DBUrl: "postgres://shared/db"}, opener)

	_, err := ts.RegistrationService(context.Background(), "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	opener.mu.Lock()
	opener.fail = false
	opener.mu.Unlock()
	_, err = ts.RegistrationService(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, opener.dsns, 2)
	ts.Close()
}

func TestMailerConfig(t *testing.T) {
	cfg := &config.Config{Mail: config.MailConfig{
		Provider:      "smtp",
		Server:        "mail.example.com",
		Port:          587,
		UseTLS:        true,
		DefaultSender: "noreply@example.com",
		FromName:      "Registration",
	}}
	m := mailerConfig(cfg)
	assert.Equal(t, "smtp", m.Provider)
	assert.Equal(t, "mail.example.com", m.SMTP.Host)
	assert.Equal(t, 587, m.SMTP.Port)
	assert.True(t, m.SMTP.UseTLS)
	assert.Equal(t, "noreply@example.com", m.FromAddress)

	assert.False(t, m.SES.InsecureSkipVerify)

	cfg.Mail.Provider = "ses"
	cfg.Mail.AWSRegion = "eu-central-1"
	cfg.Mail.SESInsecureSkipTLS = true
	m = mailerConfig(cfg)
	assert.Equal(t, "eu-central-1", m.SES.Region)
	assert.True(t, m.SES.InsecureSkipVerify)

	cfg.Mail.SuppressSend = true
	assert.Equal(t, "noop", mailerConfig(cfg).Provider)
}

func TestTenantServices_StoreKeysDoNotCollide(t *testing.T) {
	tests := []struct {
		name     string
		dbURL    string
		tenants  []string
		wantDSNs []string
	}{
		{
			name:     "per tenant placeholder",
			dbURL:    "postgres://db/{tenant}",
			tenants:  []string{"shared", "_shared", "tenant-x"},
			wantDSNs: []string{"postgres://db/shared", "postgres://db/_shared", "postgres://db/tenant-x"},
		},
		{
			name:     "shared store",
			dbURL:    "postgres://shared/db",
			tenants:  []string{"shared", "tenant-shared"},
			wantDSNs: []string{"postgres://shared/db"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &recordingOpener{}
			ts := newTestTenants(&config.Config{DBUrl: tt.dbURL}, opener)
			for _, name := range tt.tenants {
				_, err := ts.RegistrationService(context.Background(), name)
				require.NoError(t, err)
			}
			assert.ElementsMatch(t, tt.wantDSNs, opener.dsns)
			for _, dsn := range opener.dsns {
				assert.NotContains(t, dsn, config.TenantPlaceholder)
			}
			ts.Close()
		})
	}
}
