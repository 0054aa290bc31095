package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"groupregistration/config"
	"groupregistration/internal/domain"
	"groupregistration/internal/repository/postgres"
	"groupregistration/internal/services"
	"groupregistration/internal/tenant"
)

// Store keys: every tenant-owned pool is prefixed, so no tenant name can
// collide with the shared pool.
const (
	sharedStoreKey = "shared"
	tenantStorePfx = "tenant-"
)

type openFunc func(ctx context.Context, dsn string) (*sql.DB, error)

// tenantServices builds one RegistrationService per tenant on first use.
// Tenants without their own database share a single pool.
type tenantServices struct {
	cfg      *config.Config
	notifier *services.AdminNotificationService
	logger   *slog.Logger
	open     openFunc

	dbs      *tenant.Registry[*sql.DB]
	services *tenant.Registry[domain.RegistrationService]
}

func newTenantServices(cfg *config.Config, notifier *services.AdminNotificationService, open openFunc, logger *slog.Logger) *tenantServices {
	t := &tenantServices{cfg: cfg, notifier: notifier, logger: logger, open: open}
	t.dbs = tenant.NewRegistry(t.openStore)
	t.services = tenant.NewRegistry(t.buildService)
	return t
}

func (t *tenantServices) RegistrationService(ctx context.Context, name string) (domain.RegistrationService, error) {
	return t.services.Get(ctx, name)
}

func (t *tenantServices) buildService(ctx context.Context, name string) (domain.RegistrationService, error) {
	db, err := t.dbs.Get(ctx, t.storeKey(name))
	if err != nil {
		return nil, err
	}
	t.logger.Info("tenant initialized", "tenant", name)
	return services.NewRegistrationService(
		postgres.NewRegistrableGroupRepository(db),
		postgres.NewUserRepository(db),
		postgres.NewRegistrationRequestRepository(db),
		t.notifier.WithRecipients(t.cfg.RecipientsFor(name)),
		t.logger.With("tenant", name),
	), nil
}

func (t *tenantServices) storeKey(name string) string {
	if override, ok := t.cfg.Tenants[name]; ok && override.DatabaseURL != "" {
		return tenantStorePfx + name
	}
	if t.cfg.SharedDatabase() {
		return sharedStoreKey
	}
	return tenantStorePfx + name
}

func (t *tenantServices) openStore(ctx context.Context, key string) (*sql.DB, error) {
	dsn := t.cfg.DBUrl
	if name, ok := strings.CutPrefix(key, tenantStorePfx); ok {
		dsn = t.cfg.DatabaseURL(name)
	}
	db, err := t.open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for %s: %w", key, err)
	}
	return db, nil
}

// Close closes every opened pool.
func (t *tenantServices) Close() {
	t.dbs.Each(func(key string, db *sql.DB) {
		if err := db.Close(); err != nil {
			t.logger.Error("failed to close database", "store", key, "error", err)
		}
	})
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
