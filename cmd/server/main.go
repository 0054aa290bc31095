package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groupregistration/config"
	_ "groupregistration/docs"
	"groupregistration/internal/adapters/auth"
	"groupregistration/internal/adapters/email"
	httpdelivery "groupregistration/internal/delivery/http"
	"groupregistration/internal/delivery/http/controllers"
	"groupregistration/internal/i18n"
	"groupregistration/internal/services"
)

// @title Group Registration API
// @version 1.0
// @description Self-service group membership requests with administrator notification.
// @BasePath /
func main() {
	cfg, err := config.Load()
	logger := config.NewLogger()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET_KEY is required")
		os.Exit(1)
	}

	catalog, err := i18n.Load(cfg.DefaultLocale, cfg.TranslationsDir)
	if err != nil {
		logger.Warn("translations partially loaded", "locale", cfg.DefaultLocale, "error", err)
	}

	mailer, err := email.NewMailer(mailerConfig(cfg), logger)
	if err != nil {
		logger.Error("invalid mail configuration", "error", err)
		os.Exit(1)
	}
	notifier := services.NewAdminNotificationService(
		mailer,
		email.NewTemplateRenderer(),
		catalog,
		cfg.AdminRecipients,
		cfg.NotificationTimeout,
		logger,
	)

	tenants := newTenantServices(cfg, notifier, openPostgres, logger)
	defer tenants.Close()

	registration := &controllers.RegistrationController{
		Logger:     logger,
		Services:   tenants,
		Translator: catalog,
	}
	handler := httpdelivery.NewRouter(registration, httpdelivery.RouterOptions{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		TokenCookie:    cfg.JWTCookieName,
		LoginURL:       cfg.LoginURL,
		TenantHeader:   cfg.TenantHeader,
		DefaultTenant:  cfg.DefaultTenant,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	notifier.Wait()
}

func mailerConfig(cfg *config.Config) email.MailerConfig {
	m := cfg.Mail
	provider := m.Provider
	if m.SuppressSend {
		provider = email.ProviderNoop
	}
	return email.MailerConfig{
		Provider:    provider,
		FromAddress: m.DefaultSender,
		FromName:    m.FromName,
		SMTP: email.SMTPConfig{
			Host:     m.Server,
			Port:     m.Port,
			Username: m.Username,
			Password: m.Password,
			UseTLS:   m.UseTLS,
			UseSSL:   m.UseSSL,
		},
		SES: email.SESConfig{
			Region:             m.AWSRegion,
			AccessKeyID:        m.AWSAccessKeyID,
			SecretAccessKey:    m.AWSSecretAccessKey,
			InsecureSkipVerify: m.SESInsecureSkipTLS,
		},
		SendGrid: email.SendGridConfig{APIKey: m.SendGridAPIKey},
	}
}
