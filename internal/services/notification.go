package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"groupregistration/internal/domain"
)

// DefaultNotificationTimeout bounds a single admin notification send.
const DefaultNotificationTimeout = 10 * time.Second

const adminNotificationTemplate = "admin_notification"

// AdminNotificationService sends best-effort admin notifications in the
// background. Failures are logged and never retried.
type AdminNotificationService struct {
	mailer     domain.Mailer
	renderer   domain.EmailTemplateRenderer
	translator domain.Translator
	recipients []string
	timeout    time.Duration
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewAdminNotificationService returns a service that notifies recipients.
// A non-positive timeout uses DefaultNotificationTimeout.
func NewAdminNotificationService(
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	translator domain.Translator,
	recipients []string,
	timeout time.Duration,
	logger *slog.Logger,
) *AdminNotificationService {
	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}
	return &AdminNotificationService{
		mailer:     mailer,
		renderer:   renderer,
		translator: translator,
		recipients: recipients,
		timeout:    timeout,
		logger:     logger,
	}
}

// NotifyAdmins notifies the configured recipients.
func (s *AdminNotificationService) NotifyAdmins(ctx context.Context, data *domain.AdminNotificationData) {
	s.dispatch(ctx, s.recipients, data)
}

// WithRecipients returns a notifier that shares this service's transport and
// in-flight tracking but sends to recipients instead.
func (s *AdminNotificationService) WithRecipients(recipients []string) domain.AdminNotifier {
	return &recipientNotifier{svc: s, recipients: recipients}
}

// Wait blocks until all dispatched notifications have finished.
func (s *AdminNotificationService) Wait() {
	s.wg.Wait()
}

func (s *AdminNotificationService) dispatch(ctx context.Context, recipients []string, data *domain.AdminNotificationData) {
	if data == nil || (len(data.Groups) == 0 && len(data.UnsubscribeGroups) == 0) {
		return
	}
	if len(recipients) == 0 {
		s.logger.DebugContext(ctx, "no admin recipients configured, skipping notification")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The request may be finished before the send is; keep its values, drop its cancellation.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.ErrorContext(sendCtx, "admin notification panicked", "recipients", recipients, "panic", r)
			}
		}()
		if err := s.send(sendCtx, recipients, data); err != nil {
			s.logger.ErrorContext(sendCtx, "could not send notification to admins", "recipients", recipients, "error", err)
		}
	}()
}

func (s *AdminNotificationService) send(ctx context.Context, recipients []string, data *domain.AdminNotificationData) error {
	htmlBody, textBody, err := s.renderer.Render(adminNotificationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", adminNotificationTemplate, err)
	}
	msg := &domain.MailMessage{
		Subject:    s.translator.Translate("admin_notification.subject"),
		Recipients: recipients,
		HTML:       htmlBody,
		Text:       textBody,
	}
	s.logger.DebugContext(ctx, "sending admin notification", "subject", msg.Subject, "recipients", recipients)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send admin notification: %w", err)
	}
	return nil
}

type recipientNotifier struct {
	svc        *AdminNotificationService
	recipients []string
}

func (n *recipientNotifier) NotifyAdmins(ctx context.Context, data *domain.AdminNotificationData) {
	n.svc.dispatch(ctx, n.recipients, data)
}
