package domain

import "context"

// MailMessage is one outbound email.
type MailMessage struct {
	Subject    string
	Recipients []string
	HTML       string
	Text       string
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, msg *MailMessage) error
}

// EmailTemplateRenderer renders email bodies from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (htmlBody, textBody string, err error)
}

// Translator looks up a translation string, falling back to the key itself.
type Translator interface {
	Translate(key string) string
}

// AdminNotificationData holds data for the admin notification email.
type AdminNotificationData struct {
	User              *User
	Groups            []string
	UnsubscribeGroups []string
}

// AdminNotifier informs administrators about newly submitted requests.
// Implementations must never fail the caller: errors are handled internally.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, data *AdminNotificationData)
}
