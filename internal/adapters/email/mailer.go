package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"groupregistration/internal/domain"
)

// Supported mail providers.
const (
	ProviderSMTP     = "smtp"
	ProviderSES      = "ses"
	ProviderSendGrid = "sendgrid"
	ProviderNoop     = "noop"
)

// SMTPConfig holds configuration for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	UseSSL   bool
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SMTP        SMTPConfig
	SES         SESConfig
	SendGrid    SendGridConfig
}

// NewMailer creates a mailer from config. Unknown providers fall back to a no-op mailer.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	switch config.Provider {
	case ProviderSMTP, "":
		if config.SMTP.Host == "" {
			return nil, fmt.Errorf("smtp mailer: missing host")
		}
		d := gomail.NewDialer(config.SMTP.Host, config.SMTP.Port, config.SMTP.Username, config.SMTP.Password)
		d.SSL = config.SMTP.UseSSL
		if config.SMTP.UseTLS {
			d.TLSConfig = &tls.Config{ServerName: config.SMTP.Host, MinVersion: tls.VersionTLS12}
		}
		return &smtpMailer{
			dialer:      d,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case ProviderSES:
		sesConfig := config.SES
		if sesConfig.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES, use only in development")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case ProviderSendGrid:
		if config.SendGrid.APIKey == "" {
			return nil, fmt.Errorf("sendgrid mailer: missing api key")
		}
		return &sendGridMailer{
			client:      sendgrid.NewSendClient(config.SendGrid.APIKey),
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case ProviderNoop:
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

func formatSource(address, name string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

type smtpMailer struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *smtpMailer) buildMessage(msg *domain.MailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddress, s.fromName)
	m.SetHeader("To", msg.Recipients...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

// Send dials the relay for each message. gomail sets no I/O deadlines once
// connected, so when ctx ends first the send goroutine is abandoned and keeps
// running until the relay answers or drops the connection. The message may
// still be delivered then; the late result is logged as a warning.
func (s *smtpMailer) Send(ctx context.Context, msg *domain.MailMessage) error {
	m := s.buildMessage(msg)
	var (
		mu        sync.Mutex
		abandoned bool
	)
	done := make(chan error, 1)
	go func() {
		err := s.dialer.DialAndSend(m)
		mu.Lock()
		late := abandoned
		mu.Unlock()
		if late {
			s.logger.Warn("smtp send finished after caller stopped waiting", "recipients", msg.Recipients, "error", err)
			return
		}
		done <- err
	}()
	select {
	case err := <-done:
		return s.result(msg, err)
	case <-ctx.Done():
		mu.Lock()
		abandoned = true
		mu.Unlock()
		select {
		case err := <-done:
			return s.result(msg, err)
		default:
		}
		return fmt.Errorf("failed to send email via smtp: %w", ctx.Err())
	}
}

func (s *smtpMailer) result(msg *domain.MailMessage, err error) error {
	if err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	s.logger.Info("email sent via smtp", "recipients", msg.Recipients)
	return nil
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *sesMailer) buildInput(msg *domain.MailMessage) *ses.SendEmailInput {
	input := &ses.SendEmailInput{
		Source: aws.String(formatSource(s.fromAddress, s.fromName)),
		Destination: &types.Destination{
			ToAddresses: msg.Recipients,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if msg.HTML != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.Text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(msg.Text),
			Charset: aws.String("UTF-8"),
		}
	}
	return input
}

func (s *sesMailer) Send(ctx context.Context, msg *domain.MailMessage) error {
	result, err := s.client.SendEmail(ctx, s.buildInput(msg))
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.Info("email sent via SES", "message_id", aws.ToString(result.MessageId))
	return nil
}

type sendGridMailer struct {
	client      *sendgrid.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *sendGridMailer) buildMessage(msg *domain.MailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(s.fromName, s.fromAddress))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.Recipients {
		p.AddTos(sgmail.NewEmail("", to))
	}
	m.AddPersonalizations(p)

	// SendGrid requires text/plain before text/html.
	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}

func (s *sendGridMailer) Send(ctx context.Context, msg *domain.MailMessage) error {
	response, err := s.client.SendWithContext(ctx, s.buildMessage(msg))
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	s.logger.Info("email sent via sendgrid", "status", response.StatusCode)
	return nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg *domain.MailMessage) error {
	n.logger.InfoContext(ctx, "email would be sent (noop)", "recipients", msg.Recipients, "subject", msg.Subject)
	return nil
}
