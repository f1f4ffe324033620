package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

//go:generate mockgen -source=mailer.go -destination=mock/mailer_mock.go -package=mock
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes the mail to the log instead of delivering it. Used when
// email notification is toggled off or no SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("notification.log_mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("notification (email delivery disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

type SMTPMailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(host, port, from, username, password string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{host: host, port: port, from: from, auth: auth}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	addr := m.host + ":" + m.port
	return smtp.SendMail(addr, m.auth, m.from, []string{msg.To}, []byte(b.String()))
}

// NewMailerFromEnv picks the mailer implementation from the environment.
// NOTIFY_EMAIL=off or a missing SMTP_HOST selects the log mailer.
func NewMailerFromEnv(logger *zap.Logger) Mailer {
	if strings.EqualFold(os.Getenv("NOTIFY_EMAIL"), "off") {
		return NewLogMailer(logger)
	}
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return NewLogMailer(logger)
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return NewSMTPMailer(
		host,
		port,
		os.Getenv("SMTP_FROM"),
		os.Getenv("SMTP_USERNAME"),
		os.Getenv("SMTP_PASSWORD"),
	)
}
