package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/studentgov/election-api/pkg/config"
)

// Mailer sends transactional email over SMTP. When no credentials are
// configured it logs the message instead, so local setups work without a
// mail server.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// New constructs a Mailer.
func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// SendOTP delivers a registration one-time code to the given address.
func (m *Mailer) SendOTP(to, code, purpose string) error {
	subject := "Your election portal verification code"
	body := fmt.Sprintf(
		"Your one-time code for %s is: %s\r\n\r\nThe code expires in 10 minutes. If you did not request it, ignore this email.\r\n",
		purpose, code,
	)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		m.logger.Warn("smtp credentials not configured, logging mail instead",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromEmail, to, subject, body)

	if err := smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
