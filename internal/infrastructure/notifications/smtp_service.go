package notifications

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
)

// SMTPServiceImpl implements domain.NotificationService over SMTP with
// implicit TLS.
type SMTPServiceImpl struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *zap.Logger
}

// NewSMTPService creates a new SMTP notification service. With an empty
// host the service logs outbound mail instead of sending, which keeps local
// development working without a mail account.
func NewSMTPService(host, port, username, password, from string, logger *zap.Logger) domain.NotificationService {
	return &SMTPServiceImpl{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// SendEmail implements domain.NotificationService.
func (s *SMTPServiceImpl) SendEmail(to, subject, body string) error {
	if s.host == "" {
		s.logger.Info("smtp not configured, logging email instead",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := s.host + ":" + s.port
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
