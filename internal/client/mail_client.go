package client

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/model"
)

// AlertSender defines the interface for out-of-band operator alerts
type AlertSender interface {
	SendAlert(creds model.EmailConfig, subject, body string) error
}

// MailClient implements AlertSender over SMTP submission. The sender
// credential pair is supplied per call — it lives in the config collection
// of the store, not in the environment, so it can be rotated live.
type MailClient struct {
	host          string
	port          string
	operatorEmail string
}

// NewMailClient creates a new SMTP alert client
func NewMailClient(cfg *config.AlertConfig) *MailClient {
	return &MailClient{
		host:          cfg.SMTPHost,
		port:          cfg.SMTPPort,
		operatorEmail: cfg.OperatorEmail,
	}
}

// SendAlert delivers a plain-text alert email to the configured operator
func (c *MailClient) SendAlert(creds model.EmailConfig, subject, body string) error {
	if creds.Sender == "" || creds.Password == "" {
		return fmt.Errorf("email credentials not configured")
	}
	if c.operatorEmail == "" {
		return fmt.Errorf("operator email not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		creds.Sender, c.operatorEmail, subject, body)

	auth := smtp.PlainAuth("", creds.Sender, creds.Password, c.host)
	addr := c.host + ":" + c.port

	log.Printf("[Mail] → %s subject=%q", c.operatorEmail, subject)

	if err := smtp.SendMail(addr, auth, creds.Sender, []string{c.operatorEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *MailClient) IsConfigured() bool {
	return c.operatorEmail != ""
}
