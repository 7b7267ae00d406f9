package service

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/foodshare/backend/config"
)

// IEmailService sends transactional mail. When SMTP is not configured the
// implementation logs instead of sending, which keeps local development and
// tests free of external dependencies.
type IEmailService interface {
	SendLoginCode(to, fullName, code string) error
	Configured() bool
}

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
}

func NewEmailService(cfg *config.Config) IEmailService {
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		fromName:     cfg.EmailName,
	}
}

// Configured reports whether real mail delivery is available.
func (s *EmailService) Configured() bool {
	return s.smtpHost != "" && s.smtpPort != ""
}

// SendLoginCode mails a one-time sign-in code.
func (s *EmailService) SendLoginCode(to, fullName, code string) error {
	subject := "Your FoodShare sign-in code"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour one-time sign-in code is: %s\r\n\r\nIt expires in 10 minutes. If you didn't request it, you can ignore this email.\r\n", fullName, code)
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	// If SMTP is not configured, log the email instead
	if !s.Configured() {
		log.Printf("SMTP not configured, logging email to %s: %s", to, subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
