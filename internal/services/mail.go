package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

// MailService sends the transactional emails the app needs: account
// verification, password reset, and certificate expiry alerts.
type MailService struct {
	apiKey  string
	from    string
	baseURL string
	alertTo string
}

func NewMailService(apiKey, from, baseURL string) *MailService {
	if from == "" {
		from = "noreply@gondola-manager.local"
	}
	return &MailService{apiKey: apiKey, from: from, baseURL: baseURL}
}

// SetAlertRecipient sets the address certificate alerts go to.
func (m *MailService) SetAlertRecipient(email string) {
	m.alertTo = email
}

func (m *MailService) SendVerificationEmail(toEmail, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
	subject := "Verify your email"
	html := fmt.Sprintf(`<p>Please verify your email by clicking the link below:</p><p><a href="%s">%s</a></p>`, verifyURL, verifyURL)
	plain := fmt.Sprintf("Please verify your email: %s", verifyURL)
	return m.send(toEmail, subject, plain, html)
}

func (m *MailService) SendResetPasswordEmail(toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	subject := "Reset your password"
	html := fmt.Sprintf(`<p>Click the link below to reset your password:</p><p><a href="%s">%s</a></p>`, resetURL, resetURL)
	plain := fmt.Sprintf("Reset your password: %s", resetURL)
	return m.send(toEmail, subject, plain, html)
}

// CertificateAlert notifies the site contact that a certificate crossed into
// expiring or expired during a sweep.
func (m *MailService) CertificateAlert(cert entity.CertificateExpiry) error {
	if m.alertTo == "" {
		return nil
	}
	subject := fmt.Sprintf("Certificate %s for gondola %s is %s", cert.DocumentType, cert.SerialNumber, cert.Status)
	plain := fmt.Sprintf(
		"Certificate %s for gondola %s is now %s (expiry %s, %d day(s) remaining).",
		cert.DocumentType, cert.SerialNumber, cert.Status,
		cert.ExpiryDate.Format("2006-01-02"), cert.DaysRemaining)
	html := fmt.Sprintf("<p>%s</p>", plain)
	return m.send(m.alertTo, subject, plain, html)
}

func (m *MailService) send(toEmail, subject, plain, html string) error {
	if m.apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not configured")
	}
	from := mail.NewEmail("Gondola Manager", m.from)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(m.apiKey)
	_, err := client.Send(message)
	return err
}
