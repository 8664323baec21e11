package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/coursehunt/api/config"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnviornmentVariable) *EmailService {
	host := env.SMTP_HOST
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := env.SMTP_PORT
	if port == "" {
		port = "587"
	}
	from := env.SMTP_FROM_EMAIL
	if from == "" {
		from = "noreply@coursehunt.app"
	}

	return &EmailService{
		host:     host,
		port:     port,
		username: env.SMTP_USER,
		password: env.SMTP_PASSWORD,
		from:     from,
		appURL:   env.FRONTEND_URL,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendActivationEmail sends the account activation code to a new user
func (e *EmailService) SendActivationEmail(toEmail, userName, code string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Activation code for %s: %s", toEmail, code)
		return nil
	}

	subject := "Activate Your Account - CourseHunt"
	body := e.buildCodeEmailBody(userName,
		"Activate Your Account",
		"Use the code below to activate your CourseHunt account. It expires in 10 minutes.",
		code)

	return e.sendEmail(toEmail, subject, body)
}

// SendPasswordResetEmail sends a password reset link to the user
func (e *EmailService) SendPasswordResetEmail(toEmail, userName, resetToken string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Reset token for %s: %s", toEmail, resetToken)
		return fmt.Errorf("SMTP not configured")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", e.appURL, resetToken)

	subject := "Reset Your Password - CourseHunt"
	body := e.buildLinkEmailBody(userName,
		"Reset Your Password",
		"We received a request to reset the password for your CourseHunt account. Click the button below to create a new password. The link expires in 1 hour.",
		"Reset Password", resetLink)

	return e.sendEmail(toEmail, subject, body)
}

// SendPurchaseConfirmation sends a receipt after a successful payment
func (e *EmailService) SendPurchaseConfirmation(toEmail, userName, courseName string, amount float64) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Purchase confirmation skipped for %s", toEmail)
		return nil
	}

	subject := "Purchase Confirmed - CourseHunt"
	body := e.buildCodeEmailBody(userName,
		"Purchase Confirmed",
		fmt.Sprintf("Your payment of ₹%.2f for %q was successful. The course is now available in your library.", amount, courseName),
		"")

	return e.sendEmail(toEmail, subject, body)
}

const emailStyle = `
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
           line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto;
           padding: 20px; background-color: #f5f5f5; }
    .container { background-color: #ffffff; border-radius: 8px; padding: 40px;
                 box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1); }
    .logo { text-align: center; margin-bottom: 30px; padding-bottom: 20px;
            border-bottom: 2px solid #1a3c6e; }
    .logo h1 { color: #1a3c6e; font-size: 28px; margin: 0; }
    h2 { color: #1a3c6e; margin-top: 0; }
    .button { display: inline-block; background-color: #1a3c6e; color: #ffffff !important;
              padding: 14px 28px; text-decoration: none; border-radius: 6px;
              font-weight: 600; margin: 20px 0; }
    .code { font-size: 32px; letter-spacing: 8px; font-weight: 700; color: #1a3c6e;
            text-align: center; background-color: #f5f5f5; padding: 16px;
            border-radius: 6px; margin: 20px 0; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;
              font-size: 12px; color: #666; text-align: center; }
`

func (e *EmailService) buildCodeEmailBody(userName, title, text, code string) string {
	if userName == "" {
		userName = "there"
	}
	codeBlock := ""
	if code != "" {
		codeBlock = fmt.Sprintf(`<div class="code">%s</div>`, code)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><style>%s</style></head>
<body>
  <div class="container">
    <div class="logo"><h1>CourseHunt</h1></div>
    <h2>%s</h2>
    <p>Hello %s,</p>
    <p>%s</p>
    %s
    <div class="footer">
      <p><strong>CourseHunt</strong></p>
      <p>If you didn't expect this email, you can safely ignore it.</p>
    </div>
  </div>
</body>
</html>`, emailStyle, title, userName, text, codeBlock)
}

func (e *EmailService) buildLinkEmailBody(userName, title, text, buttonLabel, link string) string {
	if userName == "" {
		userName = "there"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><style>%s</style></head>
<body>
  <div class="container">
    <div class="logo"><h1>CourseHunt</h1></div>
    <h2>%s</h2>
    <p>Hello %s,</p>
    <p>%s</p>
    <p style="text-align: center;"><a href="%s" class="button">%s</a></p>
    <p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
    <div class="footer">
      <p><strong>CourseHunt</strong></p>
      <p>If you didn't expect this email, you can safely ignore it.</p>
    </div>
  </div>
</body>
</html>`, emailStyle, title, userName, text, link, buttonLabel, link)
}

// sendEmail sends an email using SMTP with STARTTLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := []string{
		fmt.Sprintf("From: CourseHunt <%s>", e.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	var message strings.Builder
	message.WriteString(strings.Join(headers, "\r\n"))
	message.WriteString("\r\n\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%s", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email %q sent to: %s", subject, to)
	return nil
}
