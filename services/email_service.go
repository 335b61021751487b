package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service instance
func NewEmailService() *EmailService {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &EmailService{
		host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnvOrDefault("SMTP_FROM", "noreply@odprovider.app"),
		appURL:   getEnvOrDefault("APP_URL", "http://localhost:3000"),
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendVerificationEmail mails a student the link that confirms their
// address after registration.
func (e *EmailService) SendVerificationEmail(toEmail, userName, token string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Verification token for %s: %s", toEmail, token)
		return fmt.Errorf("SMTP not configured")
	}

	verifyLink := fmt.Sprintf("%s/verify-email?token=%s", e.appURL, token)
	body := e.wrapBody(userName, fmt.Sprintf(`
		<p>Welcome to OD Provider. Please confirm your email address to activate your account:</p>
		<p><a class="button" href="%s">Verify Email</a></p>
		<p>If the button does not work, open this link: %s</p>
		<p>The link expires in 24 hours.</p>`, verifyLink, verifyLink))

	return e.sendEmail(toEmail, "Verify Your Email - OD Provider", body)
}

// SendPasswordOTP mails a one-time code for a password change.
func (e *EmailService) SendPasswordOTP(toEmail, userName, code string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Password OTP for %s: %s", toEmail, code)
		return fmt.Errorf("SMTP not configured")
	}

	body := e.wrapBody(userName, fmt.Sprintf(`
		<p>Your one-time code for changing your password is:</p>
		<p class="otp">%s</p>
		<p>The code expires in 10 minutes and can be used once.</p>
		<p style="color:#999;">If you did not request a password change, you can safely ignore this email.</p>`, code))

	return e.sendEmail(toEmail, "Password Change Code - OD Provider", body)
}

// SendTeacherInvite mails a newly created teacher their credentials.
func (e *EmailService) SendTeacherInvite(toEmail, userName, password string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping invite for %s", toEmail)
		return fmt.Errorf("SMTP not configured")
	}

	body := e.wrapBody(userName, fmt.Sprintf(`
		<p>An account has been created for you on OD Provider.</p>
		<p>Login email: <strong>%s</strong><br>Temporary password: <strong>%s</strong></p>
		<p>Please sign in at <a href="%s/login">%s/login</a> and change your password.</p>`,
		toEmail, password, e.appURL, e.appURL))

	return e.sendEmail(toEmail, "Your OD Provider Account - OD Provider", body)
}

// SendDecisionEmail tells a student their request was decided.
func (e *EmailService) SendDecisionEmail(toEmail, userName, requestTitle, status, remarks string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Decision notice for %s: %q %s", toEmail, requestTitle, status)
		return fmt.Errorf("SMTP not configured")
	}

	remarkLine := ""
	if remarks != "" {
		remarkLine = fmt.Sprintf("<p>Reviewer remarks: %s</p>", remarks)
	}
	body := e.wrapBody(userName, fmt.Sprintf(`
		<p>Your request <strong>%q</strong> has been <strong>%s</strong>.</p>
		%s
		<p>Sign in to your dashboard for details.</p>`, requestTitle, status, remarkLine))

	return e.sendEmail(toEmail, fmt.Sprintf("Request %s - OD Provider", status), body)
}

// wrapBody puts shared layout and styling around an email fragment.
func (e *EmailService) wrapBody(userName, fragment string) string {
	if userName == "" {
		userName = "User"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .container { background: #fff; border-radius: 8px; padding: 32px; border: 1px solid #eee; }
        h1 { color: #1a3c6e; font-size: 22px; }
        .button { display: inline-block; background: #1a3c6e; color: #fff !important; padding: 12px 24px; border-radius: 6px; text-decoration: none; }
        .otp { font-size: 28px; letter-spacing: 6px; font-weight: bold; color: #1a3c6e; }
        .footer { color: #999; font-size: 12px; margin-top: 24px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>OD Provider</h1>
        <p>Hi %s,</p>
        %s
        <div class="footer">This is an automated message from the college OD Provider portal.</div>
    </div>
</body>
</html>`, userName, fragment)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("OD Provider <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
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
	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email %q sent to: %s", subject, to)
	return nil
}
