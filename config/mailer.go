package config

import (
	"crypto/tls"
	"fmt"
	"html"
	"os"
	"strconv"

	mail "github.com/go-mail/mail/v2"
)

var (
	smtpHost = os.Getenv("SMTP_HOST")
	smtpPort = func() int {
		p, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if p == 0 {
			p = 587
		}
		return p
	}()
	smtpUser      = os.Getenv("SMTP_USER")
	smtpPass      = os.Getenv("SMTP_PASS")
	smtpFrom      = os.Getenv("SMTP_FROM") // e.g. "Accelerator <no-reply@your.org>"
	skipTLSVerify = os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1"
)

// MailConfigured reports whether outbound mail can be sent at all.
func MailConfigured() bool {
	return smtpHost != "" && smtpFrom != ""
}

func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !MailConfigured() {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", smtpFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	// Mandatory STARTTLS on 587 works with Gmail/Office365.
	d.StartTLSPolicy = mail.MandatoryStartTLS

	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: skipTLSVerify, // dev only, set SMTP_SKIP_TLS_VERIFY=1
	}

	return d.DialAndSend(m)
}

// BuildNotificationHTML renders the plain HTML body used for
// notification mails.
func BuildNotificationHTML(title, message string) string {
	return fmt.Sprintf(
		`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`+
			`<h2 style="color:#333">%s</h2><p style="color:#555">%s</p></div>`,
		html.EscapeString(title), html.EscapeString(message),
	)
}
