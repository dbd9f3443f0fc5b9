package utils

import (
	"net/smtp"
	"os"
)

// SendMail delivers an HTML email through the configured SMTP relay.
// SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD environment variables.
func SendMail(to string, subject string, html string) (bool, error) {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	auth := smtp.PlainAuth("", user, password, host)

	msg := []byte("To: " + to + "\r\n" +
		"From: " + user + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html + "\r\n")

	err := smtp.SendMail(host+":"+port, auth, user, []string{to}, msg)
	if err != nil {
		return false, err
	}

	return true, nil
}
