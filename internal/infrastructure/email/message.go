// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// emailMessage is a fully-addressed email ready for delivery.
type emailMessage struct {
	to      string
	subject string
	html    string
	text    string
}

// buildEmailMessage assembles a multipart/alternative MIME message with
// text and HTML parts.
func buildEmailMessage(from string, msg emailMessage) []byte {
	boundary := "==appointment-service-boundary=="

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.text)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.html)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(b.String())
}

// sendEmailMessage delivers the message over SMTP. Authentication is used
// only when a username is configured.
func sendEmailMessage(config SMTPConfig, msg emailMessage) error {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	body := buildEmailMessage(config.From, msg)

	return smtp.SendMail(addr, auth, config.From, []string{msg.to}, body)
}
