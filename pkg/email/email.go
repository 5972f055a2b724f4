package email

import (
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
)

// Message is a plain-text UTF-8 email.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	Body     string
}

// Build renders msg with RFC 2047 encoded headers so non-ASCII subjects
// and sender names survive transport.
func Build(msg Message) ([]byte, error) {
	if !strings.Contains(msg.To, "@") {
		return nil, fmt.Errorf("invalid email address: %s", msg.To)
	}
	from := (&mail.Address{Name: msg.FromName, Address: msg.From}).String()
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String()), nil
}

func Send(server string, port int, username, password string, msg Message) error {
	raw, err := Build(msg)
	if err != nil {
		return err
	}
	auth := smtp.PlainAuth("", username, password, server)
	addr := fmt.Sprintf("%s:%d", server, port)
	return smtp.SendMail(addr, auth, msg.From, []string{msg.To}, raw)
}
