package mailer

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ds124wfegd/eventmarket/config"

	"github.com/sirupsen/logrus"
)

// Mailer отправляет письма через SMTP; при enabled=false только логирует
type Mailer struct {
	cfg *config.EmailConfig
}

func NewMailer(cfg *config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers a plain-text message to a single recipient
func (m *Mailer) Send(to, subject, body string) error {
	return m.send(to, subject, body, "")
}

// SendWithInvite delivers a message with an attached iCalendar payload
func (m *Mailer) SendWithInvite(to, subject, body, ics string) error {
	return m.send(to, subject, body, ics)
}

func (m *Mailer) send(to, subject, body, ics string) error {
	if !m.cfg.Enabled {
		logrus.Infof("Email disabled, skipping message to %s: %s", to, subject)
		return nil
	}

	msg := m.buildMessage(to, subject, body, ics)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %v", to, err)
	}

	logrus.Infof("Email sent to %s: %s", to, subject)
	return nil
}

func (m *Mailer) buildMessage(to, subject, body, ics string) string {
	var b strings.Builder

	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if ics == "" {
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(body)
		return b.String()
	}

	const boundary = "eventmarket-invite"
	b.WriteString("Content-Type: multipart/mixed; boundary=\"" + boundary + "\"\r\n\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/calendar; method=PUBLISH; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"invite.ics\"\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString([]byte(ics)))
	b.WriteString("\r\n--" + boundary + "--\r\n")

	return b.String()
}
