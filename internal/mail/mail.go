package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/yerokha312/cooks-corner/internal/config"
)

// Sender dispatches the three templated account emails. Implementations must
// not block the request longer than one SMTP round trip.
type Sender interface {
	SendEmailConfirmation(to, link, name string) error
	SendPasswordReset(to, link, name string) error
	SendAccountRecovery(to, link, name string) error
}

type smtpSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(cfg *config.Config) Sender {
	return &smtpSender{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.SMTPFrom,
	}
}

func (s *smtpSender) SendEmailConfirmation(to, link, name string) error {
	body := fmt.Sprintf("Subject: Confirm your email\n\nHi %s,\n\nConfirm your Cooks Corner account: %s\n\nThe link expires in 5 minutes.", name, link)
	return s.send(to, body)
}

func (s *smtpSender) SendPasswordReset(to, link, name string) error {
	body := fmt.Sprintf("Subject: Reset your password\n\nHi %s,\n\nReset your Cooks Corner password: %s\n\nThe link expires in 5 minutes.", name, link)
	return s.send(to, body)
}

func (s *smtpSender) SendAccountRecovery(to, link, name string) error {
	body := fmt.Sprintf("Subject: Recover your account\n\nHi %s,\n\nRestore your Cooks Corner account: %s\n\nThe link expires in 5 minutes.", name, link)
	return s.send(to, body)
}

func (s *smtpSender) send(to, body string) error {
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(body)); err != nil {
		log.Printf("⚠️  Failed to send email to %s: %v", to, err)
		return err
	}
	return nil
}

// Noop discards all emails. Used by tests.
type Noop struct{}

func (Noop) SendEmailConfirmation(string, string, string) error { return nil }
func (Noop) SendPasswordReset(string, string, string) error     { return nil }
func (Noop) SendAccountRecovery(string, string, string) error   { return nil }
