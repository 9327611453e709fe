package mailer

import (
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
)

// Mailer sends the transactional mails the sweeper emits alongside in-app
// notifications. When SMTP is not configured every send is a logged no-op so
// local environments work without a mail server.
type Mailer struct {
	cfg cfgpkg.SMTPConfig
	log *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Mailer {
	return &Mailer{cfg: cfg.SMTP, log: log}
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.cfg.Enabled() {
		m.log.Debugw("smtp disabled, skipping mail", "to", to, "subject", subject)
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) SendPremiumExpiryWarning(to, displayName string, expiresAt time.Time, daysLeft int) error {
	subject := fmt.Sprintf("Your Inkwell Premium expires in %d day(s)", daysLeft)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour Inkwell Premium plan expires on %s. Renew now to keep unlimited journaling and AI writing prompts.\n\n— The Inkwell team",
		displayName, expiresAt.Format("2006-01-02 15:04"),
	)
	return m.send(to, subject, body)
}

func (m *Mailer) SendPremiumExpired(to, displayName string) error {
	subject := "Your Inkwell Premium has expired"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour Inkwell Premium plan has expired and your account is back on the free tier. You can re-subscribe any time from the app.\n\n— The Inkwell team",
		displayName,
	)
	return m.send(to, subject, body)
}

var Module = fx.Options(
	fx.Provide(New),
)
