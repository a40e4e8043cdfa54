// Package email sends best-effort league notifications over SMTP.
// Delivery failures are reported to the caller but never block the
// approval flow.
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"league-backend/internal/models"
)

type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (c *Config) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

func (c *Config) send(to []string, subject, body string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("email not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		c.From, strings.Join(to, ", "), subject, body,
	)

	addr := c.Host + ":" + c.Port

	var auth smtp.Auth
	if c.User != "" {
		auth = smtp.PlainAuth("", c.User, c.Pass, c.Host)
	}

	return smtp.SendMail(addr, auth, c.From, to, []byte(msg))
}

// Notifier sends approval-flow notifications to a fixed recipient list,
// typically the commissioners. It satisfies the league service's
// notifier interface.
type Notifier struct {
	cfg        Config
	leagueName string
	recipients []string
}

func NewNotifier(cfg Config, leagueName string, recipients []string) *Notifier {
	return &Notifier{cfg: cfg, leagueName: leagueName, recipients: recipients}
}

func (n *Notifier) ScoresSubmitted(m *models.Match, submittedByTeam string) error {
	subject := fmt.Sprintf("%s: week %d scores submitted", n.leagueName, m.Week)
	body := fmt.Sprintf(
		"Scores for %s vs %s (week %d) were submitted and are awaiting approval by the opposing team.",
		m.Team1Name, m.Team2Name, m.Week,
	)
	return n.cfg.send(n.recipients, subject, body)
}

func (n *Notifier) ScoresDisputed(m *models.Match, note string) error {
	subject := fmt.Sprintf("%s: week %d scores disputed", n.leagueName, m.Week)
	body := fmt.Sprintf(
		"Scores for %s vs %s (week %d) were disputed.\r\n\r\nNote: %s",
		m.Team1Name, m.Team2Name, m.Week, note,
	)
	return n.cfg.send(n.recipients, subject, body)
}
