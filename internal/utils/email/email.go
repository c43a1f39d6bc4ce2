package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/utils"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Transport delivers a composed message; SMTP in production
type Transport func(e *email.Email) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg       *config.Config
	logger    *logrus.Logger
	transport Transport
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{cfg: cfg, logger: logger}
	s.transport = s.sendSMTP
	return s
}

// WithTransport replaces SMTP delivery
func (s *Sender) WithTransport(t Transport) *Sender {
	s.transport = t
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}

func (s *Sender) send(subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.NotifyEmail}
	e.Subject = subject
	e.Text = []byte(body + "\nCash Flow Service\n")

	if err := s.transport(e); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", s.cfg.NotifyEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", s.cfg.NotifyEmail, e.Subject)
	return nil
}

// SendMorningSummary sends the day's status and any high-priority alerts
func (s *Sender) SendMorningSummary(st models.StatusReport, alerts []models.Alert) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning!\n\n")
	fmt.Fprintf(&b, "Balance: %s\n", utils.FormatBRL(st.Balance))
	fmt.Fprintf(&b, "Month performance: %s\n", utils.FormatBRL(st.Performance))
	fmt.Fprintf(&b, "Suggested limit for today: %s\n", utils.FormatBRL(st.DailyLimit))
	fmt.Fprintf(&b, "Status: %s", st.StatusLabel)
	if st.StatusMessage != "" {
		fmt.Fprintf(&b, " (%s)", st.StatusMessage)
	}
	b.WriteString("\n")
	if len(alerts) > 0 {
		b.WriteString("\nAlerts:\n")
		writeAlerts(&b, alerts)
	}
	return s.send(fmt.Sprintf("Daily summary for %s", st.Date.Format("02/01/2006")), b.String())
}

// SendReminder nudges the user to register the day's spending
func (s *Sender) SendReminder(st models.StatusReport) error {
	var b strings.Builder
	if st.TodaySpend.IsZero() {
		b.WriteString("You have not registered any spending today.\n")
	} else {
		fmt.Fprintf(&b, "Spent today so far: %s\n", utils.FormatBRL(st.TodaySpend))
	}
	fmt.Fprintf(&b, "Suggested limit: %s\n", utils.FormatBRL(st.DailyLimit))
	b.WriteString("Reply with a command such as \"mercado 87\" to register it.\n")
	return s.send("Did you register today's spending?", b.String())
}

// SendAlerts sends a list of alerts; an empty list sends nothing
func (s *Sender) SendAlerts(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	var b strings.Builder
	writeAlerts(&b, alerts)
	return s.send(fmt.Sprintf("%d financial alert(s)", len(alerts)), b.String())
}

// SendWeeklyReport sends the Monday-to-today summary
func (s *Sender) SendWeeklyReport(r models.WeekReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s to %s\n\n", r.PeriodStart.Format("02/01"), r.PeriodEnd.Format("02/01"))
	fmt.Fprintf(&b, "Planned spending: %s\n", utils.FormatBRL(r.PlannedTotal))
	fmt.Fprintf(&b, "Actual spending: %s\n", utils.FormatBRL(r.ActualTotal))
	fmt.Fprintf(&b, "Saved against plan: %s\n", utils.FormatBRL(r.PlannedVsActual))
	fmt.Fprintf(&b, "Week performance: %s\n", utils.FormatBRL(r.WeekPerformance))
	if len(r.TopExpenses) > 0 {
		b.WriteString("\nTop expenses:\n")
		for i, e := range r.TopExpenses {
			fmt.Fprintf(&b, "%d. %s %s (%s)\n", i+1, e.Date.Format("02/01"), e.Description, utils.FormatBRL(e.Magnitude()))
		}
	}
	return s.send("Weekly report", b.String())
}

func writeAlerts(b *strings.Builder, alerts []models.Alert) {
	for _, a := range alerts {
		fmt.Fprintf(b, "[%s] %s: %s\n", strings.ToUpper(string(a.Priority)), a.Title, a.Message)
	}
}
