package scheduler

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type recordingNotifier struct {
	summaries int
	reminders int
	weekly    int
	alerts    [][]models.Alert
}

func (n *recordingNotifier) SendMorningSummary(models.StatusReport, []models.Alert) error {
	n.summaries++
	return nil
}

func (n *recordingNotifier) SendReminder(models.StatusReport) error {
	n.reminders++
	return nil
}

func (n *recordingNotifier) SendAlerts(a []models.Alert) error {
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *recordingNotifier) SendWeeklyReport(models.WeekReport) error {
	n.weekly++
	return nil
}

func newScheduler(t *testing.T) (*Scheduler, *service.Service, *ledger.Memory, *recordingNotifier) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	mem := ledger.NewMemory(models.DefaultSettings(), decimal.NewFromInt(50))
	svc := service.NewService(mem, log, &config.Config{HMACSecret: "x"},
		service.WithClock(func() time.Time { return now }))
	n := &recordingNotifier{}
	return New(svc, n, time.UTC, log), svc, mem, n
}

func TestRegister(t *testing.T) {
	s, _, _, _ := newScheduler(t)
	if err := s.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := len(s.cron.Entries()); got != 5 {
		t.Fatalf("entries = %d, want 5", got)
	}
}

func TestSweepYesterday(t *testing.T) {
	s, svc, mem, _ := newScheduler(t)
	ctx := context.Background()
	if err := s.SweepYesterday(ctx); err != nil {
		t.Fatalf("SweepYesterday: %v", err)
	}
	v, _ := mem.DailyVariable(ctx, svc.Today().AddDate(0, 0, -1))
	if !v.IsZero() {
		t.Fatalf("yesterday = %s, want 0", v)
	}
}

func TestCheckAlerts_SendsOneHighAlert(t *testing.T) {
	s, svc, _, n := newScheduler(t)
	ctx := context.Background()

	if err := s.CheckAlerts(ctx); err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(n.alerts) != 0 {
		t.Fatalf("alerts sent with nothing firing: %v", n.alerts)
	}

	svc.RegisterFlow(ctx, service.FlowRequest{Kind: models.KindFixed, Amount: decimal.NewFromInt(500), Description: "aluguel"})
	if err := s.CheckAlerts(ctx); err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(n.alerts) != 1 || len(n.alerts[0]) != 1 {
		t.Fatalf("sent = %v, want one batch of one alert", n.alerts)
	}
	if n.alerts[0][0].Priority != models.PriorityHigh {
		t.Fatalf("priority = %s, want high", n.alerts[0][0].Priority)
	}
}

func TestNotifyingJobs(t *testing.T) {
	s, _, _, n := newScheduler(t)
	ctx := context.Background()
	for name, job := range map[string]func(context.Context) error{
		"morning":  s.MorningSummary,
		"reminder": s.EveningReminder,
		"weekly":   s.WeeklyReport,
	} {
		if err := job(ctx); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if n.summaries != 1 || n.reminders != 1 || n.weekly != 1 {
		t.Fatalf("notifier calls = %+v", n)
	}
}

func TestRecoveredPanicGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	mem := ledger.NewMemory(models.DefaultSettings(), decimal.NewFromInt(50))
	svc := service.NewService(mem, log, &config.Config{HMACSecret: "x"})
	s := New(svc, nil, time.UTC, log)

	if _, err := s.cron.AddFunc("@every 1h", func() { panic("job exploded") }); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	s.cron.Entries()[0].WrappedJob.Run()

	if !strings.Contains(buf.String(), "job exploded") {
		t.Fatalf("panic not logged through logrus; log = %q", buf.String())
	}
}
