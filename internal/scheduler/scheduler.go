// Package scheduler runs the recurring jobs: the nightly sweep, the morning
// summary, the evening reminder, the weekly report and the periodic alert check.
package scheduler

import (
	"context"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Cron specs in the configured time zone
const (
	SpecSweep    = "5 0 * * *"
	SpecMorning  = "0 8 * * *"
	SpecReminder = "0 20 * * *"
	SpecWeekly   = "0 9 * * 0"
	SpecAlerts   = "@every 6h"
)

const jobTimeout = time.Minute

// Notifier delivers job output to the user
type Notifier interface {
	SendMorningSummary(st models.StatusReport, alerts []models.Alert) error
	SendReminder(st models.StatusReport) error
	SendAlerts(alerts []models.Alert) error
	SendWeeklyReport(r models.WeekReport) error
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron     *cron.Cron
	svc      *service.Service
	notifier Notifier
	log      *logrus.Logger
}

// New creates a scheduler; a nil notifier only logs what would be sent
func New(svc *service.Service, notifier Notifier, loc *time.Location, log *logrus.Logger) *Scheduler {
	logger := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		svc:      svc,
		notifier: notifier,
		log:      log,
	}
}

// Register adds every job to the runner
func (s *Scheduler) Register() error {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{SpecSweep, "sweep", s.SweepYesterday},
		{SpecMorning, "morning summary", s.MorningSummary},
		{SpecReminder, "reminder", s.EveningReminder},
		{SpecWeekly, "weekly report", s.WeeklyReport},
		{SpecAlerts, "alert check", s.CheckAlerts},
	}
	for _, j := range jobs {
		j := j
		if _, err := s.cron.AddFunc(j.spec, func() { s.run(j.name, j.run) }); err != nil {
			return err
		}
		s.log.Infof("Scheduled %s at %q", j.name, j.spec)
	}
	return nil
}

// Start runs the jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context done when running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Errorf("Job %s failed: %v", name, err)
		return
	}
	s.log.Infof("Job %s finished in %s", name, time.Since(start))
}

// SweepYesterday zeroes yesterday's placeholder if nothing was registered
func (s *Scheduler) SweepYesterday(ctx context.Context) error {
	res := s.svc.SweepYesterday(ctx)
	if !res.Success {
		return res.Err
	}
	return nil
}

// MorningSummary sends the status and the high-priority alerts
func (s *Scheduler) MorningSummary(ctx context.Context) error {
	st := s.svc.ComputeStatus(ctx, "")
	if !st.Success {
		return st.Err
	}
	alerts := s.svc.EvaluateAlerts(ctx)
	if !alerts.Success {
		return alerts.Err
	}
	high := highPriority(alerts.Data)
	if s.notifier == nil {
		s.log.Infof("Morning summary: balance %s, %d high alerts", st.Data.Balance.StringFixed(2), len(high))
		return nil
	}
	return s.notifier.SendMorningSummary(st.Data, high)
}

// EveningReminder asks the user to register the day's spending
func (s *Scheduler) EveningReminder(ctx context.Context) error {
	st := s.svc.ComputeStatus(ctx, "")
	if !st.Success {
		return st.Err
	}
	if s.notifier == nil {
		s.log.Infof("Reminder: spent %s today", st.Data.TodaySpend.StringFixed(2))
		return nil
	}
	return s.notifier.SendReminder(st.Data)
}

// WeeklyReport sends the Monday-to-today summary
func (s *Scheduler) WeeklyReport(ctx context.Context) error {
	rep := s.svc.ComputeWeekReport(ctx)
	if !rep.Success {
		return rep.Err
	}
	if s.notifier == nil {
		s.log.Infof("Weekly report: actual %s of planned %s", rep.Data.ActualTotal.StringFixed(2), rep.Data.PlannedTotal.StringFixed(2))
		return nil
	}
	return s.notifier.SendWeeklyReport(rep.Data)
}

// CheckAlerts sends the first high-priority alert, if any, so the user is not flooded
func (s *Scheduler) CheckAlerts(ctx context.Context) error {
	alerts := s.svc.EvaluateAlerts(ctx)
	if !alerts.Success {
		return alerts.Err
	}
	high := highPriority(alerts.Data)
	if len(high) == 0 {
		return nil
	}
	if s.notifier == nil {
		s.log.Warnf("Alert: %s", high[0].Title)
		return nil
	}
	return s.notifier.SendAlerts(high[:1])
}

func highPriority(alerts []models.Alert) []models.Alert {
	var out []models.Alert
	for _, a := range alerts {
		if a.Priority == models.PriorityHigh {
			out = append(out, a)
		}
	}
	return out
}
