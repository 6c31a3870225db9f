package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/intelligence"
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/metrics"
)

// CycleReport summarizes one orchestration pass.
type CycleReport struct {
	StartedAt    time.Time               `json:"started_at"`
	Duration     time.Duration           `json:"duration"`
	Appointments int                     `json:"appointments"`
	Fired        map[model.RoutineID]int `json:"fired"`
	UsersChecked int                     `json:"users_checked"`
	HighRisk     int                     `json:"high_risk_clients"`
	Truncated    bool                    `json:"truncated"`
}

// Orchestrator runs the full automation pass: rule evaluation over every
// appointment, then per-user intelligence checks. It owns no state of its
// own and is safe to re-run; the caller prevents overlapping runs.
type Orchestrator struct {
	store        *repository.Store
	evaluator    *Evaluator
	intelligence *intelligence.Service
	clock        repository.Clock
	analytics    analytics.Sink
	logger       *logger.Logger
	metrics      *metrics.Metrics
	cfg          Config
}

func NewOrchestrator(store *repository.Store, evaluator *Evaluator, intel *intelligence.Service, clock repository.Clock, tracker analytics.Sink, log *logger.Logger, m *metrics.Metrics, cfg Config) *Orchestrator {
	return &Orchestrator{
		store:        store,
		evaluator:    evaluator,
		intelligence: intel,
		clock:        clock,
		analytics:    tracker,
		logger:       log.WithComponent("orchestrator"),
		metrics:      m,
		cfg:          cfg.withDefaults(),
	}
}

// RunCycle performs one pass. The snapshot of appointments is taken once
// up front so evaluation never sees a half-updated set; each appointment
// is then handled in isolation. The cycle carries a soft deadline: when
// it expires remaining appointments are left for the next run.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleReport, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CycleTimeout)
	defer cancel()

	now := o.clock.Now()
	report := &CycleReport{
		StartedAt: now,
		Fired:     make(map[model.RoutineID]int),
	}

	o.logger.Info("automation cycle started", "now", now.Format(time.RFC3339))

	appointments, err := o.store.Appointments.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot appointments: %w", err)
	}
	report.Appointments = len(appointments)

	for _, appt := range appointments {
		if ctx.Err() != nil {
			report.Truncated = true
			o.logger.Warn("cycle deadline reached, deferring remaining appointments")
			break
		}
		if routine := o.evaluator.Evaluate(ctx, now, appt); routine != "" {
			report.Fired[routine]++
		}
	}

	if !report.Truncated {
		o.runIntelligence(ctx, report)
	}

	report.Duration = o.clock.Now().Sub(now)
	o.metrics.CyclesTotal.Inc()
	o.metrics.CycleDuration.Observe(report.Duration.Seconds())

	o.analytics.Track("automation_cycle_completed", map[string]interface{}{
		"appointments": report.Appointments,
		"fired":        len(report.Fired),
		"duration_ms":  report.Duration.Milliseconds(),
		"truncated":    report.Truncated,
	}, "")

	o.logger.Info("automation cycle finished",
		"appointments", report.Appointments,
		"confirmations", report.Fired[model.RoutineConfirm24h],
		"reminders", report.Fired[model.RoutineReminder1h],
		"follow_ups", report.Fired[model.RoutineFollowUp24h],
		"duration", report.Duration.String(),
	)
	return report, nil
}

// runIntelligence performs the per-user scoring sweep: metric alerts plus
// the high-risk gauge. A failing user is logged and skipped.
func (o *Orchestrator) runIntelligence(ctx context.Context, report *CycleReport) {
	users, err := o.store.Users.List(ctx)
	if err != nil {
		o.logger.Error(err, "failed to list users for intelligence sweep")
		return
	}

	start := time.Now()
	var highRisk int
	for _, user := range users {
		if ctx.Err() != nil {
			report.Truncated = true
			return
		}
		if err := o.intelligence.CheckMetricsAndGenerateAlerts(ctx, user.ID); err != nil {
			o.logger.Error(err, "metrics check failed", "user_id", user.ID.String())
			continue
		}
		risks, err := o.intelligence.HighRiskClients(ctx, user.ID)
		if err != nil {
			o.logger.Error(err, "risk scoring failed", "user_id", user.ID.String())
			continue
		}
		highRisk += len(risks)
		report.UsersChecked++
	}

	report.HighRisk = highRisk
	o.metrics.HighRiskClients.Set(float64(highRisk))
	o.metrics.ScoringDuration.Observe(time.Since(start).Seconds())
}
