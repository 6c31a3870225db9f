// Package intelligence derives client-level risk and health signals from
// appointment history and turns them into proactive therapist tasks.
// Scoring is pure and stateless: every call recomputes from full history,
// so identical input always yields identical output.
package intelligence

import (
	"math"

	"github.com/massaflow/practice-api/internal/model"
)

const (
	DefaultCancellationThreshold = 0.3
	DefaultMinAppointments       = 3
)

// RiskConfig tunes the cancellation-risk classification.
type RiskConfig struct {
	CancellationThreshold float64
	MinAppointments       int
}

func (c RiskConfig) withDefaults() RiskConfig {
	if c.CancellationThreshold == 0 {
		c.CancellationThreshold = DefaultCancellationThreshold
	}
	if c.MinAppointments == 0 {
		c.MinAppointments = DefaultMinAppointments
	}
	return c
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScoreClientRisk classifies one client from their appointment history.
// Clients with fewer than MinAppointments relevant appointments are
// unscored: the second return is false and no risk is reported.
func ScoreClientRisk(client *model.Client, appointments []*model.Appointment, cfg RiskConfig) (*model.ClientRisk, bool) {
	cfg = cfg.withDefaults()

	var attended, cancelled int
	for _, appt := range appointments {
		if appt.ClientID != client.ID || appt.UserID != client.UserID {
			continue
		}
		switch appt.Status {
		case model.AppointmentStatusAttended:
			attended++
		case model.AppointmentStatusCancelledByClient:
			cancelled++
		}
	}

	relevant := attended + cancelled
	if relevant < cfg.MinAppointments {
		return nil, false
	}

	rate := float64(cancelled) / float64(relevant)
	if rate < cfg.CancellationThreshold {
		return nil, false
	}

	return &model.ClientRisk{
		ClientID:         client.ID,
		ClientName:       client.Name,
		CancellationRate: round2(rate),
		AttendedCount:    attended,
		CancelledCount:   cancelled,
		RelevantTotal:    relevant,
	}, true
}

// IdentifyHighRiskClients scores every client of one user and returns only
// those meeting the threshold with a sufficient sample.
func IdentifyHighRiskClients(clients []*model.Client, appointments []*model.Appointment, cfg RiskConfig) []*model.ClientRisk {
	var highRisk []*model.ClientRisk
	for _, client := range clients {
		if risk, ok := ScoreClientRisk(client, appointments, cfg); ok {
			highRisk = append(highRisk, risk)
		}
	}
	return highRisk
}
