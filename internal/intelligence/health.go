package intelligence

import (
	"fmt"
	"time"

	"github.com/massaflow/practice-api/internal/model"
)

const (
	healthBaseline = 50

	recentWindow   = 30 * 24 * time.Hour
	trailingWindow = 90 * 24 * time.Hour

	recentAttendedPoints = 10
	maxRecentPoints      = 30
	olderAttendedPoints  = 5
	maxOlderPoints       = 20

	noShowPenalty    = 15
	cancelledPenalty = 5
)

const dateFormat = "02/01/2006"

// ScoreClientHealth computes the bounded [0,100] health score for one
// client at the given instant. Attended visits in the last 30 days earn
// +10 each (capped at +30), visits 31-90 days ago earn +5 (capped at +20);
// every no-show in the trailing 90 days costs 15 and every client
// cancellation costs 5, uncapped. The factor lists explain the score and
// are never fed back into any computation.
func ScoreClientHealth(client *model.Client, appointments []*model.Appointment, now time.Time) *model.ClientHealth {
	recentCutoff := now.Add(-recentWindow)
	trailingCutoff := now.Add(-trailingWindow)

	score := healthBaseline
	var recentPoints, olderPoints int
	var positive, negative []string

	for _, appt := range appointments {
		if appt.ClientID != client.ID || appt.UserID != client.UserID {
			continue
		}
		when := appt.StartTime

		if appt.Status == model.AppointmentStatusAttended {
			if !when.Before(recentCutoff) {
				if recentPoints < maxRecentPoints {
					recentPoints += recentAttendedPoints
					positive = append(positive, fmt.Sprintf("Attended recently (%s)", when.Format(dateFormat)))
				}
			} else if !when.Before(trailingCutoff) {
				if olderPoints < maxOlderPoints {
					olderPoints += olderAttendedPoints
					positive = append(positive, fmt.Sprintf("Attended in the last 3 months (%s)", when.Format(dateFormat)))
				}
			}
		}

		if !when.Before(trailingCutoff) {
			switch appt.Status {
			case model.AppointmentStatusNoShow:
				score -= noShowPenalty
				negative = append(negative, fmt.Sprintf("No-show on %s", when.Format(dateFormat)))
			case model.AppointmentStatusCancelledByClient:
				score -= cancelledPenalty
				negative = append(negative, fmt.Sprintf("Cancelled by client on %s", when.Format(dateFormat)))
			}
		}
	}

	if recentPoints > maxRecentPoints {
		recentPoints = maxRecentPoints
	}
	if olderPoints > maxOlderPoints {
		olderPoints = maxOlderPoints
	}
	score += recentPoints + olderPoints

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if len(positive) == 0 {
		positive = []string{"No recent positive activity"}
	}
	if len(negative) == 0 {
		negative = []string{"No recent negative activity"}
	}

	return &model.ClientHealth{
		ClientID:        client.ID,
		ClientName:      client.Name,
		HealthScore:     score,
		PositiveFactors: positive,
		NegativeFactors: negative,
	}
}
