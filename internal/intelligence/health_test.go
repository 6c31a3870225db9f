package intelligence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massaflow/practice-api/internal/model"
)

func TestScoreClientHealthMixedHistory(t *testing.T) {
	client := riskClient()
	appts := []*model.Appointment{
		apptFor(client, model.AppointmentStatusAttended, scoreNow.Add(-10*24*time.Hour)),
		apptFor(client, model.AppointmentStatusNoShow, scoreNow.Add(-20*24*time.Hour)),
		apptFor(client, model.AppointmentStatusAttended, scoreNow.Add(-60*24*time.Hour)),
		apptFor(client, model.AppointmentStatusCancelledByClient, scoreNow.Add(-70*24*time.Hour)),
	}

	// 50 + 10 (recent) + 5 (older) - 15 (no-show) - 5 (cancellation) = 45
	health := ScoreClientHealth(client, appts, scoreNow)
	assert.Equal(t, 45, health.HealthScore)
	assert.Len(t, health.PositiveFactors, 2)
	assert.Len(t, health.NegativeFactors, 2)
}

func TestScoreClientHealthEmptyHistory(t *testing.T) {
	client := riskClient()

	health := ScoreClientHealth(client, nil, scoreNow)
	assert.Equal(t, 50, health.HealthScore)
	assert.Equal(t, []string{"No recent positive activity"}, health.PositiveFactors)
	assert.Equal(t, []string{"No recent negative activity"}, health.NegativeFactors)
}

func TestScoreClientHealthRecentPointsCapped(t *testing.T) {
	client := riskClient()
	var appts []*model.Appointment
	for i := 1; i <= 5; i++ {
		appts = append(appts, apptFor(client, model.AppointmentStatusAttended, scoreNow.Add(-time.Duration(i)*24*time.Hour)))
	}

	// Five recent visits still earn at most +30.
	health := ScoreClientHealth(client, appts, scoreNow)
	assert.Equal(t, 80, health.HealthScore)
}

func TestScoreClientHealthClampedToZero(t *testing.T) {
	client := riskClient()
	var appts []*model.Appointment
	for i := 1; i <= 6; i++ {
		appts = append(appts, apptFor(client, model.AppointmentStatusNoShow, scoreNow.Add(-time.Duration(i)*24*time.Hour)))
	}

	health := ScoreClientHealth(client, appts, scoreNow)
	assert.Equal(t, 0, health.HealthScore)
}

func TestScoreClientHealthClampedToHundred(t *testing.T) {
	client := riskClient()
	var appts []*model.Appointment
	for i := 1; i <= 3; i++ {
		appts = append(appts, apptFor(client, model.AppointmentStatusAttended, scoreNow.Add(-time.Duration(i)*24*time.Hour)))
	}
	for i := 35; i <= 75; i += 10 {
		appts = append(appts, apptFor(client, model.AppointmentStatusAttended, scoreNow.Add(-time.Duration(i)*24*time.Hour)))
	}

	// 50 + 30 + 20 caps exactly at 100; events outside 90 days change nothing.
	appts = append(appts, apptFor(client, model.AppointmentStatusNoShow, scoreNow.Add(-120*24*time.Hour)))
	health := ScoreClientHealth(client, appts, scoreNow)
	assert.Equal(t, 100, health.HealthScore)
}

func TestScoreClientHealthDeterministic(t *testing.T) {
	client := riskClient()
	appts := []*model.Appointment{
		apptFor(client, model.AppointmentStatusAttended, scoreNow.Add(-5*24*time.Hour)),
		apptFor(client, model.AppointmentStatusCancelledByClient, scoreNow.Add(-40*24*time.Hour)),
	}

	first := ScoreClientHealth(client, appts, scoreNow)
	second := ScoreClientHealth(client, appts, scoreNow)
	require.Equal(t, first, second)
}
