package intelligence

import (
	"github.com/massaflow/practice-api/internal/model"
)

// minutes of admin work saved per successful automated communication
const minutesSavedPerAutomation = 5

// AttendanceRate returns attended / (attended + no_show), or 0 when no
// relevant appointments exist.
func AttendanceRate(appointments []*model.Appointment) float64 {
	var attended, noShow int
	for _, appt := range appointments {
		switch appt.Status {
		case model.AppointmentStatusAttended:
			attended++
		case model.AppointmentStatusNoShow:
			noShow++
		}
	}

	relevant := attended + noShow
	if relevant == 0 {
		return 0
	}
	return float64(attended) / float64(relevant)
}

// RelevantAppointments counts the appointments entering the attendance
// rate (attended and no_show only).
func RelevantAppointments(appointments []*model.Appointment) int {
	var n int
	for _, appt := range appointments {
		if appt.Status == model.AppointmentStatusAttended || appt.Status == model.AppointmentStatusNoShow {
			n++
		}
	}
	return n
}

// TotalRevenueGenerated sums the base revenue of attended appointments.
func TotalRevenueGenerated(appointments []*model.Appointment) float64 {
	var total float64
	for _, appt := range appointments {
		if appt.Status == model.AppointmentStatusAttended && appt.BaseRevenue != nil {
			total += *appt.BaseRevenue
		}
	}
	return total
}

// AdminHoursSaved estimates admin time saved by automations: five minutes
// per successfully delivered communication.
func AdminHoursSaved(logs []*model.CommunicationLog) float64 {
	var successful int
	for _, entry := range logs {
		if entry.Status == model.DeliveryStatusSuccess {
			successful++
		}
	}
	return float64(successful*minutesSavedPerAutomation) / 60
}

// DashboardMetrics aggregates the per-user figures in one pass.
func DashboardMetrics(appointments []*model.Appointment, logs []*model.CommunicationLog) *model.DashboardMetrics {
	return &model.DashboardMetrics{
		AttendanceRate:        AttendanceRate(appointments),
		TotalRevenueGenerated: TotalRevenueGenerated(appointments),
		AdminHoursSaved:       AdminHoursSaved(logs),
		RelevantAppointments:  RelevantAppointments(appointments),
	}
}
