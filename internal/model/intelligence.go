package model

import "github.com/google/uuid"

// ClientRisk is the output of the cancellation-risk computation for one
// client. Counts are raw; CancellationRate is rounded to two decimals.
type ClientRisk struct {
	ClientID         uuid.UUID `json:"client_id"`
	ClientName       string    `json:"client_name"`
	CancellationRate float64   `json:"cancellation_rate"`
	AttendedCount    int       `json:"attended_count"`
	CancelledCount   int       `json:"cancelled_count"`
	RelevantTotal    int       `json:"relevant_total"`
}

// ClientHealth is the bounded [0,100] health score plus the explanatory
// factor strings. Factors are human-readable only, never fed back into
// any computation.
type ClientHealth struct {
	ClientID        uuid.UUID `json:"client_id"`
	ClientName      string    `json:"client_name"`
	HealthScore     int       `json:"health_score"`
	PositiveFactors []string  `json:"positive_factors"`
	NegativeFactors []string  `json:"negative_factors"`
}

// DashboardMetrics aggregates per-user figures shown on the dashboard and
// consumed by the alert generator.
type DashboardMetrics struct {
	AttendanceRate        float64 `json:"attendance_rate"`
	TotalRevenueGenerated float64 `json:"total_revenue_generated"`
	AdminHoursSaved       float64 `json:"admin_hours_saved"`
	RelevantAppointments  int     `json:"relevant_appointments"`
}
