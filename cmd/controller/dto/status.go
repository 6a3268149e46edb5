package dto

import "time"

// HealthResponseDTO 는 GET / 및 GET /health 응답이다.
type HealthResponseDTO struct {
	Status         string    `json:"status" example:"healthy"`
	BackendHealthy bool      `json:"backend_healthy"`
	Version        string    `json:"version" example:"1.0.0"`
	Timestamp      time.Time `json:"timestamp"`
}

// MetricsResponseDTO 는 GET /metrics 응답이다.
type MetricsResponseDTO struct {
	BackendHealthy           bool       `json:"backend_healthy"`
	LastHealthCheck          *time.Time `json:"last_health_check"`
	ActiveRateLimits         int        `json:"active_rate_limits"`
	ActiveSessions           int        `json:"active_sessions"`
	RequestsTotal            int64      `json:"requests_total"`
	RateLimitedTotal         int64      `json:"rate_limited_total"`
	BackendErrorsTotal       int64      `json:"backend_errors_total"`
	StreamInterruptionsTotal int64      `json:"stream_interruptions_total"`
	UptimeSeconds            int64      `json:"uptime_seconds"`
	Timestamp                time.Time  `json:"timestamp"`
}
