package server

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code      string         `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	RequestID string         `json:"requestId" yaml:"requestId"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Retryable bool           `json:"retryable" yaml:"retryable"`
}

// HealthResponse is returned by /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ReportResponse wraps the latest result with the time its query started.
type ReportResponse struct {
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	NodeCount int              `json:"nodeCount" yaml:"nodeCount"`
	Nodes     report.ResultSet `json:"nodes" yaml:"nodes"`
}

// ReportSource provides the latest query result. *report.Store implements it.
type ReportSource interface {
	Latest() (results report.ResultSet, at time.Time, ok bool)
}

// Config holds server configuration
type Config struct {
	// Identity reported on the root route
	Name    string
	Version string

	// Listen address
	Address string
	Port    int

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Logging
	LogLevel string
}
