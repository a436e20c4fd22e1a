package domain

import "time"

// ServiceStatus is the outcome of a single connectivity probe against a downstream service.
type ServiceStatus struct {
	Name string
	OK   bool

	// Elapsed is nil when the probe could not be attempted.
	Elapsed *time.Duration
}

// HealthDetails is the aggregate of all probes performed for one request.
type HealthDetails struct {
	AppName  string
	Version  string
	Services []ServiceStatus
}
