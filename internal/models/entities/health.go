package entities

import "time"

const (
	HealthOK   = "ok"
	HealthDown = "down"
)

// ServiceStatus is the result of checking one dependency.
type ServiceStatus struct {
	Status    string `json:"status"`
	Details   string `json:"details"`
	LatencyMS int64  `json:"latency_ms"`
}

// NewServiceStatus builds the status of a check that ran for took. A non-nil err marks it down.
func NewServiceStatus(err error, okDetails string, took time.Duration) ServiceStatus {
	s := ServiceStatus{Status: HealthOK, Details: okDetails, LatencyMS: took.Milliseconds()}
	if err != nil {
		s.Status = HealthDown
		s.Details = err.Error()
	}
	return s
}

// HealthCheckResponse is the body of GET /health. Down lists the failing
// dependencies; Status is "down" as soon as one of them is.
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	Down     []string                 `json:"down,omitempty"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}

func NewHealthCheckResponse(upSince time.Time) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:   HealthOK,
		Services: make(map[string]ServiceStatus),
		UpSince:  upSince,
		Uptime:   time.Since(upSince).Round(time.Second).String(),
	}
}

// Add records one dependency, in the order the checks ran.
func (r *HealthCheckResponse) Add(name string, status ServiceStatus) {
	r.Services[name] = status
	if status.Status != HealthOK {
		r.Status = HealthDown
		r.Down = append(r.Down, name)
	}
}
