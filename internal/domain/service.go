package domain

// ServiceState represents the health of one external backend service.
type ServiceState string

// Possible service states as reported by a health probe.
const (
	// ServiceOnline means the probe reached the service and it answered
	// with a healthy response.
	ServiceOnline ServiceState = "online"

	// ServiceOffline means the probe could not reach the service at all
	// (connection failure or timeout).
	ServiceOffline ServiceState = "offline"

	// ServiceDegraded means the service was reachable but answered with an
	// error response.
	ServiceDegraded ServiceState = "degraded"
)

// ServiceStatus is a point-in-time health snapshot for one service. It is
// captured at check time and never cached beyond the current orchestration
// pass.
type ServiceStatus struct {
	ServiceName string       `json:"service_name"`
	State       ServiceState `json:"state"`
}
