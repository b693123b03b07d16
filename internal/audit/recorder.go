package audit

import "time"

// Recorder is the fire-and-forget facade handlers and middleware use to emit
// events. All methods are nil-safe no-ops so wiring can omit the pipeline
// (e.g. when no sink URL is configured) without sprinkling nil checks.
type Recorder struct {
	d *Dispatcher
}

// NewRecorder returns a Recorder emitting into d. d may be nil.
func NewRecorder(d *Dispatcher) *Recorder {
	return &Recorder{d: d}
}

// API records one handled request on the operational queue.
func (r *Recorder) API(ri RequestInfo, status int, latency time.Duration) {
	if r == nil || r.d == nil {
		return
	}
	r.d.EnqueueAPI(NewAPIEvent(ri, status, latency))
}

// Security records an auth-relevant transition on the security queue.
func (r *Recorder) Security(ri RequestInfo, action string) {
	if r == nil || r.d == nil {
		return
	}
	r.d.EnqueueAudit(NewSecurityEvent(ri, action))
}

// NewDevice records a first-seen device login on the security queue.
func (r *Recorder) NewDevice(ri RequestInfo, userID, deviceID string) {
	if r == nil || r.d == nil {
		return
	}
	r.d.EnqueueAudit(NewDeviceEvent(userID, deviceID, ri.ClientIP, ri.TraceID))
}
