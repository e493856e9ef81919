package ipc

import "hitqueue/internal/api"

// ServiceName is the RPC service the daemon registers.
const ServiceName = "HitQueue"

// RequestMeta holds fields shared by every call.
type RequestMeta struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct {
	RequestMeta
}

// StatusResponse represents combined daemon and scheduler status.
type StatusResponse = api.DaemonStatus

// EnqueueRequest submits one hit payload.
type EnqueueRequest struct {
	RequestMeta
	Payload string `json:"payload"`
}

// EnqueueResponse reports the stored hit.
type EnqueueResponse struct {
	Accepted bool   `json:"accepted"`
	ID       string `json:"id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// PeekRequest asks for up to Limit hits from the head.
type PeekRequest struct {
	RequestMeta
	Limit int `json:"limit"`
}

// PeekResponse contains the head of the queue in delivery order.
type PeekResponse struct {
	Hits []api.Hit `json:"hits"`
}

// ClearRequest drops every stored hit.
type ClearRequest struct {
	RequestMeta
}

// ClearResponse reports how many hits were pending before the clear.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// SuspendRequest pauses delivery.
type SuspendRequest struct {
	RequestMeta
}

// SuspendResponse reports the resulting scheduler state.
type SuspendResponse struct {
	State string `json:"state"`
}

// ResumeRequest restarts delivery.
type ResumeRequest struct {
	RequestMeta
}

// ResumeResponse reports whether delivery resumed.
type ResumeResponse struct {
	Resumed bool   `json:"resumed"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// PrivacyRequest changes the consent state. Status accepts anything
// privacy.Parse does.
type PrivacyRequest struct {
	RequestMeta
	Status string `json:"status"`
}

// PrivacyResponse echoes the applied status and resulting state.
type PrivacyResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Count  int    `json:"count"`
}

// DatabaseHealthRequest fetches database diagnostics.
type DatabaseHealthRequest struct {
	RequestMeta
}

// DatabaseHealthResponse carries database diagnostics.
type DatabaseHealthResponse = api.DatabaseHealth
