package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Hit describes a stored record in a transport-friendly format.
type Hit struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt,omitempty"`
	Payload   string `json:"payload"`
}

// SchedulerStatus summarizes delivery state.
type SchedulerStatus struct {
	Queue         string `json:"queue"`
	State         string `json:"state"`
	Pending       int    `json:"pending"`
	InFlight      bool   `json:"inFlight"`
	InFlightID    string `json:"inFlightId,omitempty"`
	RetryPending  bool   `json:"retryPending"`
	NextRetry     string `json:"nextRetry,omitempty"`
	Attempts      int    `json:"attempts"`
	Deliveries    uint64 `json:"deliveries"`
	Failures      uint64 `json:"failures"`
	DuplicateAcks uint64 `json:"duplicateAcks,omitempty"`
	LastDelivery  string `json:"lastDelivery,omitempty"`
	LastFailure   string `json:"lastFailure,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running     bool            `json:"running"`
	PID         int             `json:"pid"`
	Privacy     string          `json:"privacy"`
	Endpoint    string          `json:"endpoint"`
	QueueDBPath string          `json:"queueDbPath"`
	APIAddress  string          `json:"apiAddress,omitempty"`
	StoreResets int             `json:"storeResets"`
	Scheduler   SchedulerStatus `json:"scheduler"`
}

// HitAccepted is returned when a hit has been durably queued.
type HitAccepted struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

// HitListResponse wraps the head of the queue.
type HitListResponse struct {
	Hits []Hit `json:"hits"`
}

// DatabaseHealth mirrors queue.DatabaseHealth for transport.
type DatabaseHealth struct {
	DBPath            string   `json:"dbPath"`
	DatabaseExists    bool     `json:"databaseExists"`
	DatabaseReadable  bool     `json:"databaseReadable"`
	DirectoryWritable bool     `json:"directoryWritable"`
	SchemaVersion     int      `json:"schemaVersion"`
	TableExists       bool     `json:"tableExists"`
	ColumnsPresent    []string `json:"columnsPresent,omitempty"`
	MissingColumns    []string `json:"missingColumns,omitempty"`
	IntegrityCheck    bool     `json:"integrityCheck"`
	TotalItems        int      `json:"totalItems"`
	Resets            int      `json:"resets"`
	Error             string   `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx HTTP API reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
