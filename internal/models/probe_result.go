package models

import "time"

// Host reachability as last observed by an authoritative discovery session.
const (
	HostStatusUnknown   = "unknown"
	HostStatusReachable = "reachable"
	HostStatusError     = "error"
)

// ProbeRecord is the settled outcome of one authoritative discovery session.
type ProbeRecord struct {
	SessionID   string    `json:"session_id"`
	Host        string    `json:"host"`
	URL         string    `json:"url"`
	Status      string    `json:"status"` // HostStatusReachable or HostStatusError
	TargetCount int       `json:"target_count"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    float64   `json:"duration,omitempty"` // in seconds
}

// Reachable reports whether the probe returned a target list.
func (r *ProbeRecord) Reachable() bool {
	if r == nil {
		return false
	}
	return r.Status == HostStatusReachable
}

// HistoryQuery filters probe history. Zero values match everything.
type HistoryQuery struct {
	Host  string
	Since time.Time
	Limit int
}
