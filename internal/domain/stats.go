package domain

import "time"

// NetworkStatus describes how the stats snapshot was obtained.
type NetworkStatus string

const (
	StatusHealthy    NetworkStatus = "Healthy"
	StatusSyncing    NetworkStatus = "Syncing"
	StatusAPIOffline NetworkStatus = "API Offline"
	StatusError      NetworkStatus = "Error"
)

// StatsSnapshot is derived per request and never persisted.
type StatsSnapshot struct {
	TotalBlocks       uint64
	TotalTransactions uint64
	ActiveAddresses   uint64
	NetworkStatus     NetworkStatus
	Insight           string
	LastSynced        time.Time
}
