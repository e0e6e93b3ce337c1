package httpapi

import (
	"sync"
	"time"
)

// Metrics collects serve counters for the /metrics endpoint. It satisfies
// both the facade and syncer observer interfaces.
type Metrics struct {
	mu            sync.RWMutex
	startTime     time.Time
	chainTip      uint64
	tierServes    map[string]uint64
	emptyServes   uint64
	syncCycles    uint64
	syncFailures  uint64
	lastSyncAt    time.Time
	lastSyncItems int
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime:  time.Now(),
		tierServes: make(map[string]uint64),
	}
}

func (m *Metrics) OnTierServed(query, tier string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if count == 0 {
		m.emptyServes++
		return
	}
	m.tierServes[query+"/"+tier]++
}

func (m *Metrics) OnChainTip(tip uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tip > m.chainTip {
		m.chainTip = tip
	}
}

func (m *Metrics) OnSyncCycle(blocks, transactions int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncCycles++
	if err != nil {
		m.syncFailures++
		return
	}
	m.lastSyncAt = time.Now()
	m.lastSyncItems = blocks + transactions
}

type Snapshot struct {
	StartTime     time.Time
	ChainTip      uint64
	TierServes    map[string]uint64
	EmptyServes   uint64
	SyncCycles    uint64
	SyncFailures  uint64
	LastSyncAt    time.Time
	LastSyncItems int
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	serves := make(map[string]uint64, len(m.tierServes))
	for key, value := range m.tierServes {
		serves[key] = value
	}
	return Snapshot{
		StartTime:     m.startTime,
		ChainTip:      m.chainTip,
		TierServes:    serves,
		EmptyServes:   m.emptyServes,
		SyncCycles:    m.syncCycles,
		SyncFailures:  m.syncFailures,
		LastSyncAt:    m.lastSyncAt,
		LastSyncItems: m.lastSyncItems,
	}
}
