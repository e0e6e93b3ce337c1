package domain

import "time"

// SentinelBlockHash marks a synthesized placeholder block whose real hash
// could not be fetched from any source.
const SentinelBlockHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

// BlockRecord is the normalized view of a chain block kept by the dashboard.
// A zero Timestamp means the header time could not be decoded.
type BlockRecord struct {
	BlockNumber uint64
	TxCount     uint64
	GasUsed     uint64
	Timestamp   time.Time
	Hash        string
}

// Placeholder reports whether the record was synthesized rather than fetched.
func (b BlockRecord) Placeholder() bool {
	return b.Hash == SentinelBlockHash
}
