package domain

import (
	"math/big"
	"time"
)

// Direction classifies a transaction relative to the reference wallet.
type Direction string

const (
	DirectionIncoming     Direction = "incoming"
	DirectionOutgoing     Direction = "outgoing"
	DirectionSelfTransfer Direction = "self"
	DirectionExternal     Direction = "external"
)

// TxRecord is the normalized view of a chain transaction. Value is the
// non-negative amount in the smallest unit; BlockNumber is nil for pending
// transactions. From and To are stored lower-cased.
type TxRecord struct {
	TxHash        string
	WalletAddress string
	From          string
	To            string
	Value         *big.Int
	GasUsed       uint64
	BlockNumber   *uint64
	Timestamp     time.Time
	Direction     Direction
}
