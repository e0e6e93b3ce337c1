package domain

import (
	"math/big"
	"time"
)

// WalletRecord holds the last observed balance for an address.
type WalletRecord struct {
	Address     string
	Balance     *big.Int
	LastUpdated time.Time
}
