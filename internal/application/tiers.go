package application

import (
	"context"
	"errors"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/memcache"
)

// ErrTierUnavailable marks a tier that is structurally absent (never
// constructed), as opposed to one that failed or came back empty at runtime.
var ErrTierUnavailable = errors.New("tier unavailable")

// Store is the persistent store surface the facade and syncer depend on.
// Both the mysql and sqlite adapters satisfy it.
type Store interface {
	UpsertBlocks(ctx context.Context, blocks []domain.BlockRecord) error
	UpsertTransactions(ctx context.Context, transactions []domain.TxRecord) error
	UpsertWallet(ctx context.Context, wallet domain.WalletRecord) error
	LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error)
	LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error)
	BlockByNumber(ctx context.Context, number uint64) (*domain.BlockRecord, error)
	TransactionByHash(ctx context.Context, hash string) (*domain.TxRecord, error)
	Counts(ctx context.Context) (blocks, transactions, wallets uint64, err error)
	Ping(ctx context.Context) error
}

// RESTStore is the read-only surface of the store's plain HTTP fallback.
type RESTStore interface {
	LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error)
	LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error)
}

// BlockTier is one ordered data source for latest-block queries. A tier
// returns its records, or an empty slice for a verified empty, or an error
// when it failed; ErrTierUnavailable means it was never constructed.
type BlockTier interface {
	Name() string
	TryBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error)
}

// TxTier is the transaction counterpart of BlockTier.
type TxTier interface {
	Name() string
	TryTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error)
}

// StoreTier serves from the persistent store adapter.
type StoreTier struct {
	Store Store
}

func (t StoreTier) Name() string { return "store" }

func (t StoreTier) TryBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	if t.Store == nil {
		return nil, ErrTierUnavailable
	}
	return t.Store.LatestBlocks(ctx, limit)
}

func (t StoreTier) TryTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	if t.Store == nil {
		return nil, ErrTierUnavailable
	}
	return t.Store.LatestTransactions(ctx, limit)
}

// RESTTier serves from the store's HTTP query surface. It is only wired in
// when the primary adapter could not be constructed.
type RESTTier struct {
	Client RESTStore
}

func (t RESTTier) Name() string { return "rest" }

func (t RESTTier) TryBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	if t.Client == nil {
		return nil, ErrTierUnavailable
	}
	return t.Client.LatestBlocks(ctx, limit)
}

func (t RESTTier) TryTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	if t.Client == nil {
		return nil, ErrTierUnavailable
	}
	return t.Client.LatestTransactions(ctx, limit)
}

// MemoryTier serves from the process-lifetime fallback cache.
type MemoryTier struct {
	Cache *memcache.Cache
}

func (t MemoryTier) Name() string { return "memory" }

func (t MemoryTier) TryBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	if t.Cache == nil {
		return nil, ErrTierUnavailable
	}
	return t.Cache.LatestBlocks(limit), nil
}

func (t MemoryTier) TryTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	if t.Cache == nil {
		return nil, ErrTierUnavailable
	}
	return t.Cache.LatestTransactions(limit), nil
}

// LiveTier reconstructs records straight from the chain.
type LiveTier struct {
	Aggregator *LiveAggregator
}

func (t LiveTier) Name() string { return "live" }

func (t LiveTier) TryBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	if t.Aggregator == nil {
		return nil, ErrTierUnavailable
	}
	return t.Aggregator.LatestBlocks(ctx, limit)
}

func (t LiveTier) TryTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	if t.Aggregator == nil {
		return nil, ErrTierUnavailable
	}
	return t.Aggregator.LatestTransactions(ctx, limit)
}
