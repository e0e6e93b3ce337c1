package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/memcache"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/normalize"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SourceNone is the degradation flag value when every tier came back empty.
const SourceNone = "none"

// Observer receives facade activity for the metrics endpoint.
type Observer interface {
	OnTierServed(query, tier string, count int)
	OnChainTip(tip uint64)
}

// Facade is the single never-fails query surface over the ordered data
// tiers. Every method returns a well-formed, possibly empty value; failures
// are logged and degrade to the next tier instead of propagating.
type Facade struct {
	chain      ChainClient
	store      Store
	cache      *memcache.Cache
	live       *LiveAggregator
	blockTiers []BlockTier
	txTiers    []TxTier
	reference  string
	observer   Observer
}

type FacadeConfig struct {
	Chain           ChainClient
	Store           Store     // nil when no persistent store is configured
	REST            RESTStore // nil unless the primary store is absent
	Cache           *memcache.Cache
	ReferenceWallet string
	Observer        Observer
}

func NewFacade(cfg FacadeConfig) (*Facade, error) {
	if cfg.Chain == nil {
		return nil, errors.New("chain client is required")
	}
	if cfg.Cache == nil {
		cfg.Cache = memcache.New()
	}

	live := NewLiveAggregator(cfg.Chain, cfg.ReferenceWallet)
	storeTier := StoreTier{Store: cfg.Store}
	restTier := RESTTier{Client: cfg.REST}
	memoryTier := MemoryTier{Cache: cfg.Cache}
	liveTier := LiveTier{Aggregator: live}

	return &Facade{
		chain:      cfg.Chain,
		store:      cfg.Store,
		cache:      cfg.Cache,
		live:       live,
		blockTiers: []BlockTier{storeTier, restTier, memoryTier, liveTier},
		txTiers:    []TxTier{storeTier, restTier, memoryTier, liveTier},
		reference:  cfg.ReferenceWallet,
		observer:   cfg.Observer,
	}, nil
}

// FetchLatestBlocks walks the tiers in order and returns between 0 and limit
// blocks plus the name of the tier that served them. An empty result with
// SourceNone is a legitimate terminal value.
func (f *Facade) FetchLatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, string) {
	if limit <= 0 {
		return nil, SourceNone
	}
	ctx, span := startFacadeSpan(ctx, "facade.FetchLatestBlocks", attribute.Int("limit", limit))
	defer span.End()

	for _, tier := range f.blockTiers {
		blocks, err := tier.TryBlocks(ctx, limit)
		if err != nil {
			if !errors.Is(err, ErrTierUnavailable) {
				slog.Warn("block tier failed", "tier", tier.Name(), "err", err)
			}
			continue
		}
		if len(blocks) == 0 {
			continue
		}
		if len(blocks) > limit {
			blocks = blocks[:limit]
		}
		if tier.Name() == "live" {
			f.cache.PutBlocks(blocks)
		}
		f.served("blocks", tier.Name(), len(blocks))
		span.SetAttributes(attribute.String("tier", tier.Name()))
		return blocks, tier.Name()
	}
	f.served("blocks", SourceNone, 0)
	return nil, SourceNone
}

// FetchLatestTransactions is the transaction counterpart of
// FetchLatestBlocks, with the live tier bounded by the scan ceiling.
func (f *Facade) FetchLatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, string) {
	if limit <= 0 {
		return nil, SourceNone
	}
	ctx, span := startFacadeSpan(ctx, "facade.FetchLatestTransactions", attribute.Int("limit", limit))
	defer span.End()

	for _, tier := range f.txTiers {
		transactions, err := tier.TryTransactions(ctx, limit)
		if err != nil {
			if !errors.Is(err, ErrTierUnavailable) {
				slog.Warn("transaction tier failed", "tier", tier.Name(), "err", err)
			}
			continue
		}
		if len(transactions) == 0 {
			continue
		}
		if len(transactions) > limit {
			transactions = transactions[:limit]
		}
		if tier.Name() == "live" {
			f.cache.PutTransactions(transactions)
		}
		f.served("transactions", tier.Name(), len(transactions))
		span.SetAttributes(attribute.String("tier", tier.Name()))
		return transactions, tier.Name()
	}
	f.served("transactions", SourceNone, 0)
	return nil, SourceNone
}

// BlockDetail resolves a single block: chain first, then the store, then the
// in-memory cache. When all miss but the number is at or below the known
// tip, a placeholder with the sentinel hash is synthesized so a plausible
// block never renders as a dead link.
func (f *Facade) BlockDetail(ctx context.Context, number uint64) *domain.BlockRecord {
	ctx, span := startFacadeSpan(ctx, "facade.BlockDetail", attribute.Int64("block.number", int64(number)))
	defer span.End()

	if payload, err := f.chain.BlockByNumber(ctx, number, true); err == nil {
		block := BlockFromPayload(number, payload)
		return &block
	} else {
		slog.Warn("block detail rpc miss", "block", number, "err", err)
	}

	if f.store != nil {
		if block, err := f.store.BlockByNumber(ctx, number); err != nil {
			slog.Warn("block detail store miss", "block", number, "err", err)
		} else if block != nil {
			return block
		}
	}
	if block, ok := f.cache.BlockByNumber(number); ok {
		return &block
	}

	tip, err := f.chain.LatestBlockNumber(ctx)
	if err != nil || number > tip {
		return nil
	}
	if f.observer != nil {
		f.observer.OnChainTip(tip)
	}
	return &domain.BlockRecord{
		BlockNumber: number,
		Hash:        domain.SentinelBlockHash,
	}
}

// TransactionDetail resolves a single transaction: chain (with receipt for
// gas used), then store, then cache. Absent everywhere means nil.
func (f *Facade) TransactionDetail(ctx context.Context, hash string) *domain.TxRecord {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" {
		return nil
	}
	ctx, span := startFacadeSpan(ctx, "facade.TransactionDetail", attribute.String("tx.hash", hash))
	defer span.End()

	if payload, err := f.chain.TransactionByHash(ctx, hash); err == nil && payload != nil {
		record := TxFromPayload(*payload, f.reference)
		if payload.BlockNumber != "" && payload.BlockNumber != "0x0" {
			number := normalize.HexToUint64(payload.BlockNumber)
			record.BlockNumber = &number
		}
		if receipt, err := f.chain.TransactionReceipt(ctx, hash); err == nil && receipt != nil {
			record.GasUsed = normalize.HexToUint64(receipt.GasUsed)
		} else if err != nil {
			slog.Warn("receipt fetch failed", "tx", hash, "err", err)
		}
		return &record
	} else if err != nil {
		slog.Warn("transaction detail rpc miss", "tx", hash, "err", err)
	}

	if f.store != nil {
		if record, err := f.store.TransactionByHash(ctx, hash); err != nil {
			slog.Warn("transaction detail store miss", "tx", hash, "err", err)
		} else if record != nil {
			return record
		}
	}
	if record, ok := f.cache.TransactionByHash(hash); ok {
		return &record
	}
	return nil
}

// WalletHistory lists recent transactions touching the address. The live
// scan is authoritative when it works; otherwise whatever the cache holds
// for the address is served so the endpoint degrades instead of failing.
func (f *Facade) WalletHistory(ctx context.Context, address string, limit int) ([]domain.TxRecord, string) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || limit <= 0 {
		return nil, SourceNone
	}
	ctx, span := startFacadeSpan(ctx, "facade.WalletHistory", attribute.String("wallet.address", address))
	defer span.End()

	records, err := f.live.WalletTransactions(ctx, address, limit)
	if err == nil && len(records) > 0 {
		f.served("wallet", "live", len(records))
		return records, "live"
	}
	if err != nil {
		slog.Warn("wallet live scan failed", "wallet", address, "err", err)
	}

	cached := f.cache.WalletTransactions(address, limit)
	if len(cached) > 0 {
		f.served("wallet", "memory", len(cached))
		return cached, "memory"
	}
	f.served("wallet", SourceNone, 0)
	return nil, SourceNone
}

func (f *Facade) served(query, tier string, count int) {
	if f.observer != nil {
		f.observer.OnTierServed(query, tier, count)
	}
}

func startFacadeSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("quaiscan/facade").Start(ctx, name, trace.WithAttributes(attrs...))
}
