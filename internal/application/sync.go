package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/memcache"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/normalize"
)

// Publisher is the record stream sink. *kafka.Producer satisfies it; a nil
// Publisher disables streaming.
type Publisher interface {
	PublishBlocks(ctx context.Context, blocks []domain.BlockRecord) error
	PublishTransactions(ctx context.Context, transactions []domain.TxRecord) error
	PublishWallet(ctx context.Context, wallet domain.WalletRecord) error
}

// SyncObserver is notified after each cycle for the metrics endpoint.
type SyncObserver interface {
	OnSyncCycle(blocks, transactions int, err error)
}

// Syncer keeps the store and the in-memory cache warm by copying recent
// chain state on a fixed interval. It is the only writer of the store.
type Syncer struct {
	chain     ChainClient
	store     Store
	cache     *memcache.Cache
	publisher Publisher
	observer  SyncObserver
	reference string
	batch     int
}

type SyncerConfig struct {
	Chain           ChainClient
	Store           Store // nil when running cache-only
	Cache           *memcache.Cache
	Publisher       Publisher
	Observer        SyncObserver
	ReferenceWallet string
	BlockCount      int
}

func NewSyncer(cfg SyncerConfig) (*Syncer, error) {
	if cfg.Chain == nil {
		return nil, fmt.Errorf("chain client is required")
	}
	if cfg.Cache == nil {
		cfg.Cache = memcache.New()
	}
	if cfg.BlockCount <= 0 {
		cfg.BlockCount = 10
	}
	return &Syncer{
		chain:     cfg.Chain,
		store:     cfg.Store,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		reference: strings.ToLower(strings.TrimSpace(cfg.ReferenceWallet)),
		batch:     cfg.BlockCount,
	}, nil
}

// Run executes one cycle immediately and then on every interval tick until
// the context is cancelled.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Syncer) cycle(ctx context.Context) {
	blocks, transactions, err := s.UpdateLatestBlocks(ctx)
	if err != nil {
		slog.Warn("block sync cycle failed", "err", err)
	}
	if walletErr := s.UpdateWalletData(ctx); walletErr != nil {
		slog.Warn("wallet sync cycle failed", "wallet", s.reference, "err", walletErr)
	}
	if s.observer != nil {
		s.observer.OnSyncCycle(blocks, transactions, err)
	}
}

// UpdateLatestBlocks walks back from the tip once, deriving block and
// transaction records from the same payloads, then persists, caches, and
// publishes them. It returns how many of each were synced.
func (s *Syncer) UpdateLatestBlocks(ctx context.Context) (int, int, error) {
	tip, err := s.chain.LatestBlockNumber(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch tip: %w", err)
	}

	blocks := make([]domain.BlockRecord, 0, s.batch)
	var transactions []domain.TxRecord
	for i := 0; i < s.batch; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		number := tip - uint64(i)
		payload, err := s.chain.BlockByNumber(ctx, number, true)
		if err != nil {
			slog.Warn("sync block fetch failed", "block", number, "err", err)
			if number == 0 {
				break
			}
			continue
		}
		block := BlockFromPayload(number, payload)
		blocks = append(blocks, block)
		for _, tx := range payload.Transactions {
			if tx.Hash == "" || tx.From == "" || tx.To == "" {
				continue
			}
			record := TxFromPayload(tx, s.reference)
			record.BlockNumber = &block.BlockNumber
			record.Timestamp = block.Timestamp
			if record.Direction != domain.DirectionExternal {
				record.WalletAddress = s.reference
			}
			transactions = append(transactions, record)
		}
		if number == 0 {
			break
		}
	}
	if len(blocks) == 0 {
		return 0, 0, nil
	}

	s.cache.PutBlocks(blocks)
	s.cache.PutTransactions(transactions)

	if s.store != nil {
		if err := s.store.UpsertBlocks(ctx, blocks); err != nil {
			return len(blocks), len(transactions), fmt.Errorf("upsert blocks: %w", err)
		}
		if err := s.store.UpsertTransactions(ctx, transactions); err != nil {
			return len(blocks), len(transactions), fmt.Errorf("upsert transactions: %w", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishBlocks(ctx, blocks); err != nil {
			slog.Warn("publish blocks failed", "err", err)
		}
		if err := s.publisher.PublishTransactions(ctx, transactions); err != nil {
			slog.Warn("publish transactions failed", "err", err)
		}
	}
	return len(blocks), len(transactions), nil
}

// UpdateWalletData refreshes the reference wallet's balance and recent
// history. The balance write is atomic per record; a failed history scan
// leaves the previous rows in place.
func (s *Syncer) UpdateWalletData(ctx context.Context) error {
	if s.reference == "" {
		return nil
	}

	raw, err := s.chain.Balance(ctx, s.reference)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}
	wallet := domain.WalletRecord{
		Address:     s.reference,
		Balance:     normalize.ParseBigInt(raw),
		LastUpdated: time.Now().UTC(),
	}
	if s.store != nil {
		if err := s.store.UpsertWallet(ctx, wallet); err != nil {
			return fmt.Errorf("upsert wallet: %w", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishWallet(ctx, wallet); err != nil {
			slog.Warn("publish wallet failed", "wallet", s.reference, "err", err)
		}
	}

	live := NewLiveAggregator(s.chain, s.reference)
	history, err := live.WalletTransactions(ctx, s.reference, s.batch)
	if err != nil {
		return fmt.Errorf("scan wallet history: %w", err)
	}
	if len(history) == 0 {
		return nil
	}
	s.cache.PutTransactions(history)
	if s.store != nil {
		if err := s.store.UpsertTransactions(ctx, history); err != nil {
			return fmt.Errorf("upsert wallet history: %w", err)
		}
	}
	return nil
}
