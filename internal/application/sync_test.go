package application

import (
	"context"
	"testing"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/memcache"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/quairpc"
)

type mockPublisher struct {
	blocks       []domain.BlockRecord
	transactions []domain.TxRecord
	wallets      []domain.WalletRecord
}

func (m *mockPublisher) PublishBlocks(ctx context.Context, blocks []domain.BlockRecord) error {
	m.blocks = append(m.blocks, blocks...)
	return nil
}

func (m *mockPublisher) PublishTransactions(ctx context.Context, transactions []domain.TxRecord) error {
	m.transactions = append(m.transactions, transactions...)
	return nil
}

func (m *mockPublisher) PublishWallet(ctx context.Context, wallet domain.WalletRecord) error {
	m.wallets = append(m.wallets, wallet)
	return nil
}

func TestUpdateLatestBlocks(t *testing.T) {
	chain := chainWithBlocks(30, 2)
	store := &mockStore{}
	cache := memcache.New()
	publisher := &mockPublisher{}
	syncer, err := NewSyncer(SyncerConfig{
		Chain:      chain,
		Store:      store,
		Cache:      cache,
		Publisher:  publisher,
		BlockCount: 5,
	})
	if err != nil {
		t.Fatalf("syncer: %v", err)
	}

	blocks, transactions, err := syncer.UpdateLatestBlocks(context.Background())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if blocks != 5 {
		t.Errorf("expected 5 blocks synced, got %d", blocks)
	}
	if transactions != 10 {
		t.Errorf("expected 10 transactions synced, got %d", transactions)
	}
	if len(store.blocks) != 5 || len(store.transactions) != 10 {
		t.Errorf("store got %d blocks and %d transactions", len(store.blocks), len(store.transactions))
	}
	if cached := cache.LatestBlocks(5); len(cached) != 5 {
		t.Errorf("cache got %d blocks", len(cached))
	}
	if len(publisher.blocks) != 5 || len(publisher.transactions) != 10 {
		t.Errorf("publisher got %d blocks and %d transactions", len(publisher.blocks), len(publisher.transactions))
	}
	if store.blocks[0].BlockNumber != 30 {
		t.Errorf("expected newest block first, got %d", store.blocks[0].BlockNumber)
	}
}

func TestUpdateLatestBlocksSkipsFailedBlocks(t *testing.T) {
	chain := chainWithBlocks(10, 0)
	delete(chain.blocks, uint64(9))
	store := &mockStore{}
	syncer, err := NewSyncer(SyncerConfig{Chain: chain, Store: store, BlockCount: 3})
	if err != nil {
		t.Fatalf("syncer: %v", err)
	}

	blocks, _, err := syncer.UpdateLatestBlocks(context.Background())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if blocks != 2 {
		t.Errorf("expected the missing block to be skipped, synced %d", blocks)
	}
}

func TestUpdateWalletData(t *testing.T) {
	reference := "0xAAA"
	chain := chainWithBlocks(10, 1)
	// Every generated transaction is from 0xaaa, so the wallet scan matches.
	chain.balance = "0xde0b6b3a7640000"
	store := &mockStore{}
	syncer, err := NewSyncer(SyncerConfig{
		Chain:           chain,
		Store:           store,
		ReferenceWallet: reference,
		BlockCount:      4,
	})
	if err != nil {
		t.Fatalf("syncer: %v", err)
	}

	if err := syncer.UpdateWalletData(context.Background()); err != nil {
		t.Fatalf("wallet update: %v", err)
	}
	if len(store.wallets) != 1 {
		t.Fatalf("expected 1 wallet upsert, got %d", len(store.wallets))
	}
	wallet := store.wallets[0]
	if wallet.Address != "0xaaa" {
		t.Errorf("expected lower-cased address, got %q", wallet.Address)
	}
	if wallet.Balance.String() != "1000000000000000000" {
		t.Errorf("unexpected balance %s", wallet.Balance)
	}
	if len(store.transactions) == 0 {
		t.Error("expected wallet history rows")
	}
	for _, tx := range store.transactions {
		if tx.Direction != domain.DirectionOutgoing {
			t.Errorf("expected outgoing direction for %s, got %q", tx.TxHash, tx.Direction)
		}
		if tx.WalletAddress != "0xaaa" {
			t.Errorf("expected wallet address on history row, got %q", tx.WalletAddress)
		}
	}
}

func TestSyncerRequiresChain(t *testing.T) {
	if _, err := NewSyncer(SyncerConfig{}); err == nil {
		t.Error("expected error without a chain client")
	}
}

var _ ChainClient = (*quairpc.Client)(nil)
