package sqlite

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	return repo
}

func TestBlockRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	blocks := []domain.BlockRecord{
		{BlockNumber: 100, TxCount: 3, GasUsed: 21000, Timestamp: time.Unix(1700000000, 0).UTC(), Hash: "0xABC"},
		{BlockNumber: 99, TxCount: 1, GasUsed: 42000, Timestamp: time.Unix(1699999990, 0).UTC(), Hash: "0xdef"},
	}
	if err := repo.UpsertBlocks(ctx, blocks); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	latest, err := repo.LatestBlocks(ctx, 10)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(latest))
	}
	if latest[0].BlockNumber != 100 {
		t.Errorf("expected newest first, got %d", latest[0].BlockNumber)
	}
	if latest[0].Hash != "0xabc" {
		t.Errorf("expected lower-cased hash, got %q", latest[0].Hash)
	}
	if !latest[0].Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("timestamp not preserved: %v", latest[0].Timestamp)
	}
}

func TestBlockUpsertReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertBlocks(ctx, []domain.BlockRecord{{BlockNumber: 5, TxCount: 1}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.UpsertBlocks(ctx, []domain.BlockRecord{{BlockNumber: 5, TxCount: 7}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	block, err := repo.BlockByNumber(ctx, 5)
	if err != nil {
		t.Fatalf("block by number: %v", err)
	}
	if block == nil || block.TxCount != 7 {
		t.Errorf("expected replaced row, got %+v", block)
	}
	blocks, _, _, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if blocks != 1 {
		t.Errorf("expected 1 block after upsert, got %d", blocks)
	}
}

func TestUnknownTimestampRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertBlocks(ctx, []domain.BlockRecord{{BlockNumber: 1}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	block, err := repo.BlockByNumber(ctx, 1)
	if err != nil {
		t.Fatalf("block by number: %v", err)
	}
	if block == nil {
		t.Fatal("expected block")
	}
	if !block.Timestamp.IsZero() {
		t.Errorf("unknown timestamp must survive the round trip, got %v", block.Timestamp)
	}
}

func TestBlockByNumberMissing(t *testing.T) {
	repo := newTestRepo(t)

	block, err := repo.BlockByNumber(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block != nil {
		t.Errorf("expected nil for missing block, got %+v", block)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	number := uint64(77)
	entry := domain.TxRecord{
		TxHash:        "0xFEED",
		WalletAddress: "0xaaa",
		From:          "0xAAA",
		To:            "0xbbb",
		Value:         big.NewInt(0).Mul(big.NewInt(1e9), big.NewInt(2e9)),
		GasUsed:       21000,
		BlockNumber:   &number,
		Timestamp:     time.Unix(1700000100, 0).UTC(),
		Direction:     domain.DirectionOutgoing,
	}
	if err := repo.UpsertTransactions(ctx, []domain.TxRecord{entry}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.TransactionByHash(ctx, "0xFeed")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected transaction")
	}
	if got.From != "0xaaa" {
		t.Errorf("expected lower-cased sender, got %q", got.From)
	}
	if got.Value.String() != "2000000000000000000" {
		t.Errorf("value not preserved: %s", got.Value)
	}
	if got.BlockNumber == nil || *got.BlockNumber != 77 {
		t.Errorf("block number not preserved: %v", got.BlockNumber)
	}
	if got.Direction != domain.DirectionOutgoing {
		t.Errorf("direction not preserved: %q", got.Direction)
	}
}

func TestPendingTransactionBlockNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := domain.TxRecord{TxHash: "0x1", From: "0xa", To: "0xb"}
	if err := repo.UpsertTransactions(ctx, []domain.TxRecord{entry}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.TransactionByHash(ctx, "0x1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.BlockNumber != nil {
		t.Errorf("expected nil block number for pending tx, got %v", got.BlockNumber)
	}
}

func TestWalletUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	wallet := domain.WalletRecord{Address: "0xAAA", Balance: big.NewInt(500), LastUpdated: time.Unix(1700000000, 0).UTC()}
	if err := repo.UpsertWallet(ctx, wallet); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	wallet.Balance = big.NewInt(900)
	if err := repo.UpsertWallet(ctx, wallet); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	_, _, wallets, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if wallets != 1 {
		t.Errorf("expected 1 wallet row, got %d", wallets)
	}
}
