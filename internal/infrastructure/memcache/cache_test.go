package memcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

func TestLatestBlocksOrder(t *testing.T) {
	cache := New()
	cache.PutBlocks([]domain.BlockRecord{
		{BlockNumber: 3},
		{BlockNumber: 7},
		{BlockNumber: 5},
	})

	blocks := cache.LatestBlocks(2)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].BlockNumber != 7 || blocks[1].BlockNumber != 5 {
		t.Errorf("expected descending order, got %d, %d", blocks[0].BlockNumber, blocks[1].BlockNumber)
	}
}

func TestPutBlocksReplaces(t *testing.T) {
	cache := New()
	cache.PutBlocks([]domain.BlockRecord{{BlockNumber: 1, TxCount: 2}})
	cache.PutBlocks([]domain.BlockRecord{{BlockNumber: 1, TxCount: 9}})

	block, ok := cache.BlockByNumber(1)
	if !ok {
		t.Fatal("expected block 1")
	}
	if block.TxCount != 9 {
		t.Errorf("expected replacement, got tx count %d", block.TxCount)
	}
}

func TestTransactionLookupCaseInsensitive(t *testing.T) {
	cache := New()
	cache.PutTransactions([]domain.TxRecord{{TxHash: "0xAbCd"}})

	if _, ok := cache.TransactionByHash("0xABCD"); !ok {
		t.Error("expected case-insensitive hash lookup")
	}
}

func TestLatestTransactionsOrder(t *testing.T) {
	cache := New()
	base := time.Unix(1700000000, 0).UTC()
	cache.PutTransactions([]domain.TxRecord{
		{TxHash: "0x1", Timestamp: base},
		{TxHash: "0x2", Timestamp: base.Add(time.Minute)},
		{TxHash: "0x3", Timestamp: base.Add(-time.Minute)},
	})

	transactions := cache.LatestTransactions(3)
	if transactions[0].TxHash != "0x2" {
		t.Errorf("expected newest first, got %s", transactions[0].TxHash)
	}
	if transactions[2].TxHash != "0x3" {
		t.Errorf("expected oldest last, got %s", transactions[2].TxHash)
	}
}

func TestWalletTransactionsFilter(t *testing.T) {
	cache := New()
	cache.PutTransactions([]domain.TxRecord{
		{TxHash: "0x1", From: "0xaaa", To: "0xbbb"},
		{TxHash: "0x2", From: "0xccc", To: "0xaaa"},
		{TxHash: "0x3", From: "0xccc", To: "0xddd"},
	})

	matched := cache.WalletTransactions("0xAAA", 10)
	if len(matched) != 2 {
		t.Fatalf("expected 2 wallet transactions, got %d", len(matched))
	}
	for _, tx := range matched {
		if tx.From != "0xaaa" && tx.To != "0xaaa" {
			t.Errorf("unexpected match %s", tx.TxHash)
		}
	}
}

func TestTrimEvictsOldestBlocks(t *testing.T) {
	cache := New()
	blocks := make([]domain.BlockRecord, defaultMaxEntries+50)
	for i := range blocks {
		blocks[i] = domain.BlockRecord{BlockNumber: uint64(i)}
	}
	cache.PutBlocks(blocks)

	all := cache.LatestBlocks(-1)
	if len(all) != defaultMaxEntries {
		t.Fatalf("expected cap of %d, got %d", defaultMaxEntries, len(all))
	}
	if _, ok := cache.BlockByNumber(0); ok {
		t.Error("expected oldest block evicted")
	}
	if _, ok := cache.BlockByNumber(uint64(defaultMaxEntries + 49)); !ok {
		t.Error("expected newest block kept")
	}
}

func TestClear(t *testing.T) {
	cache := New()
	cache.PutBlocks([]domain.BlockRecord{{BlockNumber: 1}})
	cache.PutTransactions([]domain.TxRecord{{TxHash: "0x1"}})
	cache.Clear()

	if len(cache.LatestBlocks(-1)) != 0 || len(cache.LatestTransactions(-1)) != 0 {
		t.Error("expected empty cache after clear")
	}
}

func TestConcurrentAccess(t *testing.T) {
	cache := New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			cache.PutBlocks([]domain.BlockRecord{{BlockNumber: uint64(i)}})
			cache.PutTransactions([]domain.TxRecord{{TxHash: fmt.Sprintf("0x%d", i)}})
		}
	}()
	for i := 0; i < 100; i++ {
		cache.LatestBlocks(10)
		cache.LatestTransactions(10)
	}
	<-done
}
