// Package memcache is the in-process fallback tier. It owns only transient
// copies of the most recently reconstructed records and is cleared on
// restart. A mutex guards it because overlapping dashboard requests and the
// syncer both touch it.
package memcache

import (
	"sort"
	"strings"
	"sync"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

const defaultMaxEntries = 500

type Cache struct {
	mu           sync.RWMutex
	blocks       map[uint64]domain.BlockRecord
	transactions map[string]domain.TxRecord
	maxEntries   int
}

func New() *Cache {
	return &Cache{
		blocks:       make(map[uint64]domain.BlockRecord),
		transactions: make(map[string]domain.TxRecord),
		maxEntries:   defaultMaxEntries,
	}
}

// PutBlocks records reconstructed blocks, replacing prior copies by number.
func (c *Cache) PutBlocks(blocks []domain.BlockRecord) {
	if len(blocks) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, block := range blocks {
		c.blocks[block.BlockNumber] = block
	}
	c.trimBlocksLocked()
}

// PutTransactions records reconstructed transactions keyed by hash.
func (c *Cache) PutTransactions(transactions []domain.TxRecord) {
	if len(transactions) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range transactions {
		hash := strings.ToLower(entry.TxHash)
		if hash == "" {
			continue
		}
		c.transactions[hash] = entry
	}
	c.trimTransactionsLocked()
}

// LatestBlocks returns cached blocks sorted by number descending, at most limit.
func (c *Cache) LatestBlocks(limit int) []domain.BlockRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]domain.BlockRecord, 0, len(c.blocks))
	for _, block := range c.blocks {
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(a, b int) bool {
		return blocks[a].BlockNumber > blocks[b].BlockNumber
	})
	if limit >= 0 && len(blocks) > limit {
		blocks = blocks[:limit]
	}
	return blocks
}

// LatestTransactions returns cached transactions newest-first, at most limit.
func (c *Cache) LatestTransactions(limit int) []domain.TxRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	transactions := make([]domain.TxRecord, 0, len(c.transactions))
	for _, entry := range c.transactions {
		transactions = append(transactions, entry)
	}
	sort.Slice(transactions, func(a, b int) bool {
		if !transactions[a].Timestamp.Equal(transactions[b].Timestamp) {
			return transactions[a].Timestamp.After(transactions[b].Timestamp)
		}
		return transactions[a].TxHash < transactions[b].TxHash
	})
	if limit >= 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions
}

// WalletTransactions filters cached transactions by participant address,
// newest first.
func (c *Cache) WalletTransactions(address string, limit int) []domain.TxRecord {
	address = strings.ToLower(address)
	transactions := c.LatestTransactions(-1)
	matched := transactions[:0]
	for _, entry := range transactions {
		if entry.From == address || entry.To == address {
			matched = append(matched, entry)
		}
	}
	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// BlockByNumber looks up a single cached block.
func (c *Cache) BlockByNumber(number uint64) (domain.BlockRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	block, ok := c.blocks[number]
	return block, ok
}

// TransactionByHash looks up a single cached transaction.
func (c *Cache) TransactionByHash(hash string) (domain.TxRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.transactions[strings.ToLower(hash)]
	return entry, ok
}

// Clear drops every cached record.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = make(map[uint64]domain.BlockRecord)
	c.transactions = make(map[string]domain.TxRecord)
}

// trimBlocksLocked evicts the oldest blocks once the cap is exceeded.
func (c *Cache) trimBlocksLocked() {
	if len(c.blocks) <= c.maxEntries {
		return
	}
	numbers := make([]uint64, 0, len(c.blocks))
	for number := range c.blocks {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(a, b int) bool { return numbers[a] < numbers[b] })
	for _, number := range numbers[:len(numbers)-c.maxEntries] {
		delete(c.blocks, number)
	}
}

func (c *Cache) trimTransactionsLocked() {
	if len(c.transactions) <= c.maxEntries {
		return
	}
	type aged struct {
		hash  string
		entry domain.TxRecord
	}
	entries := make([]aged, 0, len(c.transactions))
	for hash, entry := range c.transactions {
		entries = append(entries, aged{hash: hash, entry: entry})
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].entry.Timestamp.Before(entries[b].entry.Timestamp)
	})
	for _, stale := range entries[:len(entries)-c.maxEntries] {
		delete(c.transactions, stale.hash)
	}
}
