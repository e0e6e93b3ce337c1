package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/quairpc"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/normalize"
)

// ScanCeiling bounds how many blocks a backward chain scan may touch,
// independent of how many records the caller asked for. Together with the
// client's per-call timeout it caps worst-case outbound call volume and
// latency for a single request.
const ScanCeiling = 100

// ChainClient is the chain node surface the live tier and detail lookups
// depend on. *quairpc.Client satisfies it.
type ChainClient interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64, includeTx bool) (*quairpc.BlockPayload, error)
	TransactionByHash(ctx context.Context, hash string) (*quairpc.TxPayload, error)
	TransactionReceipt(ctx context.Context, hash string) (*quairpc.ReceiptPayload, error)
	Balance(ctx context.Context, address string) (string, error)
}

// LiveAggregator reconstructs records by walking blocks backward from the
// chain tip. It produces records it does not own; callers decide whether to
// persist or cache them.
type LiveAggregator struct {
	chain     ChainClient
	reference string
}

func NewLiveAggregator(chain ChainClient, referenceWallet string) *LiveAggregator {
	return &LiveAggregator{chain: chain, reference: referenceWallet}
}

// LatestBlocks fetches the newest limit blocks directly from the chain.
// Individual block failures are logged and skipped; only a missing tip fails
// the whole scan.
func (l *LiveAggregator) LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	tip, err := l.chain.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	blocks := make([]domain.BlockRecord, 0, limit)
	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return blocks, nil
		}
		number := tip - uint64(i)
		payload, err := l.chain.BlockByNumber(ctx, number, true)
		if err != nil {
			slog.Warn("live block fetch failed", "block", number, "err", err)
			if number == 0 {
				break
			}
			continue
		}
		blocks = append(blocks, BlockFromPayload(number, payload))
		if number == 0 {
			break
		}
	}
	return blocks, nil
}

// LatestTransactions scans blocks backward from the tip collecting
// transactions until limit is reached or ScanCeiling blocks were examined,
// whichever comes first.
func (l *LiveAggregator) LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	return l.scanTransactions(ctx, limit, func(domain.TxRecord) bool { return true })
}

// WalletTransactions reconstructs a wallet's recent history by filtering the
// same backward scan; the chain exposes no per-address transaction listing.
func (l *LiveAggregator) WalletTransactions(ctx context.Context, address string, limit int) ([]domain.TxRecord, error) {
	wanted := strings.ToLower(strings.TrimSpace(address))
	if wanted == "" {
		return nil, nil
	}
	records, err := l.scanTransactions(ctx, limit, func(tx domain.TxRecord) bool {
		return tx.From == wanted || tx.To == wanted
	})
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].WalletAddress = wanted
		records[i].Direction = normalize.ClassifyDirection(records[i].From, records[i].To, wanted)
	}
	return records, nil
}

func (l *LiveAggregator) scanTransactions(ctx context.Context, limit int, keep func(domain.TxRecord) bool) ([]domain.TxRecord, error) {
	tip, err := l.chain.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	var transactions []domain.TxRecord
	for i := 0; i < ScanCeiling; i++ {
		if len(transactions) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}
		number := tip - uint64(i)
		payload, err := l.chain.BlockByNumber(ctx, number, true)
		if err != nil {
			slog.Warn("live block scan failed", "block", number, "err", err)
			if number == 0 {
				break
			}
			continue
		}
		timestamp := normalize.BlockTimestamp(payload.WoHeader.Timestamp)
		for _, tx := range payload.Transactions {
			if tx.Hash == "" || tx.From == "" || tx.To == "" {
				continue
			}
			record := TxFromPayload(tx, l.reference)
			record.BlockNumber = &number
			record.Timestamp = timestamp
			if !keep(record) {
				continue
			}
			transactions = append(transactions, record)
			if len(transactions) >= limit {
				break
			}
		}
		if number == 0 {
			break
		}
	}
	return transactions, nil
}

// BlockFromPayload normalizes a raw block payload into a record.
func BlockFromPayload(number uint64, payload *quairpc.BlockPayload) domain.BlockRecord {
	return domain.BlockRecord{
		BlockNumber: number,
		TxCount:     uint64(len(payload.Transactions)),
		GasUsed:     normalize.HexToUint64(payload.GasUsed),
		Timestamp:   normalize.BlockTimestamp(payload.WoHeader.Timestamp),
		Hash:        strings.ToLower(payload.Hash),
	}
}

// TxFromPayload normalizes a raw transaction payload into a record relative
// to the reference wallet.
func TxFromPayload(payload quairpc.TxPayload, reference string) domain.TxRecord {
	return domain.TxRecord{
		TxHash:    strings.ToLower(payload.Hash),
		From:      strings.ToLower(payload.From),
		To:        strings.ToLower(payload.To),
		Value:     normalize.ParseBigInt(payload.Value),
		Direction: normalize.ClassifyDirection(payload.From, payload.To, reference),
	}
}
