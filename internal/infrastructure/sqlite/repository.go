// Package sqlite is an embedded store adapter with the same surface as the
// mysql one, for single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := createSchema(db); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			block_number INTEGER PRIMARY KEY,
			tx_count INTEGER NOT NULL DEFAULT 0,
			gas_used INTEGER NOT NULL DEFAULT 0,
			timestamp INTEGER NOT NULL DEFAULT 0,
			block_hash TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			tx_hash TEXT PRIMARY KEY,
			wallet_address TEXT NOT NULL DEFAULT '',
			from_addr TEXT NOT NULL,
			to_addr TEXT NOT NULL DEFAULT '',
			value TEXT NOT NULL,
			gas_used INTEGER NOT NULL DEFAULT 0,
			block_number INTEGER NULL,
			timestamp INTEGER NOT NULL DEFAULT 0,
			direction TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			address TEXT PRIMARY KEY,
			balance TEXT NOT NULL,
			last_updated INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) UpsertBlocks(ctx context.Context, blocks []domain.BlockRecord) error {
	if len(blocks) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO blocks (block_number, tx_count, gas_used, timestamp, block_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(block_number) DO UPDATE SET
			tx_count = excluded.tx_count,
			gas_used = excluded.gas_used,
			timestamp = excluded.timestamp,
			block_hash = excluded.block_hash`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, block := range blocks {
		if _, err := stmt.ExecContext(ctx, block.BlockNumber, block.TxCount, block.GasUsed, unixOrZero(block.Timestamp), strings.ToLower(block.Hash)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) UpsertTransactions(ctx context.Context, transactions []domain.TxRecord) error {
	if len(transactions) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (tx_hash, wallet_address, from_addr, to_addr, value, gas_used, block_number, timestamp, direction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tx_hash) DO UPDATE SET
			wallet_address = excluded.wallet_address,
			from_addr = excluded.from_addr,
			to_addr = excluded.to_addr,
			value = excluded.value,
			gas_used = excluded.gas_used,
			block_number = excluded.block_number,
			timestamp = excluded.timestamp,
			direction = excluded.direction`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, entry := range transactions {
		var blockNumber any
		if entry.BlockNumber != nil {
			blockNumber = *entry.BlockNumber
		}
		value := "0"
		if entry.Value != nil {
			value = entry.Value.String()
		}
		if _, err := stmt.ExecContext(ctx,
			strings.ToLower(entry.TxHash),
			strings.ToLower(entry.WalletAddress),
			strings.ToLower(entry.From),
			strings.ToLower(entry.To),
			value,
			entry.GasUsed,
			blockNumber,
			unixOrZero(entry.Timestamp),
			string(entry.Direction),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) UpsertWallet(ctx context.Context, wallet domain.WalletRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	balance := "0"
	if wallet.Balance != nil {
		balance = wallet.Balance.String()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO wallets (address, balance, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			balance = excluded.balance,
			last_updated = excluded.last_updated`,
		strings.ToLower(wallet.Address), balance, unixOrZero(wallet.LastUpdated))
	return err
}

func (r *Repository) LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT block_number, tx_count, gas_used, timestamp, block_hash FROM blocks ORDER BY block_number DESC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.BlockRecord
	for rows.Next() {
		var block domain.BlockRecord
		var unix int64
		if err := rows.Scan(&block.BlockNumber, &block.TxCount, &block.GasUsed, &unix, &block.Hash); err != nil {
			return nil, err
		}
		block.Timestamp = timeOrZero(unix)
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

func (r *Repository) LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT tx_hash, wallet_address, from_addr, to_addr, value, gas_used, block_number, timestamp, direction
		FROM transactions ORDER BY timestamp DESC, tx_hash ASC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) BlockByNumber(ctx context.Context, number uint64) (*domain.BlockRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var block domain.BlockRecord
	var unix int64
	err := r.db.QueryRowContext(ctx,
		`SELECT block_number, tx_count, gas_used, timestamp, block_hash FROM blocks WHERE block_number = ?`, number).
		Scan(&block.BlockNumber, &block.TxCount, &block.GasUsed, &unix, &block.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	block.Timestamp = timeOrZero(unix)
	return &block, nil
}

func (r *Repository) TransactionByHash(ctx context.Context, hash string) (*domain.TxRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT tx_hash, wallet_address, from_addr, to_addr, value, gas_used, block_number, timestamp, direction
		FROM transactions WHERE tx_hash = ?`, strings.ToLower(hash))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, nil
	}
	return &transactions[0], nil
}

func (r *Repository) Counts(ctx context.Context) (blocks, transactions, wallets uint64, err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`).Scan(&blocks); err != nil {
		return 0, 0, 0, err
	}
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&transactions); err != nil {
		return 0, 0, 0, err
	}
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&wallets); err != nil {
		return 0, 0, 0, err
	}
	return blocks, transactions, wallets, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

func scanTransactions(rows *sql.Rows) ([]domain.TxRecord, error) {
	var transactions []domain.TxRecord
	for rows.Next() {
		var entry domain.TxRecord
		var value string
		var direction string
		var blockNumber sql.NullInt64
		var unix int64
		if err := rows.Scan(&entry.TxHash, &entry.WalletAddress, &entry.From, &entry.To, &value, &entry.GasUsed, &blockNumber, &unix, &direction); err != nil {
			return nil, err
		}
		parsed, ok := new(big.Int).SetString(value, 10)
		if !ok {
			parsed = new(big.Int)
		}
		entry.Value = parsed
		entry.Direction = domain.Direction(direction)
		if blockNumber.Valid {
			number := uint64(blockNumber.Int64)
			entry.BlockNumber = &number
		}
		entry.Timestamp = timeOrZero(unix)
		transactions = append(transactions, entry)
	}
	return transactions, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 100
	}
	return limit
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
