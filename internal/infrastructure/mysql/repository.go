// Package mysql is the primary persistent store adapter. It owns the durable
// copies of block, transaction, and wallet records.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"

	_ "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("db dsn is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
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
			block_number BIGINT UNSIGNED NOT NULL,
			tx_count BIGINT UNSIGNED NOT NULL DEFAULT 0,
			gas_used BIGINT UNSIGNED NOT NULL DEFAULT 0,
			timestamp BIGINT NOT NULL DEFAULT 0,
			block_hash VARCHAR(66) NOT NULL DEFAULT '',
			PRIMARY KEY (block_number)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			tx_hash VARCHAR(66) NOT NULL,
			wallet_address VARCHAR(42) NOT NULL DEFAULT '',
			from_addr VARCHAR(42) NOT NULL,
			to_addr VARCHAR(42) NOT NULL DEFAULT '',
			value DECIMAL(65,0) NOT NULL,
			gas_used BIGINT UNSIGNED NOT NULL DEFAULT 0,
			block_number BIGINT UNSIGNED NULL,
			timestamp BIGINT NOT NULL DEFAULT 0,
			direction VARCHAR(16) NOT NULL DEFAULT '',
			PRIMARY KEY (tx_hash),
			KEY tx_block_idx (block_number),
			KEY tx_wallet_idx (wallet_address),
			KEY tx_time_idx (timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			address VARCHAR(42) NOT NULL,
			balance DECIMAL(65,0) NOT NULL,
			last_updated BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (address)
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
	ctx, span := startDBSpan(ctx, "mysql.UpsertBlocks", attribute.Int("block.count", len(blocks)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return spanErr(span, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO blocks (block_number, tx_count, gas_used, timestamp, block_hash)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			tx_count = VALUES(tx_count),
			gas_used = VALUES(gas_used),
			timestamp = VALUES(timestamp),
			block_hash = VALUES(block_hash)`)
	if err != nil {
		_ = tx.Rollback()
		return spanErr(span, err)
	}
	defer stmt.Close()

	for _, block := range blocks {
		if _, err := stmt.ExecContext(ctx, block.BlockNumber, block.TxCount, block.GasUsed, unixOrZero(block.Timestamp), strings.ToLower(block.Hash)); err != nil {
			_ = tx.Rollback()
			return spanErr(span, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return spanErr(span, err)
	}
	return nil
}

func (r *Repository) UpsertTransactions(ctx context.Context, transactions []domain.TxRecord) error {
	if len(transactions) == 0 {
		return nil
	}
	ctx, span := startDBSpan(ctx, "mysql.UpsertTransactions", attribute.Int("tx.count", len(transactions)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return spanErr(span, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (tx_hash, wallet_address, from_addr, to_addr, value, gas_used, block_number, timestamp, direction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			wallet_address = VALUES(wallet_address),
			from_addr = VALUES(from_addr),
			to_addr = VALUES(to_addr),
			value = VALUES(value),
			gas_used = VALUES(gas_used),
			block_number = VALUES(block_number),
			timestamp = VALUES(timestamp),
			direction = VALUES(direction)`)
	if err != nil {
		_ = tx.Rollback()
		return spanErr(span, err)
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
			return spanErr(span, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return spanErr(span, err)
	}
	return nil
}

func (r *Repository) UpsertWallet(ctx context.Context, wallet domain.WalletRecord) error {
	ctx, span := startDBSpan(ctx, "mysql.UpsertWallet", attribute.String("address", strings.ToLower(wallet.Address)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	balance := "0"
	if wallet.Balance != nil {
		balance = wallet.Balance.String()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO wallets (address, balance, last_updated)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			balance = VALUES(balance),
			last_updated = VALUES(last_updated)`,
		strings.ToLower(wallet.Address), balance, unixOrZero(wallet.LastUpdated))
	if err != nil {
		return spanErr(span, err)
	}
	return nil
}

func (r *Repository) LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	ctx, span := startDBSpan(ctx, "mysql.LatestBlocks", attribute.Int("limit", limit))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT block_number, tx_count, gas_used, timestamp, block_hash FROM blocks ORDER BY block_number DESC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	var blocks []domain.BlockRecord
	for rows.Next() {
		var block domain.BlockRecord
		var unix int64
		if err := rows.Scan(&block.BlockNumber, &block.TxCount, &block.GasUsed, &unix, &block.Hash); err != nil {
			return nil, spanErr(span, err)
		}
		block.Timestamp = timeOrZero(unix)
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, spanErr(span, err)
	}
	return blocks, nil
}

func (r *Repository) LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	ctx, span := startDBSpan(ctx, "mysql.LatestTransactions", attribute.Int("limit", limit))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT tx_hash, wallet_address, from_addr, to_addr, value, gas_used, block_number, timestamp, direction
		FROM transactions ORDER BY timestamp DESC, tx_hash ASC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, spanErr(span, err)
	}
	return transactions, nil
}

func (r *Repository) BlockByNumber(ctx context.Context, number uint64) (*domain.BlockRecord, error) {
	ctx, span := startDBSpan(ctx, "mysql.BlockByNumber", attribute.Int64("block.number", int64(number)))
	defer span.End()
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
		return nil, spanErr(span, err)
	}
	block.Timestamp = timeOrZero(unix)
	return &block, nil
}

func (r *Repository) TransactionByHash(ctx context.Context, hash string) (*domain.TxRecord, error) {
	ctx, span := startDBSpan(ctx, "mysql.TransactionByHash", attribute.String("tx.hash", strings.ToLower(hash)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT tx_hash, wallet_address, from_addr, to_addr, value, gas_used, block_number, timestamp, direction
		FROM transactions WHERE tx_hash = ?`, strings.ToLower(hash))
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if len(transactions) == 0 {
		return nil, nil
	}
	return &transactions[0], nil
}

// Counts returns the aggregate row counts used by the stats fallback.
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

func startDBSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", "mysql"))
	return otel.Tracer("quaiscan/mysql").Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
