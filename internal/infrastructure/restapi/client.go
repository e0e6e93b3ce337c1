// Package restapi reaches the persistent store's plain HTTP query surface.
// It is the secondary path used only when the primary store adapter was
// never constructed.
package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type blockRow struct {
	BlockNumber uint64          `json:"block_number"`
	TxCount     uint64          `json:"tx_count"`
	GasUsed     uint64          `json:"gas_used"`
	Timestamp   json.RawMessage `json:"timestamp"`
	Hash        string          `json:"block_hash"`
}

type txRow struct {
	TxHash        string          `json:"tx_hash"`
	WalletAddress string          `json:"wallet_address"`
	From          string          `json:"from_addr"`
	To            string          `json:"to_addr"`
	Value         string          `json:"value"`
	GasUsed       uint64          `json:"gas_used"`
	BlockNumber   *uint64         `json:"block_number"`
	Timestamp     json.RawMessage `json:"timestamp"`
	Direction     string          `json:"direction"`
}

func (c *Client) LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	var rows []blockRow
	if err := c.query(ctx, "blocks", "block_number.desc", limit, &rows); err != nil {
		return nil, err
	}
	blocks := make([]domain.BlockRecord, 0, len(rows))
	for _, row := range rows {
		blocks = append(blocks, domain.BlockRecord{
			BlockNumber: row.BlockNumber,
			TxCount:     row.TxCount,
			GasUsed:     row.GasUsed,
			Timestamp:   parseRowTime(row.Timestamp),
			Hash:        row.Hash,
		})
	}
	return blocks, nil
}

func (c *Client) LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	var rows []txRow
	if err := c.query(ctx, "transactions", "timestamp.desc", limit, &rows); err != nil {
		return nil, err
	}
	transactions := make([]domain.TxRecord, 0, len(rows))
	for _, row := range rows {
		value, ok := new(big.Int).SetString(row.Value, 10)
		if !ok {
			value = new(big.Int)
		}
		transactions = append(transactions, domain.TxRecord{
			TxHash:        row.TxHash,
			WalletAddress: row.WalletAddress,
			From:          row.From,
			To:            row.To,
			Value:         value,
			GasUsed:       row.GasUsed,
			BlockNumber:   row.BlockNumber,
			Timestamp:     parseRowTime(row.Timestamp),
			Direction:     domain.Direction(row.Direction),
		})
	}
	return transactions, nil
}

func (c *Client) query(ctx context.Context, table, order string, limit int, result any) error {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", order)
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rest status %d for %s", resp.StatusCode, table)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// parseRowTime accepts both the unix-seconds and RFC 3339 encodings the store
// has used for timestamps. Unparseable values become the unknown marker.
func parseRowTime(raw json.RawMessage) time.Time {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if value == "" || value == "null" {
		return time.Time{}
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds == 0 {
			return time.Time{}
		}
		return time.Unix(seconds, 0).UTC()
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC()
	}
	return time.Time{}
}
