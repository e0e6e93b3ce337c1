// Package quairpc is a thin synchronous client for the chain node's JSON-RPC
// surface. It performs no retries; retry and fallback policy belongs to the
// tiers that call it.
package quairpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const defaultCallTimeout = 10 * time.Second

type Client struct {
	url        string
	httpClient *http.Client
	idCounter  uint64
}

type Config struct {
	URL     string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rpc url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCallTimeout
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// BlockPayload is the raw block object returned by eth_getBlockByNumber.
// The authoritative header timestamp lives in the nested WoHeader, not on
// the top-level envelope.
type BlockPayload struct {
	Number       string      `json:"number"`
	Hash         string      `json:"hash"`
	GasUsed      string      `json:"gasUsed"`
	Transactions []TxPayload `json:"transactions"`
	WoHeader     WoHeader    `json:"woHeader"`
}

type WoHeader struct {
	Timestamp string `json:"timestamp"`
}

// TxPayload is the raw transaction object from eth_getBlockByNumber and
// eth_getTransactionByHash.
type TxPayload struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	Gas         string `json:"gas"`
	BlockNumber string `json:"blockNumber"`
}

// ReceiptPayload is the raw receipt from eth_getTransactionReceipt.
type ReceiptPayload struct {
	TxHash      string `json:"transactionHash"`
	BlockNumber string `json:"blockNumber"`
	GasUsed     string `json:"gasUsed"`
	Status      string `json:"status"`
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var result string
	if err := c.call(ctx, "eth_blockNumber", []any{}, &result); err != nil {
		return 0, err
	}
	return parseHexUint(result)
}

func (c *Client) BlockByNumber(ctx context.Context, number uint64, includeTx bool) (*BlockPayload, error) {
	var result *BlockPayload
	if err := c.call(ctx, "eth_getBlockByNumber", []any{formatHexUint(number), includeTx}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("block %d not found", number)
	}
	return result, nil
}

func (c *Client) TransactionByHash(ctx context.Context, hash string) (*TxPayload, error) {
	var result *TxPayload
	if err := c.call(ctx, "eth_getTransactionByHash", []any{hash}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("transaction %s not found", hash)
	}
	return result, nil
}

func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*ReceiptPayload, error) {
	var result *ReceiptPayload
	if err := c.call(ctx, "eth_getTransactionReceipt", []any{hash}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("receipt %s not found", hash)
	}
	return result, nil
}

// Balance returns the hex-encoded balance of the address at the latest block.
func (c *Client) Balance(ctx context.Context, address string) (string, error) {
	var result string
	if err := c.call(ctx, "eth_getBalance", []any{address, "latest"}, &result); err != nil {
		return "", err
	}
	return result, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	id := atomic.AddUint64(&c.idCounter, 1)
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpc status %d", resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	if decoded.Error != nil {
		return fmt.Errorf("rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if result == nil {
		return nil
	}
	if len(decoded.Result) == 0 {
		return errors.New("rpc result is empty")
	}
	return json.Unmarshal(decoded.Result, result)
}

func parseHexUint(value string) (uint64, error) {
	trimmed := strings.TrimPrefix(value, "0x")
	if trimmed == "" {
		return 0, errors.New("empty hex value")
	}
	return strconv.ParseUint(trimmed, 16, 64)
}

func formatHexUint(value uint64) string {
	return fmt.Sprintf("0x%x", value)
}
