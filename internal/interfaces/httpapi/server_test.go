package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/application"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/config"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/quairpc"
)

type stubChain struct {
	tip    uint64
	tipErr error
	blocks map[uint64]*quairpc.BlockPayload
}

func (s *stubChain) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return s.tip, s.tipErr
}

func (s *stubChain) BlockByNumber(ctx context.Context, number uint64, includeTx bool) (*quairpc.BlockPayload, error) {
	block, ok := s.blocks[number]
	if !ok {
		return nil, fmt.Errorf("block %d not found", number)
	}
	return block, nil
}

func (s *stubChain) TransactionByHash(ctx context.Context, hash string) (*quairpc.TxPayload, error) {
	return nil, errors.New("not found")
}

func (s *stubChain) TransactionReceipt(ctx context.Context, hash string) (*quairpc.ReceiptPayload, error) {
	return nil, errors.New("not found")
}

func (s *stubChain) Balance(ctx context.Context, address string) (string, error) {
	return "0x0", nil
}

func newTestServer(t *testing.T, chain *stubChain) *Server {
	t.Helper()
	facade, err := application.NewFacade(application.FacadeConfig{Chain: chain})
	if err != nil {
		t.Fatalf("facade: %v", err)
	}
	server, err := NewServer(config.Config{}, facade, nil, chain, NewMetrics(), BuildInfo{Version: "test"})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	return server
}

func chainWithBlocks(tip uint64) *stubChain {
	blocks := make(map[uint64]*quairpc.BlockPayload, tip+1)
	for n := uint64(0); n <= tip; n++ {
		blocks[n] = &quairpc.BlockPayload{
			Number:   fmt.Sprintf("0x%x", n),
			Hash:     fmt.Sprintf("0xhash%d", n),
			GasUsed:  "0x5208",
			WoHeader: quairpc.WoHeader{Timestamp: fmt.Sprintf("0x%x", 1700000000+n)},
		}
	}
	return &stubChain{tip: tip, blocks: blocks}
}

func TestHandleBlocks(t *testing.T) {
	server := newTestServer(t, chainWithBlocks(20))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/blocks?limit=3", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body struct {
		Source string `json:"source"`
		Blocks []struct {
			BlockNumber uint64 `json:"block_number"`
			Timestamp   *int64 `json:"timestamp"`
		} `json:"blocks"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Source != "live" {
		t.Errorf("expected live source, got %q", body.Source)
	}
	if len(body.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(body.Blocks))
	}
	if body.Blocks[0].BlockNumber != 20 {
		t.Errorf("expected newest first, got %d", body.Blocks[0].BlockNumber)
	}
	if body.Blocks[0].Timestamp == nil {
		t.Error("expected timestamp set")
	}
}

func TestHandleBlocksDarkBackend(t *testing.T) {
	server := newTestServer(t, &stubChain{tipErr: errors.New("rpc down")})

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/blocks", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("degraded serves must stay 200, got %d", recorder.Code)
	}
	var body struct {
		Source string            `json:"source"`
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Source != "none" {
		t.Errorf("expected none source, got %q", body.Source)
	}
	if len(body.Blocks) != 0 {
		t.Errorf("expected empty list, got %d", len(body.Blocks))
	}
}

func TestHandleBlockDetailValidation(t *testing.T) {
	server := newTestServer(t, chainWithBlocks(5))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/block?number=abc", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad number, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/block?number=999", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 beyond tip, got %d", recorder.Code)
	}
}

func TestHandleTransactionDetailNotFound(t *testing.T) {
	server := newTestServer(t, chainWithBlocks(5))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/tx?hash=0xmissing", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", recorder.Code)
	}
}

func TestHandleStats(t *testing.T) {
	server := newTestServer(t, chainWithBlocks(10))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["network_status"] != "Healthy" {
		t.Errorf("expected Healthy, got %v", body["network_status"])
	}
	if body["total_blocks"].(float64) != 11 {
		t.Errorf("expected 11 total blocks, got %v", body["total_blocks"])
	}
}

func TestHandleCharts(t *testing.T) {
	server := newTestServer(t, chainWithBlocks(3))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body struct {
		TxPerBlock struct {
			Labels []string `json:"labels"`
			Data   []uint64 `json:"data"`
		} `json:"tx_per_block"`
		Directions struct {
			Incoming int `json:"incoming"`
			Outgoing int `json:"outgoing"`
		} `json:"direction_counts"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.TxPerBlock.Labels) != 4 {
		t.Errorf("expected 4 labels, got %v", body.TxPerBlock.Labels)
	}
	if body.Directions.Incoming != 1 || body.Directions.Outgoing != 1 {
		t.Errorf("expected placeholder pair, got %+v", body.Directions)
	}
}

func TestHandleHealthAndReady(t *testing.T) {
	server := newTestServer(t, chainWithBlocks(1))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("readyz: expected 200, got %d", recorder.Code)
	}

	down := newTestServer(t, &stubChain{tipErr: errors.New("rpc down")})
	recorder = httptest.NewRecorder()
	down.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with dark rpc: expected 503, got %d", recorder.Code)
	}
}

func TestParseLimitCaps(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/api/blocks?limit=5000", nil)
	limit, err := parseLimit(request, 10)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if limit != 100 {
		t.Errorf("expected cap of 100, got %d", limit)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/blocks?limit=-1", nil)
	if _, err := parseLimit(request, 10); err == nil {
		t.Error("expected error for negative limit")
	}
}
