package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/application"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/config"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

// RPCStatus is the readiness probe's view of the chain node.
type RPCStatus interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// Pinger is the readiness probe's view of the store. Nil when no store is
// configured.
type Pinger interface {
	Ping(ctx context.Context) error
}

type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

type Server struct {
	cfg       config.Config
	facade    *application.Facade
	store     Pinger
	rpc       RPCStatus
	metrics   *Metrics
	buildInfo BuildInfo
}

func NewServer(cfg config.Config, facade *application.Facade, store Pinger, rpc RPCStatus, metrics *Metrics, buildInfo BuildInfo) (*Server, error) {
	if facade == nil || rpc == nil {
		return nil, errors.New("http server dependencies must not be nil")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{cfg: cfg, facade: facade, store: store, rpc: rpc, metrics: metrics, buildInfo: buildInfo}, nil
}

func (s *Server) MetricsObserver() *Metrics {
	return s.metrics
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/blocks", s.handleBlocks)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/block", s.handleBlockDetail)
	mux.HandleFunc("/api/tx", s.handleTransactionDetail)
	mux.HandleFunc("/api/wallet", s.handleWallet)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/charts", s.handleCharts)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/version", s.handleVersion)
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready when the chain node answers; a missing or dark
// store degrades the payload but not the status, matching how the facade
// keeps serving without it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	storeState := "absent"
	if s.store != nil {
		storeState = "ok"
		if err := s.store.Ping(ctx); err != nil {
			storeState = "unreachable"
		}
	}
	if _, err := s.rpc.LatestBlockNumber(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "rpc not ready")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready", "store": storeState})
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 10)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	blocks, source := s.facade.FetchLatestBlocks(r.Context(), limit)
	payload := make([]blockResponse, 0, len(blocks))
	for _, block := range blocks {
		payload = append(payload, toBlockResponse(block))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"source": source,
		"blocks": payload,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 10)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactions, source := s.facade.FetchLatestTransactions(r.Context(), limit)
	payload := make([]txResponse, 0, len(transactions))
	for _, tx := range transactions {
		payload = append(payload, toTxResponse(tx))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"source":       source,
		"transactions": payload,
	})
}

func (s *Server) handleBlockDetail(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("number")
	number, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid number")
		return
	}
	block := s.facade.BlockDetail(r.Context(), number)
	if block == nil {
		respondError(w, http.StatusNotFound, "block not found")
		return
	}
	respondJSON(w, http.StatusOK, toBlockResponse(*block))
}

func (s *Server) handleTransactionDetail(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		respondError(w, http.StatusBadRequest, "hash is required")
		return
	}
	tx := s.facade.TransactionDetail(r.Context(), hash)
	if tx == nil {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	respondJSON(w, http.StatusOK, toTxResponse(*tx))
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		address = s.cfg.ReferenceWallet
	}
	limit, err := parseLimit(r, 10)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactions, source := s.facade.WalletHistory(r.Context(), address, limit)
	payload := make([]txResponse, 0, len(transactions))
	for _, tx := range transactions {
		payload = append(payload, toTxResponse(tx))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"address":      address,
		"source":       source,
		"transactions": payload,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot := s.facade.ComputeNetworkStats(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"total_blocks":       snapshot.TotalBlocks,
		"total_transactions": snapshot.TotalTransactions,
		"active_addresses":   snapshot.ActiveAddresses,
		"network_status":     snapshot.NetworkStatus,
		"insight":            snapshot.Insight,
		"last_synced":        snapshot.LastSynced.Format(time.RFC3339),
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	blocks, _ := s.facade.FetchLatestBlocks(r.Context(), 10)
	transactions, _ := s.facade.FetchLatestTransactions(r.Context(), 10)
	respondJSON(w, http.StatusOK, application.BuildChartData(transactions, blocks))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	snap := s.metrics.Snapshot()

	uptime := time.Since(snap.StartTime).Seconds()
	fmt.Fprintf(w, "quaiscan_uptime_seconds %.0f\n", uptime)
	fmt.Fprintf(w, "quaiscan_chain_tip %d\n", snap.ChainTip)
	fmt.Fprintf(w, "quaiscan_empty_serves_total %d\n", snap.EmptyServes)
	fmt.Fprintf(w, "quaiscan_sync_cycles_total %d\n", snap.SyncCycles)
	fmt.Fprintf(w, "quaiscan_sync_failures_total %d\n", snap.SyncFailures)
	fmt.Fprintf(w, "quaiscan_last_sync_items %d\n", snap.LastSyncItems)
	if !snap.LastSyncAt.IsZero() {
		fmt.Fprintf(w, "quaiscan_last_sync_timestamp %d\n", snap.LastSyncAt.Unix())
	}
	for key, value := range snap.TierServes {
		fmt.Fprintf(w, "quaiscan_tier_serves_total{source=%q} %d\n", key, value)
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.buildInfo)
}

type blockResponse struct {
	BlockNumber uint64 `json:"block_number"`
	TxCount     uint64 `json:"tx_count"`
	GasUsed     uint64 `json:"gas_used"`
	Timestamp   *int64 `json:"timestamp"`
	Hash        string `json:"hash"`
}

type txResponse struct {
	TxHash      string  `json:"tx_hash"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Value       string  `json:"value"`
	GasUsed     uint64  `json:"gas_used"`
	BlockNumber *uint64 `json:"block_number"`
	Timestamp   *int64  `json:"timestamp"`
	Direction   string  `json:"direction"`
}

func toBlockResponse(block domain.BlockRecord) blockResponse {
	return blockResponse{
		BlockNumber: block.BlockNumber,
		TxCount:     block.TxCount,
		GasUsed:     block.GasUsed,
		Timestamp:   unixOrNil(block.Timestamp),
		Hash:        block.Hash,
	}
}

func toTxResponse(tx domain.TxRecord) txResponse {
	value := "0"
	if tx.Value != nil {
		value = tx.Value.String()
	}
	return txResponse{
		TxHash:      tx.TxHash,
		From:        tx.From,
		To:          tx.To,
		Value:       value,
		GasUsed:     tx.GasUsed,
		BlockNumber: tx.BlockNumber,
		Timestamp:   unixOrNil(tx.Timestamp),
		Direction:   string(tx.Direction),
	}
}

// unixOrNil maps the timestamp-unknown marker to JSON null instead of the
// epoch.
func unixOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	unix := t.Unix()
	return &unix
}

func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.New("invalid limit")
	}
	if value == 0 {
		return fallback, nil
	}
	if value > 100 {
		value = 100
	}
	return value, nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
