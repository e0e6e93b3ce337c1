package application

import (
	"context"
	"errors"
	"testing"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
)

func TestComputeNetworkStatsHealthy(t *testing.T) {
	facade, err := NewFacade(FacadeConfig{Chain: chainWithBlocks(20, 1)})
	if err != nil {
		t.Fatalf("facade: %v", err)
	}

	snapshot := facade.ComputeNetworkStats(context.Background())
	if snapshot.NetworkStatus != domain.StatusHealthy {
		t.Errorf("expected Healthy, got %q", snapshot.NetworkStatus)
	}
	if snapshot.TotalBlocks != 21 {
		t.Errorf("expected tip+1 blocks, got %d", snapshot.TotalBlocks)
	}
	if snapshot.TotalTransactions != 21 {
		t.Errorf("expected one sampled transaction per block, got %d", snapshot.TotalTransactions)
	}
	if snapshot.ActiveAddresses != 2 {
		t.Errorf("expected two distinct sampled addresses, got %d", snapshot.ActiveAddresses)
	}
	if snapshot.Insight == "" {
		t.Error("expected an insight line")
	}
	if snapshot.LastSynced.IsZero() {
		t.Error("expected last synced to be set")
	}
}

func TestComputeNetworkStatsSyncingFromStore(t *testing.T) {
	chain := &mockChain{tipErr: errors.New("rpc down")}
	store := &mockStore{counts: [3]uint64{12, 30, 1}}
	facade, err := NewFacade(FacadeConfig{Chain: chain, Store: store})
	if err != nil {
		t.Fatalf("facade: %v", err)
	}

	snapshot := facade.ComputeNetworkStats(context.Background())
	if snapshot.NetworkStatus != domain.StatusSyncing {
		t.Errorf("expected Syncing, got %q", snapshot.NetworkStatus)
	}
	if snapshot.TotalBlocks != 12 {
		t.Errorf("expected store block count, got %d", snapshot.TotalBlocks)
	}
}

func TestComputeNetworkStatsAPIOffline(t *testing.T) {
	chain := &mockChain{tipErr: errors.New("rpc down")}
	facade, err := NewFacade(FacadeConfig{Chain: chain})
	if err != nil {
		t.Fatalf("facade: %v", err)
	}

	snapshot := facade.ComputeNetworkStats(context.Background())
	if snapshot.NetworkStatus != domain.StatusAPIOffline {
		t.Errorf("expected API Offline, got %q", snapshot.NetworkStatus)
	}
	if snapshot.NetworkStatus == domain.StatusHealthy {
		t.Error("a dark backend must never report Healthy")
	}
}

func TestComputeNetworkStatsError(t *testing.T) {
	chain := &mockChain{tipErr: errors.New("rpc down")}
	store := &mockStore{countsErr: errors.New("db down")}
	facade, err := NewFacade(FacadeConfig{Chain: chain, Store: store})
	if err != nil {
		t.Fatalf("facade: %v", err)
	}

	snapshot := facade.ComputeNetworkStats(context.Background())
	if snapshot.NetworkStatus != domain.StatusError {
		t.Errorf("expected Error, got %q", snapshot.NetworkStatus)
	}
}
