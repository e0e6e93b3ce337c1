package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "quaiscan:records:version"
	cacheKeyPrefix  = "quaiscan:records:v"
	defaultCacheTTL = time.Minute
)

type CacheConfig struct {
	Addr string
	TTL  time.Duration
}

// CachedRepository decorates the primary store with a Redis read cache over
// the latest-record list queries. Writes pass through and bump the cache
// version, invalidating every cached list at once.
type CachedRepository struct {
	*Repository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedRepository(base *Repository, cfg CacheConfig) (*CachedRepository, error) {
	if base == nil {
		return nil, errors.New("base repository is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return &CachedRepository{Repository: base}, nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &CachedRepository{Repository: base, cache: client, ttl: cfg.TTL}, nil
}

func (r *CachedRepository) UpsertBlocks(ctx context.Context, blocks []domain.BlockRecord) error {
	if err := r.Repository.UpsertBlocks(ctx, blocks); err != nil {
		return err
	}
	if len(blocks) > 0 {
		r.invalidate(ctx)
	}
	return nil
}

func (r *CachedRepository) UpsertTransactions(ctx context.Context, transactions []domain.TxRecord) error {
	if err := r.Repository.UpsertTransactions(ctx, transactions); err != nil {
		return err
	}
	if len(transactions) > 0 {
		r.invalidate(ctx)
	}
	return nil
}

func (r *CachedRepository) LatestBlocks(ctx context.Context, limit int) ([]domain.BlockRecord, error) {
	if r.cache == nil {
		return r.Repository.LatestBlocks(ctx, limit)
	}
	key, ok := r.listKey(ctx, "blocks", limit)
	if !ok {
		return r.Repository.LatestBlocks(ctx, limit)
	}
	if cached, err := r.cache.Get(ctx, key).Result(); err == nil {
		var blocks []domain.BlockRecord
		if err := json.Unmarshal([]byte(cached), &blocks); err == nil {
			return blocks, nil
		}
	}
	blocks, err := r.Repository.LatestBlocks(ctx, limit)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, blocks)
	return blocks, nil
}

func (r *CachedRepository) LatestTransactions(ctx context.Context, limit int) ([]domain.TxRecord, error) {
	if r.cache == nil {
		return r.Repository.LatestTransactions(ctx, limit)
	}
	key, ok := r.listKey(ctx, "txs", limit)
	if !ok {
		return r.Repository.LatestTransactions(ctx, limit)
	}
	if cached, err := r.cache.Get(ctx, key).Result(); err == nil {
		var transactions []domain.TxRecord
		if err := json.Unmarshal([]byte(cached), &transactions); err == nil {
			return transactions, nil
		}
	}
	transactions, err := r.Repository.LatestTransactions(ctx, limit)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, transactions)
	return transactions, nil
}

func (r *CachedRepository) listKey(ctx context.Context, kind string, limit int) (string, bool) {
	version, err := r.cache.Get(ctx, cacheVersionKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return "", false
		}
		version = "0"
	}
	var b strings.Builder
	b.WriteString(cacheKeyPrefix)
	b.WriteString(version)
	b.WriteString(":")
	b.WriteString(kind)
	b.WriteString(":limit=")
	b.WriteString(strconv.Itoa(normalizeLimit(limit)))
	return b.String(), true
}

func (r *CachedRepository) store(ctx context.Context, key string, records any) {
	payload, err := json.Marshal(records)
	if err != nil {
		return
	}
	_ = r.cache.Set(ctx, key, payload, r.ttl).Err()
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Incr(ctx, cacheVersionKey).Err()
}
