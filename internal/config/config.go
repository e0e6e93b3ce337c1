package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	StoreDriverMySQL  = "mysql"
	StoreDriverSQLite = "sqlite"
)

type Config struct {
	RPCURL          string
	RPCTimeout      time.Duration
	StoreDriver     string
	DBDSN           string
	SQLitePath      string
	RESTURL         string
	RESTAPIKey      string
	RedisAddr       string
	HTTPAddr        string
	OtelEndpoint    string
	ReferenceWallet string
	SyncInterval    time.Duration
	SyncBlockCount  int
	KafkaBrokers    []string
	KafkaTopic      string
	LogLevel        string
	LogFormat       string
}

// StoreConfigured reports whether a persistent store adapter can be built.
func (c Config) StoreConfigured() bool {
	switch c.StoreDriver {
	case StoreDriverMySQL:
		return strings.TrimSpace(c.DBDSN) != ""
	case StoreDriverSQLite:
		return strings.TrimSpace(c.SQLitePath) != ""
	default:
		return false
	}
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	rpcURL := "https://rpc.quai.network/cyprus1"
	if raw, ok := source.Lookup("RPC_URL"); ok && strings.TrimSpace(raw) != "" {
		rpcURL = strings.TrimSpace(raw)
	}

	rpcTimeout := 10 * time.Second
	if raw, ok := source.Lookup("RPC_TIMEOUT"); ok && raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RPC_TIMEOUT: %w", err)
		}
		rpcTimeout = duration
	}

	dbDSN, _ := source.Lookup("DB_DSN")
	dbDSN = strings.TrimSpace(dbDSN)
	sqlitePath, _ := source.Lookup("SQLITE_PATH")
	sqlitePath = strings.TrimSpace(sqlitePath)

	storeDriver := ""
	if raw, ok := source.Lookup("STORE_DRIVER"); ok && strings.TrimSpace(raw) != "" {
		storeDriver = strings.ToLower(strings.TrimSpace(raw))
	} else if dbDSN != "" {
		storeDriver = StoreDriverMySQL
	} else if sqlitePath != "" {
		storeDriver = StoreDriverSQLite
	}
	switch storeDriver {
	case "", StoreDriverMySQL, StoreDriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", storeDriver)
	}

	restURL, _ := source.Lookup("REST_URL")
	restAPIKey, _ := source.Lookup("REST_API_KEY")

	redisAddr := ""
	if raw, ok := source.Lookup("REDIS_ADDR"); ok {
		redisAddr = strings.TrimSpace(raw)
	}

	httpAddr := ":8080"
	if raw, ok := source.Lookup("HTTP_ADDR"); ok && raw != "" {
		httpAddr = raw
	}

	otelEndpoint, _ := source.Lookup("OTEL_EXPORTER_OTLP_ENDPOINT")
	otelEndpoint = strings.TrimSpace(otelEndpoint)

	referenceWallet := "0x002624Fa55DFf0ca53aF9166B4d44c16a294C4e0"
	if raw, ok := source.Lookup("REFERENCE_WALLET"); ok && strings.TrimSpace(raw) != "" {
		referenceWallet = strings.TrimSpace(raw)
	}

	syncInterval := 60 * time.Second
	if raw, ok := source.Lookup("SYNC_INTERVAL"); ok && raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
		}
		syncInterval = duration
	}

	syncBlockCount, err := parsePositiveIntEnv(source, "SYNC_BLOCK_COUNT", 10)
	if err != nil {
		return Config{}, err
	}

	kafkaBrokers := parseList(source, "KAFKA_BROKERS")
	kafkaTopic := "quaiscan-records"
	if raw, ok := source.Lookup("KAFKA_TOPIC"); ok && strings.TrimSpace(raw) != "" {
		kafkaTopic = strings.TrimSpace(raw)
	}

	logLevel, _ := source.Lookup("LOG_LEVEL")
	logFormat, _ := source.Lookup("LOG_FORMAT")

	return Config{
		RPCURL:          rpcURL,
		RPCTimeout:      rpcTimeout,
		StoreDriver:     storeDriver,
		DBDSN:           dbDSN,
		SQLitePath:      sqlitePath,
		RESTURL:         strings.TrimRight(strings.TrimSpace(restURL), "/"),
		RESTAPIKey:      strings.TrimSpace(restAPIKey),
		RedisAddr:       redisAddr,
		HTTPAddr:        httpAddr,
		OtelEndpoint:    otelEndpoint,
		ReferenceWallet: referenceWallet,
		SyncInterval:    syncInterval,
		SyncBlockCount:  syncBlockCount,
		KafkaBrokers:    kafkaBrokers,
		KafkaTopic:      kafkaTopic,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
	}, nil
}

func parsePositiveIntEnv(source EnvSource, key string, defaultValue int) (int, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	var value int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &value); err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return value, nil
}

func parseList(source EnvSource, key string) []string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	var values []string
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}
