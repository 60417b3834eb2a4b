package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Database struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	Schema   string
}

// DSN builds the pgx connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.Schema,
	)
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type KAS struct {
	WalletURL  string
	TokenURL   string
	ChainID    string
	AccessKey  string
	SecretKey  string
	FeeAddress string
}

// Timeouts bound each remote call made by the purchase saga. A timeout is
// reported as the failure of the step that hit it.
type Timeouts struct {
	Wallet  time.Duration
	Catalog time.Duration
	Payment time.Duration
	Mint    time.Duration
	Refund  time.Duration
	Publish time.Duration
}

type Reconcile struct {
	Interval   time.Duration
	StaleAfter time.Duration
}

type Config struct {
	Port              string
	LogLevel          slog.Level
	CORSOrigins       []string
	EventBroker       string
	ChainMode         string
	MemberServiceURL  string
	ProductServiceURL string

	Database  Database
	Kafka     Kafka
	KAS       KAS
	Timeouts  Timeouts
	Reconcile Reconcile
}

const (
	BrokerKafka  = "kafka"
	BrokerMemory = "memory"

	ChainKAS       = "kas"
	ChainSimulated = "simulated"
)

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		Port:              r.str("PORT", "8080"),
		CORSOrigins:       splitCSV(r.str("CORS_ORIGINS", "http://localhost:3000")),
		EventBroker:       r.str("EVENT_BROKER", BrokerKafka),
		ChainMode:         r.str("CHAIN_MODE", ChainKAS),
		MemberServiceURL:  r.str("MEMBER_SERVICE_URL", "http://localhost:8081"),
		ProductServiceURL: r.str("PRODUCT_SERVICE_URL", "http://localhost:8082"),
		Database: Database{
			Host:     r.str("BLUEPRINT_DB_HOST", "localhost"),
			Port:     r.int("BLUEPRINT_DB_PORT", 5432),
			Name:     r.str("BLUEPRINT_DB_DATABASE", ""),
			User:     r.str("BLUEPRINT_DB_USERNAME", ""),
			Password: r.str("BLUEPRINT_DB_PASSWORD", ""),
			Schema:   r.str("BLUEPRINT_DB_SCHEMA", "public"),
		},
		Kafka: Kafka{
			Brokers: splitCSV(r.str("KAFKA_BROKERS", "localhost:9092")),
			Topic:   r.str("ORDER_TOPIC", "order"),
		},
		KAS: KAS{
			WalletURL:  r.str("KAS_BASE_URL", "https://wallet-api.klaytnapi.com"),
			TokenURL:   r.str("KAS_TH_URL", "https://kip17-api.klaytnapi.com"),
			ChainID:    r.str("KAS_CHAIN_ID", "1001"),
			AccessKey:  r.str("KAS_ACCESS_KEY", ""),
			SecretKey:  r.str("KAS_SECRET_KEY", ""),
			FeeAddress: r.str("KAS_FEE_ADDRESS", ""),
		},
		Timeouts: Timeouts{
			Wallet:  r.duration("WALLET_TIMEOUT", 3*time.Second),
			Catalog: r.duration("CATALOG_TIMEOUT", 3*time.Second),
			Payment: r.duration("PAYMENT_TIMEOUT", 10*time.Second),
			Mint:    r.duration("MINT_TIMEOUT", 15*time.Second),
			Refund:  r.duration("REFUND_TIMEOUT", 10*time.Second),
			Publish: r.duration("PUBLISH_TIMEOUT", 5*time.Second),
		},
		Reconcile: Reconcile{
			Interval:   r.duration("RECONCILE_INTERVAL", time.Minute),
			StaleAfter: r.duration("RECONCILE_STALE_AFTER", 5*time.Minute),
		},
	}
	cfg.LogLevel = r.level("LOG_LEVEL", slog.LevelInfo)

	r.problems = append(r.problems, cfg.validate()...)
	if len(r.problems) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(r.problems, "; "))
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var problems []string

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "BLUEPRINT_DB_PORT must be in 1..65535")
	}
	if c.Database.Name == "" {
		problems = append(problems, "BLUEPRINT_DB_DATABASE is required")
	}
	if c.Database.User == "" {
		problems = append(problems, "BLUEPRINT_DB_USERNAME is required")
	}

	switch c.EventBroker {
	case BrokerKafka:
		if len(c.Kafka.Brokers) == 0 {
			problems = append(problems, "KAFKA_BROKERS is required when EVENT_BROKER=kafka")
		}
	case BrokerMemory:
	default:
		problems = append(problems, fmt.Sprintf("EVENT_BROKER must be %q or %q", BrokerKafka, BrokerMemory))
	}
	if c.Kafka.Topic == "" {
		problems = append(problems, "ORDER_TOPIC must not be empty")
	}

	switch c.ChainMode {
	case ChainKAS:
		if c.KAS.AccessKey == "" || c.KAS.SecretKey == "" {
			problems = append(problems, "KAS_ACCESS_KEY and KAS_SECRET_KEY are required when CHAIN_MODE=kas")
		}
		if c.KAS.FeeAddress == "" {
			problems = append(problems, "KAS_FEE_ADDRESS is required when CHAIN_MODE=kas")
		}
	case ChainSimulated:
	default:
		problems = append(problems, fmt.Sprintf("CHAIN_MODE must be %q or %q", ChainKAS, ChainSimulated))
	}

	if c.Reconcile.Interval <= 0 {
		problems = append(problems, "RECONCILE_INTERVAL must be positive")
	}
	return problems
}

type reader struct {
	lookup   func(string) (string, bool)
	problems []string
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s must be an integer", key))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.problems = append(r.problems, fmt.Sprintf("%s must be a positive duration", key))
		return def
	}
	return d
}

func (r *reader) level(key string, def slog.Level) slog.Level {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s must be one of debug, info, warn, error", key))
		return def
	}
	return l
}

func splitCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
