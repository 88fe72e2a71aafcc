// Package config lee la configuración del proceso desde variables de entorno.
// Valores inválidos caen al default (no abortamos el arranque por un typo).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	LogLevel  string
	LogFormat string
	AppName   string

	Store   StoreConfig
	Catalog CatalogConfig

	InteractionThreshold     string
	InteractionBidirectional bool

	SearchDebounce time.Duration
	TickInterval   time.Duration
}

// StoreConfig selecciona el driver del key-value durable.
type StoreConfig struct {
	Driver     string // sqlite|postgres|s3|memory
	SQLitePath string
	DSN        string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3PathStyle bool

	// opcionales; sin ellas se usa la cadena default de AWS
	S3AccessKeyID     string
	S3SecretAccessKey string
}

type CatalogConfig struct {
	Driver     string // http|mongo|memory
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	CacheMaxMB int // techo de memoria del cache de detalles
	SeedFile   string

	MongoURL string
	MongoDB  string
}

const (
	DefaultPort           = "8080"
	DefaultSQLitePath     = "data/dose-timeline.db"
	DefaultCatalogTimeout = 5 * time.Second
	DefaultCacheTTL       = 30 * time.Minute
	DefaultCacheMaxMB     = 32
	DefaultSearchDebounce = 400 * time.Millisecond
	DefaultTickInterval   = time.Minute
)

func Load() Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom permite inyectar el lookup (tests).
func LoadFrom(getenv func(string) string) Config {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	return Config{
		Port:      get("PORT", DefaultPort),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "text"),
		AppName:   get("APP_NAME", "dose-timeline"),

		Store: StoreConfig{
			Driver:      strings.ToLower(get("STORE_DRIVER", "sqlite")),
			SQLitePath:  get("SQLITE_PATH", DefaultSQLitePath),
			DSN:         get("DB_DSN", ""),
			S3Bucket:    get("S3_BUCKET", ""),
			S3Region:    get("S3_REGION", "us-east-1"),
			S3Endpoint:  get("S3_ENDPOINT", ""),
			S3Prefix:    get("S3_PREFIX", "dose-timeline/"),
			S3PathStyle: parseBool(getenv("S3_PATH_STYLE"), false),

			S3AccessKeyID:     get("S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: get("S3_SECRET_ACCESS_KEY", ""),
		},

		Catalog: CatalogConfig{
			Driver:     strings.ToLower(get("CATALOG_DRIVER", "http")),
			BaseURL:    get("CATALOG_BASE_URL", "http://localhost:8001"),
			Timeout:    parseDuration(getenv("CATALOG_TIMEOUT"), DefaultCatalogTimeout),
			CacheTTL:   parseDuration(getenv("CATALOG_CACHE_TTL"), DefaultCacheTTL),
			CacheMaxMB: parsePositiveInt(getenv("CATALOG_CACHE_MAX_MB"), DefaultCacheMaxMB),
			SeedFile:   get("CATALOG_SEED_FILE", ""),
			MongoURL:   get("MONGO_URL", ""),
			MongoDB:    get("MONGO_DB", "app_db"),
		},

		InteractionThreshold:     get("INTERACTION_THRESHOLD", "Unsafe"),
		InteractionBidirectional: parseBool(getenv("INTERACTION_BIDIRECTIONAL"), false),

		SearchDebounce: parseDuration(getenv("SEARCH_DEBOUNCE"), DefaultSearchDebounce),
		TickInterval:   parseDuration(getenv("TICK_INTERVAL"), DefaultTickInterval),
	}
}

func (c Config) Addr() string { return ":" + c.Port }

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}

func parsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
