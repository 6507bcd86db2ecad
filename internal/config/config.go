package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Log      LogConfig
	Import   ImportConfig
	Azure    AzureConfig
	Seed     SeedConfig
}

type AppConfig struct {
	AppName       string
	Environment   string
	HTTPPort      string
	CORSOrigins   []string
	MigrationsDir string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ImportConfig controls spreadsheet uploads.
type ImportConfig struct {
	BatchSize    int
	MaxUploadMB  int
	TempDir      string
	CleanupDelay time.Duration
}

type AzureConfig struct {
	TenantID string
	ClientID string
	JWKSURL  string
	JWKSTTL  time.Duration
}

// Enabled reports whether Azure AD tokens should be accepted.
func (c AzureConfig) Enabled() bool {
	return c.TenantID != ""
}

type SeedConfig struct {
	SuperAdminName     string
	SuperAdminEmail    string
	SuperAdminPassword string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:       req("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		CORSOrigins:   splitList(opt("CORS_ORIGINS", "http://localhost:3000")),
		MigrationsDir: opt("MIGRATIONS_DIR", ""),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST", "localhost"),
		DBPort:                opt("DB_PORT", "5432"),
		DBName:                opt("DB_NAME", "contact_tracker"),
		DBUser:                opt("DB_USER", "postgres"),
		DBPassword:            opt("DB_PASSWORD", ""),
		DBSSLMode:             opt("DB_SSL_MODE", "disable"),
		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  dur("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: dur("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR", "localhost:6379"),
		Password: opt("REDIS_PASSWORD", ""),
		DB:       num("REDIS_DB", 0),
		TTL:      dur("CACHE_TTL", 60*time.Second),
	}

	cfg.Log = LogConfig{
		Level:  opt("LOG_LEVEL", "info"),
		Format: opt("LOG_FORMAT", "json"),
	}

	cfg.Import = ImportConfig{
		BatchSize:    num("IMPORT_BATCH_SIZE", 400),
		MaxUploadMB:  num("IMPORT_MAX_UPLOAD_MB", 20),
		TempDir:      opt("IMPORT_TEMP_DIR", os.TempDir()),
		CleanupDelay: dur("IMPORT_CLEANUP_DELAY", 100*time.Millisecond),
	}
	if cfg.Import.BatchSize == 0 {
		invalid = append(invalid, "IMPORT_BATCH_SIZE")
	}

	tenant := opt("AZURE_TENANT_ID", "")
	jwksURL := opt("AZURE_JWKS_URL", "")
	if jwksURL == "" && tenant != "" {
		jwksURL = fmt.Sprintf("https://login.microsoftonline.com/%s/discovery/v2.0/keys", tenant)
	}
	cfg.Azure = AzureConfig{
		TenantID: tenant,
		ClientID: opt("AZURE_CLIENT_ID", ""),
		JWKSURL:  jwksURL,
		JWKSTTL:  dur("AZURE_JWKS_TTL", 10*time.Minute),
	}

	cfg.Seed = SeedConfig{
		SuperAdminName:     opt("SUPERADMIN_NAME", "Super Admin"),
		SuperAdminEmail:    opt("SUPERADMIN_EMAIL", ""),
		SuperAdminPassword: opt("SUPERADMIN_PASSWORD", ""),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// MaxUploadBytes is the request body limit for imports.
func (c ImportConfig) MaxUploadBytes() int {
	if c.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return c.MaxUploadMB << 20
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
