package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cagewatch/live-tracker/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	InternalToken           string

	TrackInterval   time.Duration
	BackfillWorkers int

	ScrapeTimeout               time.Duration
	ScrapeMaxRetries            int
	ScrapeUserAgent             string
	ScrapeCircuitEnabled        bool
	ScrapeCircuitFailureCount   int
	ScrapeCircuitOpenTimeout    time.Duration
	ScrapeCircuitHalfOpenMaxReq int

	PushGateEnabled               bool
	PushGateBaseURL               string
	PushGateToken                 string
	PushGateTimeout               time.Duration
	PushGateCircuitEnabled        bool
	PushGateCircuitFailureCount   int
	PushGateCircuitOpenTimeout    time.Duration
	PushGateCircuitHalfOpenMaxReq int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	trackInterval, err := time.ParseDuration(getEnv("TRACK_INTERVAL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACK_INTERVAL: %w", err)
	}
	if trackInterval < 5*time.Second {
		return Config{}, fmt.Errorf("TRACK_INTERVAL must be >= 5s")
	}

	backfillWorkers, err := getEnvAsInt("BACKFILL_WORKERS", 4)
	if err != nil {
		return Config{}, err
	}
	if backfillWorkers < 1 {
		return Config{}, fmt.Errorf("BACKFILL_WORKERS must be >= 1")
	}

	scrapeTimeout, err := time.ParseDuration(getEnv("SCRAPE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_TIMEOUT: %w", err)
	}
	if scrapeTimeout <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_TIMEOUT must be > 0")
	}
	scrapeMaxRetries, err := getEnvAsInt("SCRAPE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	if scrapeMaxRetries < 0 {
		return Config{}, fmt.Errorf("SCRAPE_MAX_RETRIES must be >= 0")
	}
	scrapeCircuitEnabled, err := strconv.ParseBool(getEnv("SCRAPE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CIRCUIT_ENABLED: %w", err)
	}
	scrapeCircuitFailureCount, err := getEnvAsInt("SCRAPE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, err
	}
	if scrapeCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SCRAPE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	scrapeCircuitOpenTimeout, err := time.ParseDuration(getEnv("SCRAPE_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if scrapeCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	scrapeCircuitHalfOpenMaxReq, err := getEnvAsInt("SCRAPE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, err
	}
	if scrapeCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SCRAPE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	pushGateEnabled, err := strconv.ParseBool(getEnv("PUSHGATE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSHGATE_ENABLED: %w", err)
	}
	pushGateBaseURL := strings.TrimSpace(getEnv("PUSHGATE_BASE_URL", ""))
	if pushGateEnabled && pushGateBaseURL == "" {
		return Config{}, fmt.Errorf("PUSHGATE_BASE_URL is required when PUSHGATE_ENABLED=true")
	}
	pushGateTimeout, err := time.ParseDuration(getEnv("PUSHGATE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSHGATE_TIMEOUT: %w", err)
	}
	if pushGateTimeout <= 0 {
		return Config{}, fmt.Errorf("PUSHGATE_TIMEOUT must be > 0")
	}
	pushGateCircuitEnabled, err := strconv.ParseBool(getEnv("PUSHGATE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSHGATE_CIRCUIT_ENABLED: %w", err)
	}
	pushGateCircuitFailureCount, err := getEnvAsInt("PUSHGATE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, err
	}
	if pushGateCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PUSHGATE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	pushGateCircuitOpenTimeout, err := time.ParseDuration(getEnv("PUSHGATE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSHGATE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if pushGateCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("PUSHGATE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	pushGateCircuitHalfOpenMaxReq, err := getEnvAsInt("PUSHGATE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, err
	}
	if pushGateCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("PUSHGATE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "live-tracker"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		InternalToken:           strings.TrimSpace(getEnv("INTERNAL_TOKEN", "")),

		TrackInterval:   trackInterval,
		BackfillWorkers: backfillWorkers,

		ScrapeTimeout:               scrapeTimeout,
		ScrapeMaxRetries:            scrapeMaxRetries,
		ScrapeUserAgent:             strings.TrimSpace(getEnv("SCRAPE_USER_AGENT", "")),
		ScrapeCircuitEnabled:        scrapeCircuitEnabled,
		ScrapeCircuitFailureCount:   scrapeCircuitFailureCount,
		ScrapeCircuitOpenTimeout:    scrapeCircuitOpenTimeout,
		ScrapeCircuitHalfOpenMaxReq: scrapeCircuitHalfOpenMaxReq,

		PushGateEnabled:               pushGateEnabled,
		PushGateBaseURL:               pushGateBaseURL,
		PushGateToken:                 strings.TrimSpace(getEnv("PUSHGATE_TOKEN", "")),
		PushGateTimeout:               pushGateTimeout,
		PushGateCircuitEnabled:        pushGateCircuitEnabled,
		PushGateCircuitFailureCount:   pushGateCircuitFailureCount,
		PushGateCircuitOpenTimeout:    pushGateCircuitOpenTimeout,
		PushGateCircuitHalfOpenMaxReq: pushGateCircuitHalfOpenMaxReq,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         uptraceDSN,
		UptraceLogsEnabled: uptraceLogsEnabled,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q for %s", value, key)
	}
	return parsed, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
