package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the gateway server.
type ServerConfig struct {
	Port        int
	MetricsAddr string
	APIKey      string
	ConfigFile  string
	LogLevel    string

	// AgentEndpoint is the upstream agent-execution URL the relay posts to.
	AgentEndpoint string
	// RequestTimeout bounds one whole upstream stream; zero disables it.
	RequestTimeout time.Duration
	SSEReadTimeout time.Duration

	SOPPrompt  string
	BasePrompt string

	RedisAddr  string
	JournalTTL time.Duration

	AllowedOrigins []string
	DrainTimeout   time.Duration
}

// BindFlags populates the struct with defaults from environment variables and
// binds command line flags so main can call flag.Parse().
func (c *ServerConfig) BindFlags() {
	port, _ := strconv.Atoi(getEnv("PORT", "8188"))
	c.Port = port
	c.MetricsAddr = getEnv("METRICS_ADDR", "")
	c.APIKey = getEnv("API_KEY", "")
	c.ConfigFile = getEnv("CONFIG_FILE", "")
	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.AgentEndpoint = getEnv("AGENT_ENDPOINT", "http://127.0.0.1:8080/AutoAgent")
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 0)
	c.SSEReadTimeout = getEnvDuration("SSE_READ_TIMEOUT", 30*time.Minute)
	c.SOPPrompt = getEnv("SOP_PROMPT", "")
	c.BasePrompt = getEnv("BASE_PROMPT", "")
	c.RedisAddr = getEnv("REDIS_ADDR", "")
	c.JournalTTL = getEnvDuration("JOURNAL_TTL", 24*time.Hour)
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	c.DrainTimeout = getEnvDuration("DRAIN_TIMEOUT", 30*time.Second)

	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the public API")
	flag.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "separate Prometheus listen address; empty serves /metrics on the API port")
	flag.StringVar(&c.APIKey, "api-key", c.APIKey, "client API key required for HTTP requests; leave empty to disable auth")
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "optional YAML config file; flags override file values")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (trace, debug, info, warn, error, none)")
	flag.StringVar(&c.AgentEndpoint, "agent-endpoint", c.AgentEndpoint, "upstream agent-execution endpoint URL")
	flag.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "maximum duration for one upstream stream; 0 disables")
	flag.DurationVar(&c.SSEReadTimeout, "sse-read-timeout", c.SSEReadTimeout, "idle read timeout on the upstream SSE connection")
	flag.StringVar(&c.SOPPrompt, "sop-prompt", c.SOPPrompt, "SOP prompt injected for planner requests")
	flag.StringVar(&c.BasePrompt, "base-prompt", c.BasePrompt, "base prompt injected for react requests")
	flag.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis address for the result journal; empty disables journaling")
	flag.DurationVar(&c.JournalTTL, "journal-ttl", c.JournalTTL, "retention for journaled stream outcomes")
	flag.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "grace period for in-flight streams on shutdown")
}

// fileConfig mirrors ServerConfig for YAML decoding. Durations are kept
// as strings ("90s", "5m") and parsed during the merge.
type fileConfig struct {
	Port           int      `yaml:"port"`
	MetricsAddr    string   `yaml:"metrics_addr"`
	APIKey         string   `yaml:"api_key"`
	LogLevel       string   `yaml:"log_level"`
	AgentEndpoint  string   `yaml:"agent_endpoint"`
	RequestTimeout string   `yaml:"request_timeout"`
	SSEReadTimeout string   `yaml:"sse_read_timeout"`
	SOPPrompt      string   `yaml:"sop_prompt"`
	BasePrompt     string   `yaml:"base_prompt"`
	RedisAddr      string   `yaml:"redis_addr"`
	JournalTTL     string   `yaml:"journal_ttl"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	DrainTimeout   string   `yaml:"drain_timeout"`
}

// LoadFile overlays values from a YAML file. Zero-valued fields in the file
// leave the current value untouched, so flags keep precedence when main
// applies them after parsing.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f fileConfig
	if err := yaml.Unmarshal(b, &f); err != nil {
		return err
	}
	return merge(c, &f)
}

func merge(dst *ServerConfig, src *fileConfig) error {
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.MetricsAddr != "" {
		dst.MetricsAddr = src.MetricsAddr
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.AgentEndpoint != "" {
		dst.AgentEndpoint = src.AgentEndpoint
	}
	if src.SOPPrompt != "" {
		dst.SOPPrompt = src.SOPPrompt
	}
	if src.BasePrompt != "" {
		dst.BasePrompt = src.BasePrompt
	}
	if src.RedisAddr != "" {
		dst.RedisAddr = src.RedisAddr
	}
	if len(src.AllowedOrigins) != 0 {
		dst.AllowedOrigins = src.AllowedOrigins
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{src.RequestTimeout, &dst.RequestTimeout},
		{src.SSEReadTimeout, &dst.SSEReadTimeout},
		{src.JournalTTL, &dst.JournalTTL},
		{src.DrainTimeout, &dst.DrainTimeout},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config: invalid duration %q: %w", d.raw, err)
		}
		*d.dst = v
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
