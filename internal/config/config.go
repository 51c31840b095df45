package config

import "time"

// Default configuration values.
const (
	DefaultHTTPPort            = 8080
	DefaultProviderBaseURL     = "http://localhost:5001"
	DefaultProviderHealthPath  = "/health"
	DefaultRetryAttempts       = 3
	DefaultPerAttemptTimeoutMs = 5000
	DefaultBreakerThreshold    = 5
	DefaultBreakDurationMs     = 60000
	DefaultBackoffBaseSeconds  = 2.0
	DefaultJitterMaxMs         = 100
	DefaultBreakerEngine       = "native"
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "bff"
	DefaultServiceName         = "paybff"
)

// Config is the root configuration document.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Provider      ProviderConfig      `yaml:"provider" json:"provider"`
	Resilience    ResilienceConfig    `yaml:"resilience" json:"resilience"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
	RateLimit     RateLimitConfig     `yaml:"rateLimit" json:"rateLimit"`
}

// ServerConfig configures the inbound HTTP listener.
type ServerConfig struct {
	Host            string   `yaml:"host" json:"host"`
	Port            int      `yaml:"port" json:"port"`
	ReadTimeout     Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout" json:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// ProviderConfig configures the downstream payment provider.
type ProviderConfig struct {
	BaseURL             string   `yaml:"baseURL" json:"baseURL"`
	HealthPath          string   `yaml:"healthPath" json:"healthPath"`
	HealthTimeout       Duration `yaml:"healthTimeout" json:"healthTimeout"`
	MaxIdleConns        int      `yaml:"maxIdleConns" json:"maxIdleConns"`
	MaxIdleConnsPerHost int      `yaml:"maxIdleConnsPerHost" json:"maxIdleConnsPerHost"`
	IdleConnTimeout     Duration `yaml:"idleConnTimeout" json:"idleConnTimeout"`
	DialTimeout         Duration `yaml:"dialTimeout" json:"dialTimeout"`
}

// ResilienceConfig holds the provider call policy. It is read once at
// startup.
type ResilienceConfig struct {
	RetryAttempts       int     `yaml:"retryAttempts" json:"retryAttempts"`
	PerAttemptTimeoutMs int     `yaml:"perAttemptTimeoutMs" json:"perAttemptTimeoutMs"`
	BreakerThreshold    int     `yaml:"breakerThreshold" json:"breakerThreshold"`
	BreakDurationMs     int     `yaml:"breakDurationMs" json:"breakDurationMs"`
	BackoffBaseSeconds  float64 `yaml:"backoffBaseSeconds" json:"backoffBaseSeconds"`
	JitterMaxMs         int     `yaml:"jitterMaxMs" json:"jitterMaxMs"`
	BreakerEngine       string  `yaml:"breakerEngine" json:"breakerEngine"`
}

// PerAttemptTimeout returns the per-attempt deadline.
func (r ResilienceConfig) PerAttemptTimeout() time.Duration {
	return time.Duration(r.PerAttemptTimeoutMs) * time.Millisecond
}

// BreakDuration returns how long the breaker stays open.
func (r ResilienceConfig) BreakDuration() time.Duration {
	return time.Duration(r.BreakDurationMs) * time.Millisecond
}

// JitterMax returns the exclusive upper bound of retry jitter.
func (r ResilienceConfig) JitterMax() time.Duration {
	return time.Duration(r.JitterMaxMs) * time.Millisecond
}

// ObservabilityConfig represents observability configuration.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// TracingConfig represents tracing configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	Insecure     bool    `yaml:"insecure" json:"insecure"`
}

// RateLimitConfig configures inbound token-bucket limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond" json:"requestsPerSecond"`
	Burst             int  `yaml:"burst" json:"burst"`
	PerClient         bool `yaml:"perClient" json:"perClient"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultHTTPPort,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Provider: ProviderConfig{
			BaseURL:             DefaultProviderBaseURL,
			HealthPath:          DefaultProviderHealthPath,
			HealthTimeout:       Duration(2 * time.Second),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     Duration(90 * time.Second),
			DialTimeout:         Duration(10 * time.Second),
		},
		Resilience: ResilienceConfig{
			RetryAttempts:       DefaultRetryAttempts,
			PerAttemptTimeoutMs: DefaultPerAttemptTimeoutMs,
			BreakerThreshold:    DefaultBreakerThreshold,
			BreakDurationMs:     DefaultBreakDurationMs,
			BackoffBaseSeconds:  DefaultBackoffBaseSeconds,
			JitterMaxMs:         DefaultJitterMaxMs,
			BreakerEngine:       DefaultBreakerEngine,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
			Metrics: MetricsConfig{Enabled: true, Path: DefaultMetricsPath, Namespace: DefaultMetricsNamespace},
			Tracing: TracingConfig{SamplingRate: 1.0, ServiceName: DefaultServiceName},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
		},
	}
}
