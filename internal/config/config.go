// Package config loads mission-control settings from defaults, an optional
// config file, MC_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/mission-control/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. MC_GRPC_ADDR.
const EnvPrefix = "MC"

// Config is the fully resolved runtime configuration.
type Config struct {
	GRPCAddr    string `mapstructure:"grpc_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	Log     LogConfig     `mapstructure:"log"`
	Sim     SimConfig     `mapstructure:"sim"`
	Latency LatencyConfig `mapstructure:"latency"`
	Tracing TracingConfig `mapstructure:"tracing"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SimConfig struct {
	Tick        time.Duration `mapstructure:"tick"`
	Accelerated bool          `mapstructure:"accelerated"`
	// Seed pins the simulation randomness; 0 means seed from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// LatencyConfig holds the simulated latency of the slow console commands.
type LatencyConfig struct {
	GetData     time.Duration `mapstructure:"get_data"`
	PowerStatus time.Duration `mapstructure:"power_status"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	ServiceName string  `mapstructure:"service_name"`
}

// MQTTConfig enables telemetry publishing when Broker is set.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

var defaults = map[string]any{
	"grpc_addr":            ":50051",
	"metrics_addr":         ":9090",
	"log.level":            "info",
	"log.format":           "text",
	"sim.tick":             time.Second,
	"sim.accelerated":      false,
	"sim.seed":             uint64(0),
	"latency.get_data":     2 * time.Second,
	"latency.power_status": 1500 * time.Millisecond,
	"tracing.enabled":      false,
	"tracing.exporter":     "stdout",
	"tracing.endpoint":     "",
	"tracing.sample_ratio": 1.0,
	"tracing.service_name": "mission-control",
	"mqtt.broker":          "",
	"mqtt.client_id":       "mission-control",
	"mqtt.topic_prefix":    "mission-control",
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"grpc-addr":    "grpc_addr",
	"metrics-addr": "metrics_addr",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"tick":         "sim.tick",
	"accelerated":  "sim.accelerated",
	"seed":         "sim.seed",
	"mqtt-broker":  "mqtt.broker",
}

// New returns a viper instance with defaults and environment binding
// applied.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every known flag present in fs to its config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads path (when non-empty) into v and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate rejects settings the runtime cannot honour.
func (c Config) Validate() error {
	var errs []error
	if c.Sim.Tick <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick must be positive, got %s", c.Sim.Tick))
	}
	if c.Latency.GetData < 0 {
		errs = append(errs, fmt.Errorf("latency.get_data must not be negative, got %s", c.Latency.GetData))
	}
	if c.Latency.PowerStatus < 0 {
		errs = append(errs, fmt.Errorf("latency.power_status must not be negative, got %s", c.Latency.PowerStatus))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within [0,1], got %v", c.Tracing.SampleRatio))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
