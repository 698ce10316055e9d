package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/inexplicable/redis_checker/model"
	"github.com/inexplicable/redis_checker/store"
)

// EnvPrefix prefixes every environment override, e.g. REDIS_CHECKER_PORT
const EnvPrefix = "REDIS_CHECKER"

// ErrInvalid is returned when a loaded value is out of range
var ErrInvalid = errors.New("invalid config")

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds one run's configuration, merged from flags, env and an optional yaml file
type Config struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Password      string        `mapstructure:"password"`
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ConsulAddr    string        `mapstructure:"consul-addr"`
	ConsulService string        `mapstructure:"consul-service"`
	SecretsPath   string        `mapstructure:"secrets-path"`
	Output        string        `mapstructure:"output"`
	Textfile      string        `mapstructure:"textfile"`

	Seconds int `mapstructure:"seconds"`

	Pattern string  `mapstructure:"pattern"`
	Top     int     `mapstructure:"top"`
	DB      int     `mapstructure:"db"`
	Prefix  string  `mapstructure:"prefix"`
	Count   int64   `mapstructure:"count"`
	Rate    float64 `mapstructure:"rate"`

	Thresholds model.Thresholds `mapstructure:"thresholds"`
}

// RegisterPersistentFlags declares the flags every subcommand shares
func RegisterPersistentFlags(flags *pflag.FlagSet) {
	flags.String("host", "127.0.0.1", "redis host")
	flags.Int("port", store.DefaultPort, "redis port")
	flags.String("password", "", "redis password")
	flags.String("url", "", "redis target as host:port:password, wins over host/port/password")
	flags.Duration("timeout", store.DefaultTimeout, "dial and round trip timeout")
	flags.String("config", "", "optional yaml config file")
	flags.String("consul-addr", "", "consul http address, defaults to CONSUL_HTTP_ADDR")
	flags.String("consul-service", "", "resolve the redis target from this consul service")
	flags.String("secrets-path", "", "json secrets file with consul_token and redis_password")
	flags.String("output", OutputText, "report format: text, json or yaml")
	flags.String("textfile", "", "also write prometheus textfile gauges to this path")
}

// RegisterCheckFlags declares the `check` flags
func RegisterCheckFlags(flags *pflag.FlagSet) {
	flags.Int("seconds", model.DefaultWindow, "sampling window in seconds, at least 2")
}

// RegisterKeysFlags declares the `keys` flags
func RegisterKeysFlags(flags *pflag.FlagSet) {
	flags.String("pattern", "*", "SCAN match pattern")
	flags.Int("top", 0, "keep the N largest keys per type, 0 streams every key")
	flags.Int("db", 0, "database to select")
	flags.String("prefix", model.DefaultDelimiter, "prefix delimiter")
	flags.Int64("count", model.DefaultPageSize, "SCAN count hint")
	flags.Float64("rate", 0, "type/size probes per second, 0 is unlimited")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", store.DefaultPort)
	v.SetDefault("timeout", store.DefaultTimeout.String())
	v.SetDefault("output", OutputText)
	v.SetDefault("seconds", model.DefaultWindow)
	v.SetDefault("pattern", "*")
	v.SetDefault("prefix", model.DefaultDelimiter)
	v.SetDefault("count", model.DefaultPageSize)

	v.SetDefault("top", 0)
	v.SetDefault("db", 0)
	v.SetDefault("rate", 0.0)

	// keys without a default are invisible to AutomaticEnv
	for _, key := range []string{"password", "url", "consul-addr", "consul-service", "secrets-path", "textfile"} {
		v.SetDefault(key, "")
	}

	thresholds := model.DefaultThresholds()
	v.SetDefault("thresholds.keys-gap", thresholds.KeysGap)
	v.SetDefault("thresholds.conn-gap", thresholds.ConnGap)
	v.SetDefault("thresholds.max-clients-floor", thresholds.MaxClientsFloor)
	v.SetDefault("thresholds.max-clients-recommended", thresholds.MaxClientsRecommended)
	v.SetDefault("thresholds.replica-memory-floor", thresholds.ReplicaMemoryFloor)
	v.SetDefault("thresholds.replica-hard-limit-floor", thresholds.ReplicaHardLimitFloor)
}

// Load merges `flags`, the environment and the yaml file named by `--config`, in that order of precedence
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Infof("<config> using config file: %s\n", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.Seconds = model.ClampWindow(cfg.Seconds)
	cfg.Output = strings.ToLower(cfg.Output)
	switch cfg.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: unknown output %q", ErrInvalid, cfg.Output)
	}
	if cfg.Top < 0 {
		return fmt.Errorf("%w: top must not be negative", ErrInvalid)
	}
	if cfg.DB < 0 {
		return fmt.Errorf("%w: db must not be negative", ErrInvalid)
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("%w: rate must not be negative", ErrInvalid)
	}
	if cfg.Count <= 0 {
		cfg.Count = model.DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = store.DefaultTimeout
	}
	if cfg.URL != "" {
		target, err := store.ParseAddress(cfg.URL)
		if err != nil {
			return err
		}
		cfg.Host, cfg.Port = target.Host, target.Port
		if target.Password != "" {
			cfg.Password = target.Password
		}
	}
	return nil
}

// Target is the configured redis endpoint
func (cfg *Config) Target() store.Target {
	return store.Target{Host: cfg.Host, Port: cfg.Port, Password: cfg.Password}
}

// StoreOptions are the connection options of `target`
func (cfg *Config) StoreOptions(target store.Target) store.Options {
	return store.Options{Target: target, DB: cfg.DB, Timeout: cfg.Timeout}
}
