package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/leasebot/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Scheduler    sharedConfig.SchedulerConfig    `mapstructure:"scheduler"`
	Telegram     sharedConfig.TelegramConfig     `mapstructure:"telegram"`
	ExchangeRate sharedConfig.ExchangeRateConfig `mapstructure:"exchange_rate"`
	Provisioning sharedConfig.ProvisioningConfig `mapstructure:"provisioning"`
	Admin        sharedConfig.AdminConfig        `mapstructure:"admin"`
}

const envPrefix = "LEASEBOT"

// legacyEnv maps config keys to the variable names older deployments set in
// their .env file. The prefixed variable wins when both are present.
var legacyEnv = map[string][]string{
	"telegram.token":           {"BOT_TOKEN"},
	"telegram.admin_chat_id":   {"ADMIN_TELEGRAM_ID", "ADMIN_ID"},
	"telegram.ssh_host":        {"SSH_HOSTNAME"},
	"telegram.ssh_port":        {"SSH_PORT"},
	"database.dsn":             {"DB_STRING"},
	"exchange_rate.api_key":    {"EXCHANGE_RATE_API_KEY", "EXCHANGE_API_ID"},
	"server.timezone":          {"TIME_ZONE"},
	"scheduler.deduction_hour": {"DEDUCTION_HOUR"},
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (optional), an optional .env file and the
// environment. env overrides server.mode when set.
func Load(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalizeLegacyDSN(&config.Database)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func (c *Config) Validate() error {
	var errs []error
	if h := c.Scheduler.DeductionHour; h < 0 || h > 23 {
		errs = append(errs, fmt.Errorf("scheduler.deduction_hour must be 0-23, got %d", h))
	}
	if m := c.Scheduler.DeductionMinute; m < 0 || m > 59 {
		errs = append(errs, fmt.Errorf("scheduler.deduction_minute must be 0-59, got %d", m))
	}
	switch c.Scheduler.JobStore {
	case "redis", "database":
	default:
		errs = append(errs, fmt.Errorf("scheduler.job_store must be redis or database, got %q", c.Scheduler.JobStore))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite, mysql or postgres, got %q", c.Database.Driver))
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required when telegram is enabled"))
	}
	if p := c.Telegram.SSHPort; p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("telegram.ssh_port must be 1-65535, got %d", p))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether a Redis connection is needed.
func (c *Config) UsesRedis() bool {
	return c.Redis.Enabled || c.Scheduler.JobStore == "redis"
}

func bindLegacyEnv(v *viper.Viper) error {
	for key, names := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// normalizeLegacyDSN accepts the sqlite:///path URLs older deployments used.
func normalizeLegacyDSN(d *sharedConfig.DatabaseConfig) {
	if path, ok := strings.CutPrefix(d.DSN, "sqlite:///"); ok {
		d.Driver = "sqlite"
		d.DSN = path
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timezone", "Asia/Kolkata")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.database", "leasebot.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Scheduler defaults
	v.SetDefault("scheduler.job_store", "database")
	v.SetDefault("scheduler.key_prefix", "leasebot:jobs")
	v.SetDefault("scheduler.deduction_hour", 0)
	v.SetDefault("scheduler.deduction_minute", 0)
	v.SetDefault("scheduler.notify_before", "24h")
	v.SetDefault("scheduler.notify_tolerance", "12h")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.ssh_host", "localhost")
	v.SetDefault("telegram.ssh_port", 22)

	// Exchange rate defaults
	v.SetDefault("exchange_rate.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("exchange_rate.cache_ttl", "1h")

	// Provisioning defaults
	v.SetDefault("provisioning.enabled", false)
	v.SetDefault("provisioning.shell", "/bin/bash")
	v.SetDefault("provisioning.home_root", "/home")
	v.SetDefault("provisioning.use_sudo", true)

	// Admin API defaults
	v.SetDefault("admin.rate_limit", 120)
}
