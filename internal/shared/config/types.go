package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver selects the gorm dialector: sqlite, mysql or postgres.
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the explicit DSN when set, otherwise builds one for the driver.
func (d *DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database)
	default:
		if d.Database == "" {
			return "leasebot.db"
		}
		return d.Database
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig is used when Enabled is set or the job store is redis.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type SchedulerConfig struct {
	// JobStore is either "redis" or "database".
	JobStore        string        `mapstructure:"job_store"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	DeductionHour   int           `mapstructure:"deduction_hour"`
	DeductionMinute int           `mapstructure:"deduction_minute"`
	NotifyBefore    time.Duration `mapstructure:"notify_before"`
	NotifyTolerance time.Duration `mapstructure:"notify_tolerance"`
}

type TelegramConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Token       string `mapstructure:"token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
	// SSHHost and SSHPort go into the login command sent with new accounts.
	SSHHost string `mapstructure:"ssh_host"`
	SSHPort int    `mapstructure:"ssh_port"`
	// Notes is appended to the new-account message when set.
	Notes string `mapstructure:"notes"`
}

type ExchangeRateConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ProvisioningConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Shell    string `mapstructure:"shell"`
	HomeRoot string `mapstructure:"home_root"`
	UseSudo  bool   `mapstructure:"use_sudo"`
}

type AdminConfig struct {
	APIToken string `mapstructure:"api_token"`
	// RateLimit is requests per minute per client IP; applied only with Redis.
	RateLimit int `mapstructure:"rate_limit"`
}
