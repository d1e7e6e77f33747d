package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`

	Settlement SettlementConfig `mapstructure:"settlement"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	SettlementPass    string `mapstructure:"settlement_pass"`
	NotificationPrune string `mapstructure:"notification_prune"`
}

type SettlementConfig struct {
	// GameLookback bounds how far back the pass scans final games.
	GameLookback     time.Duration `mapstructure:"game_lookback"`
	PendingBatchSize int           `mapstructure:"pending_batch_size"`
	// ReviewMinScore is the minimum heuristic match score that files a
	// settlement review for confirmation.
	ReviewMinScore int `mapstructure:"review_min_score"`
}

type AlertsConfig struct {
	// Timezone defines local midnight for daily notification caps and
	// the quiet-hours clock.
	Timezone        string        `mapstructure:"timezone"`
	RetentionPeriod time.Duration `mapstructure:"retention_period"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.settlement_pass", "@every 1m")
	v.SetDefault("cron.notification_prune", "@every 6h")

	v.SetDefault("settlement.game_lookback", "48h")
	v.SetDefault("settlement.pending_batch_size", 500)
	v.SetDefault("settlement.review_min_score", 60)

	v.SetDefault("alerts.timezone", "America/New_York")
	v.SetDefault("alerts.retention_period", "720h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
