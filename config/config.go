package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	DashboardOrigin   string `mapstructure:"DASHBOARD_ORIGIN"`

	// Upstream booking API.
	UpstreamBaseURL string        `mapstructure:"UPSTREAM_BASE_URL"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	// Redis configuration.
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB        int    `mapstructure:"REDIS_CACHE_DB"`
	RedisPrefsDB        int    `mapstructure:"REDIS_PREFS_DB"`
	RedisRecheckQueueDB int    `mapstructure:"REDIS_RECHECK_QUEUE_DB"`

	// Payment watcher tuning.
	ListPollPeriod    time.Duration `mapstructure:"LIST_POLL_PERIOD"`
	ConfirmPollPeriod time.Duration `mapstructure:"CONFIRM_POLL_PERIOD"`
	InlinePayCeiling  time.Duration `mapstructure:"INLINE_PAY_CEILING"`
	CallbackCeiling   time.Duration `mapstructure:"CALLBACK_CEILING"`
	DelayedAfter      time.Duration `mapstructure:"DELAYED_AFTER"`
	StuckAfter        time.Duration `mapstructure:"STUCK_AFTER"`

	// Cancellation fee display terms (percentages).
	LateCancelFeePct  int `mapstructure:"LATE_CANCEL_FEE_PCT"`
	EarlyCancelFeePct int `mapstructure:"EARLY_CANCEL_FEE_PCT"`
}

var AppConfig Config

// LoadConfig initializes Viper to load config values from env, file, or defaults.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DASHBOARD_ORIGIN", "http://localhost:3000")
	viper.SetDefault("UPSTREAM_BASE_URL", "http://localhost:9000/api")
	viper.SetDefault("UPSTREAM_TIMEOUT", 20*time.Second)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_PREFS_DB", 1)
	viper.SetDefault("REDIS_RECHECK_QUEUE_DB", 2)
	viper.SetDefault("LIST_POLL_PERIOD", 8*time.Second)
	viper.SetDefault("CONFIRM_POLL_PERIOD", 2*time.Second)
	viper.SetDefault("INLINE_PAY_CEILING", 5*time.Minute)
	viper.SetDefault("CALLBACK_CEILING", 3*time.Minute)
	viper.SetDefault("DELAYED_AFTER", 5*time.Minute)
	viper.SetDefault("STUCK_AFTER", 8*time.Minute)
	viper.SetDefault("LATE_CANCEL_FEE_PCT", 50)
	viper.SetDefault("EARLY_CANCEL_FEE_PCT", 25)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
