package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
	StoreDSN       string        `mapstructure:"store_dsn"`
	Secret         string        `mapstructure:"secret"`
	CursorRate     int           `mapstructure:"cursor_rate"`
	CursorInterval time.Duration `mapstructure:"cursor_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("persist_timeout", "3s")
	v.SetDefault("store_dsn", "")
	v.SetDefault("secret", "sketchroom-dev-secret")
	v.SetDefault("cursor_rate", 60)
	v.SetDefault("cursor_interval", "1s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Store: %s\n", cfg.Mode, cfg.Port, dsnLabel(cfg.StoreDSN))
	return &cfg, nil
}

func dsnLabel(dsn string) string {
	if dsn == "" {
		return "memory"
	}
	return dsn
}
