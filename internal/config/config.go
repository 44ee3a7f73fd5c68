package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort       string
	DBDriver         string
	DBDSN            string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	JWTSecret        string
	SessionTTL       time.Duration
	SimulatedLatency time.Duration
	SeedDemoData     bool
	ResetDB          bool
	SwaggerHost      string
	LogLevel         string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return FromViper(newViper())
}

// FromViper builds Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:       v.GetString("server_port"),
		DBDriver:         strings.ToLower(v.GetString("db_driver")),
		DBDSN:            v.GetString("db_dsn"),
		RedisAddr:        v.GetString("redis_addr"),
		RedisDB:          v.GetInt("redis_db"),
		RedisPass:        v.GetString("redis_password"),
		JWTSecret:        v.GetString("jwt_secret"),
		SessionTTL:       v.GetDuration("session_ttl"),
		SimulatedLatency: v.GetDuration("simulated_latency"),
		SeedDemoData:     v.GetBool("seed_demo_data"),
		ResetDB:          v.GetBool("reset_db"),
		SwaggerHost:      v.GetString("swagger_host"),
		LogLevel:         v.GetString("log_level"),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "file:libraryhub?mode=memory&cache=shared")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_password", "")
	v.SetDefault("jwt_secret", "change-me")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("simulated_latency", time.Duration(0))
	v.SetDefault("seed_demo_data", true)
	v.SetDefault("reset_db", false)
	v.SetDefault("swagger_host", "")
	v.SetDefault("log_level", "info")
}
