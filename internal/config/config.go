package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/log"
)

type Application struct {
	Env             string        `mapstructure:"env"              json:"env"`
	Host            string        `mapstructure:"host"             json:"host"`
	LogPath         string        `mapstructure:"log_path"         json:"log_path"`
	Port            int           `mapstructure:"port"             json:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

type Session struct {
	SecretKey       string        `mapstructure:"secret_key"       json:"-"`
	CookieName      string        `mapstructure:"cookie_name"      json:"cookie_name"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     json:"idle_timeout"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"        json:"token_ttl"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval" json:"janitor_interval"`
	Secure          bool          `mapstructure:"secure"           json:"secure"`
}

type Catalog struct {
	Source  string        `mapstructure:"source"   json:"source"`
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  json:"timeout"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Enabled  bool          `mapstructure:"enabled"  json:"enabled"`
	Host     string        `mapstructure:"host"     json:"host"`
	Password string        `mapstructure:"password" json:"-"`
	Database int           `mapstructure:"database" json:"database"`
	Port     uint16        `mapstructure:"port"     json:"port"`
	TTL      time.Duration `mapstructure:"ttl"      json:"ttl"`
}

type Otel struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Session     `mapstructure:"session"     json:"session"`
	Catalog     `mapstructure:"catalog"     json:"catalog"`
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.log_path", "/var/log/storefront.log")
	v.SetDefault("application.read_timeout", 45*time.Second)
	v.SetDefault("application.write_timeout", 45*time.Second)
	v.SetDefault("application.shutdown_timeout", 10*time.Second)
	v.SetDefault("session.secret_key", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.cookie_name", "storefront_session")
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.janitor_interval", time.Minute)
	v.SetDefault("session.token_ttl", 24*time.Hour)
	v.SetDefault("catalog.source", "fakestore")
	v.SetDefault("catalog.base_url", "https://fakestoreapi.com")
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("db.name", "storefront")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.username", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.migration_path", "file://product/migrations")
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.min_connections", 2)
	v.SetDefault("db.port", 5432)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.database", 0)
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.host", "localhost")
	v.SetDefault("otel.port", 4317)
}

// Load reads ./env/<filename>.yaml, overridden by environment variables such
// as CATALOG_SOURCE or SESSION_SECRET_KEY.
func Load(filename string, paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./env"}
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error when reading config with error=%w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config with error=%w", err)
	}
	return cfg, nil
}

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger.Info().Msg("reading config")
		cfg, err := Load(filename)
		if err != nil {
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("read config")
	})
	return config
}
