package config

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host string `split_words:"true" default:"localhost"`
	Port string `split_words:"true" default:"8080"`
}

type RedisCache struct {
	Enabled  bool   `split_words:"true" default:"false"`
	Host     string `split_words:"true" default:"redis"`
	Port     string `split_words:"true" default:"6379"`
	Password string `split_words:"true" default:"shared"`
	DB       int    `split_words:"true" default:"0"`
	Prefix   string `split_words:"true" default:"moviematch"`
}

type Postgres struct {
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"5432"`
	User     string `split_words:"true" default:"admin"`
	Password string `split_words:"true" default:"shared"`
	Name     string `split_words:"true" default:"test"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageBadger   = "badger"

	CatalogMemory   = "memory"
	CatalogPostgres = "postgres"
	CatalogQdrant   = "qdrant"
)

type Storage struct {
	Driver     string `split_words:"true" default:"memory"`
	SqlitePath string `split_words:"true" default:"moviematch.db"`
	BadgerDir  string `split_words:"true" default:"data/badger"`
}

type Catalog struct {
	Driver string `split_words:"true" default:"memory"`
	Seed   bool   `split_words:"true" default:"true"`
}

type Qdrant struct {
	Host       string `split_words:"true" default:"localhost"`
	Port       int    `split_words:"true" default:"6334"`
	APIKey     string `split_words:"true"`
	UseTLS     bool   `split_words:"true" default:"false"`
	Collection string `split_words:"true" default:"movies"`
	Limit      uint32 `split_words:"true" default:"500"`
}

type Rooms struct {
	Retention       time.Duration `split_words:"true" default:"24h"`
	SweepInterval   time.Duration `split_words:"true" default:"5m"`
	MaxCodeAttempts int           `split_words:"true" default:"16"`
}

type Token struct {
	Secret string        `split_words:"true"`
	TTL    time.Duration `split_words:"true" default:"24h"`
}

type Config struct {
	HTTP     HTTPServer `envconfig:"HTTP"`
	Redis    RedisCache `envconfig:"REDIS"`
	Postgres Postgres   `envconfig:"DB"`
	Storage  Storage    `envconfig:"STORAGE"`
	Catalog  Catalog    `envconfig:"CATALOG"`
	Qdrant   Qdrant     `envconfig:"QDRANT"`
	Rooms    Rooms      `envconfig:"ROOMS"`
	Token    Token      `envconfig:"TOKEN"`
	LogLevel string     `split_words:"true" default:"info"`
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("%s err parsing env : %v", logtag, err)
	}

	log.Printf("%s storage=%s catalog=%s redis=%t http=%s:%s", logtag,
		cfg.Storage.Driver, cfg.Catalog.Driver, cfg.Redis.Enabled, cfg.HTTP.Host, cfg.HTTP.Port)
	return cfg
}

// FromEnv parses the process environment without touching flags or env files.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
