package cfg

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Cache struct {
	CacheAddr     string `env:"CACHE_ADDR" env-default:"localhost:6379"`
	CachePassword string `env:"CACHE_PASSWORD"`
	CacheDB       int    `env:"CACHE_DB" env-default:"0"`
}

type PageCache struct {
	TTL          time.Duration `env:"PAGE_CACHE_TTL" env-default:"10s"`
	FetchTimeout time.Duration `env:"PAGE_FETCH_TIMEOUT" env-default:"30s"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
	JSON  bool   `env:"LOG_JSON" env-default:"true"`
}

type Config struct {
	Cache     Cache
	PageCache PageCache
	Log       Log
}

var cfg *Config

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if c.PageCache.TTL < time.Second {
		return Config{}, fmt.Errorf("invalid PAGE_CACHE_TTL: %s", c.PageCache.TTL)
	}

	return c, nil
}

// Get returns the process configuration, reading it on first use.
// It panics when the environment is invalid.
func Get() Config {
	if cfg != nil {
		return *cfg
	}

	c, err := Load()
	if err != nil {
		panic(err)
	}

	cfg = &c
	return c
}

func SetConfig(c Config) {
	cfg = &c
}
