package config

import "time"

// Redis configures the product cache. An empty address disables caching.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_PRODUCT_TTL" envDefault:"5m"`
}
