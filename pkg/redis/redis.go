package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	URL          string        `envconfig:"REDIS_URL" required:"true"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

// Options translates the config into go-redis client options.
func (r *Config) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if r.ReadTimeout > 0 {
		opts.ReadTimeout = r.ReadTimeout
	}
	if r.WriteTimeout > 0 {
		opts.WriteTimeout = r.WriteTimeout
	}
	if r.DialTimeout > 0 {
		opts.DialTimeout = r.DialTimeout
	}
	return opts, nil
}

// New connects and pings Redis, closing the client again when the ping fails.
func (r *Config) New(ctx context.Context) (*redis.Client, error) {
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
