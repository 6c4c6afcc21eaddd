package config

// Redis backs the HTTP response cache for the static liveness routes.  The
// client parameters are loaded from environment variables.  If the server
// cannot be reached during startup the constructor returns nil and callers
// disable caching.

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT - hostname and port of the Redis server
//	REDIS_ADDR - host:port shorthand (host/port take precedence when both are set)
//	REDIS_PASSWORD - optional password
//	REDIS_DB - database number (default 0)
//	REDIS_TLS - enable TLS when "true" or "1"
//
// The returned client is nil if a connection cannot be established.
func NewRedisClient(ctx context.Context) *redis.Client {
	client := redis.NewClient(redisOptions())
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions() *redis.Options {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	return &redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        envInt("REDIS_DB", 0),
		TLSConfig: tlsConf,
	}
}
