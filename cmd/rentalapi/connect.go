package main

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/rentcar/rental-api/internal/infrastructure/db/mongo"
	"github.com/rentcar/rental-api/internal/infrastructure/db/redis"
)

// Startup connection attempts back off exponentially from connectBaseDelay.
const (
	connectAttempts  = 5
	connectBaseDelay = 500 * time.Millisecond
)

func connectBackoff() retry.Backoff {
	return retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBaseDelay))
}

// connectMongo dials MongoDB, retrying while the server is not reachable yet.
func connectMongo(ctx context.Context, cfg mongo.Config, log zerolog.Logger) (*gomongo.Client, *gomongo.Database, error) {
	var (
		client *gomongo.Client
		db     *gomongo.Database
	)
	err := retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		var err error
		client, db, err = mongo.Connect(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("mongo not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").With("database", cfg.Database).Wrapf(err, "connect to mongo")
	}
	return client, db, nil
}

// connectRedis dials Redis, retrying while the server is not reachable yet.
func connectRedis(ctx context.Context, cfg redis.Config, log zerolog.Logger) (*goredis.Client, error) {
	var client *goredis.Client
	err := retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		var err error
		client, err = redis.Connect(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("redis not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("CACHE_CONNECT_FAILED").With("addr", cfg.Addr).Wrapf(err, "connect to redis")
	}
	return client, nil
}
