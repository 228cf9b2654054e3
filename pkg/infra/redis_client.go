package infra

import (
	"context"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// ProvideRedisClient returns nil without error when REDIS_HOST is unset.
// Components holding the client must treat nil as "redis disabled".
func ProvideRedisClient(loggerFactory *LoggerFactory) (*redis.Client, func(), error) {
	logger := loggerFactory.Create("RedisClient").Sugar()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		logger.Warnf("REDIS_HOST not set, counter config will use defaults")
		return nil, func() {}, nil
	}

	redisDb := 0
	if rawDb := os.Getenv("REDIS_DB"); rawDb != "" {
		db, err := strconv.Atoi(rawDb)
		if err != nil {
			logger.Errorf("invalid redis db[%v] %v", rawDb, err)
			return nil, nil, err
		}
		redisDb = db
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDb,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			logger.Infof("redis connected to host[%v] db[%v]", host, redisDb)
			return nil
		},
	})

	return client, func() {
		if err := client.Close(); err != nil {
			logger.Errorf("cannot close redis client %v", err)
		}
	}, nil
}
