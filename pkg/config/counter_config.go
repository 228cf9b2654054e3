package config

import (
	"context"
	"sync"
	"time"

	"walk-in-service/counter-queue-server/pkg/infra"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// CounterConfig redis key.
	cfgRedisKey = "config"

	// Stats are published into this redis hash for dashboards.
	statsRedisKey = "stats"

	redisTimeout = 2 * time.Second
)

type counterSettings struct {
	// If false, enrollment is rejected. Operators close the counter
	// near the end of the day so the line can drain.
	IsOpen bool `redis:"isOpen"`

	// If false, priority enrollment appends to the end of the line
	// like a normal one.
	IsPriorityEnabled bool `redis:"isPriorityEnabled"`
}

func defaultCounterSettings() counterSettings {
	return counterSettings{
		IsOpen:            true,
		IsPriorityEnabled: true,
	}
}

// CounterConfig holds settings operators may change at run time. They are
// reloaded from redis periodically. A nil redis client keeps the defaults.
type CounterConfig struct {
	settings     counterSettings
	settingsLock sync.RWMutex

	config      *Config
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func ProvideCounterConfig(config *Config, redisClient *redis.Client, loggerFactory *infra.LoggerFactory) *CounterConfig {
	return &CounterConfig{
		settings:    defaultCounterSettings(),
		config:      config,
		redisClient: redisClient,
		logger:      loggerFactory.Create("CounterConfig").Sugar(),
	}
}

func (c *CounterConfig) IsOpen() bool {
	c.settingsLock.RLock()
	defer c.settingsLock.RUnlock()
	return c.settings.IsOpen
}

func (c *CounterConfig) IsPriorityEnabled() bool {
	c.settingsLock.RLock()
	defer c.settingsLock.RUnlock()
	return c.settings.IsPriorityEnabled
}

func (c *CounterConfig) set(settings counterSettings) {
	c.settingsLock.Lock()
	defer c.settingsLock.Unlock()
	c.settings = settings
}

func (c *CounterConfig) Run() {
	if c.redisClient == nil {
		c.logger.Infof("redis disabled, keep default config[%+v]", c.settings)
		return
	}

	ticker := time.NewTicker(time.Duration(*c.config.CounterConfigIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for ; true; <-ticker.C {
		if err := c.Reload(context.Background()); err != nil {
			c.logger.Errorf("err reading config from redis %v", err)
		}
	}
}

// Reload reads the redis hash once. Fields missing from the hash keep their
// default value.
func (c *CounterConfig) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	result := c.redisClient.HGetAll(ctx, cfgRedisKey)
	if err := result.Err(); err != nil {
		return err
	}

	// Missing fields keep their default value.
	settings := defaultCounterSettings()
	if len(result.Val()) > 0 {
		if err := result.Scan(&settings); err != nil {
			return err
		}
	}

	c.set(settings)
	c.logger.Debugf("updated config[%+v]", settings)
	return nil
}

// PublishStats writes queue counters for external dashboards. It is a no-op
// when redis is disabled.
func (c *CounterConfig) PublishStats(ctx context.Context, waiting int, served int, avgWait time.Duration) error {
	if c == nil || c.redisClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	_, err := c.redisClient.HSet(ctx, statsRedisKey,
		"waiting", waiting,
		"served", served,
		"avgWaitMsec", avgWait.Milliseconds(),
	).Result()
	return err
}
