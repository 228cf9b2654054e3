//go:build wireinject
// +build wireinject

package main

import (
	"walk-in-service/counter-queue-server/pkg/client"
	"walk-in-service/counter-queue-server/pkg/config"
	"walk-in-service/counter-queue-server/pkg/infra"
	"walk-in-service/counter-queue-server/pkg/notify"
	"walk-in-service/counter-queue-server/pkg/queue"

	"github.com/google/wire"
)

func Setup() (*Server, func(), error) {
	wire.Build(wire.NewSet(
		ProvideServer,
		ProvideApplication,
		config.ProvideConfig,
		config.ProvideCounterConfig,
		infra.ProvideLoggerFactory,
		infra.ProvideRedisClient,
		infra.ProvideHttpClient,
		queue.ProvideStats,
		queue.ProvideQueue,
		client.ProvideHub,
		notify.ProvideNotifier,
	))
	return nil, nil, nil
}
