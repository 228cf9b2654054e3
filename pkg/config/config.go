package config

import (
	"flag"
	"strings"
)

type Config struct {
	SeedNames     *string
	MaxNameLength *int

	InitAvgWaitSeconds    *int
	AverageWaitWindowSize *int

	NotifyStatsIntervalSeconds   *int
	CounterConfigIntervalSeconds *int
	SnapshotBufferSize           *int

	PingIntervalSeconds *int
}

var CFG = &Config{
	SeedNames:                    flag.String("seed-names", "Maria,José,Pedro", "Comma separated names enrolled as normal tickets when the server starts. Empty to start with an empty line."),
	MaxNameLength:                flag.Int("max-name-length", 20, "Max number of characters allowed in a customer name."),
	InitAvgWaitSeconds:           flag.Int("init-avg-wait-seconds", 180, "Initial default value of wait duration, used until the first ticket is served."),
	AverageWaitWindowSize:        flag.Int("average-wait-window-size", 50, "The size of sliding window for calculating average wait time of a ticket."),
	NotifyStatsIntervalSeconds:   flag.Int("notify-stats-interval-seconds", 5, "Interval to notify stats to display boards and redis."),
	CounterConfigIntervalSeconds: flag.Int("counter-config-interval-seconds", 5, "Interval to reload counter config from redis."),
	SnapshotBufferSize:           flag.Int("snapshot-buffer-size", 1024, "Buffer size of queue notification channels. Notifications are dropped when it's full."),
	PingIntervalSeconds:          flag.Int("ping-interval-seconds", 30, "Send pings to websocket peer with this interval."),
}

func ProvideConfig() *Config {
	if !flag.Parsed() {
		flag.Parse()
	}
	return CFG
}

// Seeds splits SeedNames, skipping blank entries.
func (c *Config) Seeds() []string {
	var names []string
	for _, name := range strings.Split(*c.SeedNames, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
