package queue

import (
	"time"

	"walk-in-service/counter-queue-server/pkg/config"
	"walk-in-service/counter-queue-server/pkg/infra"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"go.uber.org/zap"
)

// StatsView is a copy of the stats taken under the queue lock.
type StatsView struct {
	// Tickets still waiting, priority ones included.
	Waiting int `json:"waiting"`

	WaitingPriority int `json:"waitingPriority"`

	// Served tickets that have not been deleted yet.
	Served int `json:"served"`

	// Position of the first waiting ticket, 0 when nobody waits.
	HeadPosition int `json:"headPosition"`

	// Position of the last ticket in line, 0 when the line is empty.
	TailPosition int `json:"tailPosition"`

	// Avg wait time between enrollment and service. Calculated by a
	// fixed size sliding window.
	AvgWaitDuration time.Duration `json:"avgWaitDuration"`
}

type Stats struct {
	view StatsView

	// A fixed size sliding window for calculating average wait time.
	waitDurationQueue *linkedlistqueue.Queue

	config *config.Config

	logger *zap.SugaredLogger
}

func ProvideStats(config *config.Config, loggerFactory *infra.LoggerFactory) *Stats {
	return &Stats{
		view: StatsView{
			AvgWaitDuration: time.Duration(*config.InitAvgWaitSeconds) * time.Second,
		},
		waitDurationQueue: linkedlistqueue.New(),
		config:            config,
		logger:            loggerFactory.Create("Stats").Sugar(),
	}
}

// recount rebuilds the counters from the whole line.
func (s *Stats) recount(tickets []*Ticket) {
	view := StatsView{AvgWaitDuration: s.view.AvgWaitDuration}
	for _, ticket := range tickets {
		if ticket.Served {
			view.Served++
			continue
		}

		view.Waiting++
		if ticket.Class == Priority {
			view.WaitingPriority++
		}
		if view.HeadPosition == 0 {
			view.HeadPosition = ticket.Position
		}
	}
	if len(tickets) > 0 {
		view.TailPosition = tickets[len(tickets)-1].Position
	}
	s.view = view
}

func (s *Stats) updateAvgWait(waitDurations []time.Duration) {
	if len(waitDurations) == 0 {
		return
	}

	for _, value := range waitDurations {
		if s.waitDurationQueue.Size() >= *s.config.AverageWaitWindowSize {
			s.waitDurationQueue.Dequeue()
		}
		s.waitDurationQueue.Enqueue(value)
	}

	if s.waitDurationQueue.Size() <= 0 {
		return
	}

	it := s.waitDurationQueue.Iterator()
	var totalWaitDuration time.Duration
	for it.Next() {
		totalWaitDuration += it.Value().(time.Duration)
	}

	s.view.AvgWaitDuration = totalWaitDuration / time.Duration(s.waitDurationQueue.Size())
	s.logger.Debugf("updated avgWaitDuration[%v]", s.view.AvgWaitDuration)
}
