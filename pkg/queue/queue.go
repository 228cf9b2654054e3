package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"walk-in-service/counter-queue-server/pkg/config"
	"walk-in-service/counter-queue-server/pkg/infra"

	"github.com/emirpasic/gods/lists/arraylist"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no ticket holds the requested position.
var ErrNotFound = errors.New("ticket not found")

// Snapshot is pushed to display boards after every change.
type Snapshot struct {
	Tickets []View
	Stats   StatsView
}

type Queue struct {
	// Notify a snapshot of the line after every change.
	NotifySnapshot chan *Snapshot

	// Notify each ticket right after it has been served.
	NotifyServed chan Ticket

	// Notify current stats of the queue.
	NotifyStats chan StatsView

	// The line, holding *Ticket in order. Served tickets stay in it
	// until they are deleted. Index i normally holds Position i+1,
	// except after tick-down and priority enrollment which both leave
	// positions as they are.
	ticketQueue *arraylist.List

	// Handlers run concurrently and tick-down touches every ticket,
	// so every operation holds this for its whole duration.
	lock sync.Mutex

	stats *Stats

	config *config.Config

	counterConfig *config.CounterConfig

	now func() time.Time

	logger *zap.SugaredLogger
}

func ProvideQueue(stats *Stats, config *config.Config, counterConfig *config.CounterConfig, loggerFactory *infra.LoggerFactory) *Queue {
	q := newQueue(stats, config, counterConfig, loggerFactory, time.Now)
	q.Seed(config.Seeds())
	return q
}

func newQueue(stats *Stats, config *config.Config, counterConfig *config.CounterConfig, loggerFactory *infra.LoggerFactory, now func() time.Time) *Queue {
	bufferSize := *config.SnapshotBufferSize
	return &Queue{
		NotifySnapshot: make(chan *Snapshot, bufferSize),
		NotifyServed:   make(chan Ticket, bufferSize),
		NotifyStats:    make(chan StatsView, bufferSize),
		ticketQueue:    arraylist.New(),

		stats:         stats,
		config:        config,
		counterConfig: counterConfig,
		now:           now,
		logger:        loggerFactory.Create("Queue").Sugar(),
	}
}

func (q *Queue) Run() {
	go q.statsWorker()
}

// Seed enrolls names as normal tickets. Names longer than MaxNameLength
// are skipped, like enrollment requests would be rejected.
func (q *Queue) Seed(names []string) {
	for _, name := range names {
		if utf8.RuneCountInString(name) > *q.config.MaxNameLength {
			q.logger.Warnf("skip seed name[%v] longer than maxNameLength[%v]", name, *q.config.MaxNameLength)
			continue
		}
		q.EnqueueNormal(name, Normal)
	}
	q.logger.Infof("seeded queue with names%v size[%v]", names, q.Len())
}

func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.ticketQueue.Size()
}

// ListActive returns waiting tickets in line order.
func (q *Queue) ListActive() []View {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.activeViews()
}

// GetByPosition returns the first ticket in line holding position, served
// or not.
func (q *Queue) GetByPosition(position int) (View, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	_, ticket := q.find(position)
	if ticket == nil {
		return View{}, fmt.Errorf("get position[%v]: %w", position, ErrNotFound)
	}
	return ticket.View(), nil
}

// EnqueueNormal appends to the end of the line no matter the class.
func (q *Queue) EnqueueNormal(name string, class Class) Ticket {
	q.lock.Lock()
	defer q.lock.Unlock()

	ticket := q.newTicket(name, class)
	q.ticketQueue.Add(ticket)
	ticket.Position = q.ticketQueue.Size()

	q.logger.Infof("inserted new ticket[%+v]", ticket)
	q.changed()
	return *ticket
}

// EnqueuePriority places a priority ticket right before the first normal
// one, or at the front when there is none. Normal tickets are appended.
// The new ticket takes the position after the current last ticket and
// nobody else is renumbered, so positions after the insertion point no
// longer match their rank until the next delete.
func (q *Queue) EnqueuePriority(name string, class Class) Ticket {
	q.lock.Lock()
	defer q.lock.Unlock()

	ticket := q.newTicket(name, class)
	ticket.Position = q.tailPosition() + 1

	if class != Priority {
		q.ticketQueue.Add(ticket)
		q.logger.Infof("inserted new ticket[%+v]", ticket)
		q.changed()
		return *ticket
	}

	index, _ := q.ticketQueue.Find(func(_ int, value interface{}) bool {
		return value.(*Ticket).Class == Normal
	})
	if index < 0 {
		index = 0
	}
	q.ticketQueue.Insert(index, ticket)

	q.logger.Infof("inserted priority ticket[%+v] at index[%v]", ticket, index)
	q.changed()
	return *ticket
}

// AdvanceSequential moves every ticket one step towards the counter. A
// ticket whose position reaches exactly 0 is served. Nothing happens when
// no ticket is waiting. Returns the tickets served by this call.
func (q *Queue) AdvanceSequential() []Ticket {
	q.lock.Lock()
	defer q.lock.Unlock()

	if !q.ticketQueue.Any(func(_ int, value interface{}) bool {
		return !value.(*Ticket).Served
	}) {
		q.logger.Debugf("no waiting ticket, skip tick-down")
		return nil
	}

	now := q.now()
	var served []Ticket
	q.ticketQueue.Each(func(_ int, value interface{}) {
		ticket := value.(*Ticket)
		ticket.Position--
		if ticket.Position == 0 && ticket.serve(now) {
			served = append(served, *ticket)
		}
	})

	q.logger.Infof("tick-down done, served ticketCnt[%v]", len(served))
	q.servedTickets(served)
	q.changed()
	return served
}

// AdvancePriority serves the first waiting ticket, looking at priority
// tickets before normal ones. Positions are left untouched.
func (q *Queue) AdvancePriority() (Ticket, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	view := q.tickets()
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Class == Priority && view[j].Class != Priority
	})

	now := q.now()
	for _, ticket := range view {
		if !ticket.serve(now) {
			continue
		}

		q.logger.Infof("served ticket[%+v]", ticket)
		q.servedTickets([]Ticket{*ticket})
		q.changed()
		return *ticket, true
	}

	q.logger.Debugf("no waiting ticket to serve")
	return Ticket{}, false
}

// DeleteByPosition removes the first ticket holding position and moves
// every ticket behind it one position up.
func (q *Queue) DeleteByPosition(position int) (Ticket, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	index, ticket := q.find(position)
	if ticket == nil {
		return Ticket{}, fmt.Errorf("delete position[%v]: %w", position, ErrNotFound)
	}

	q.ticketQueue.Remove(index)
	for i := index; i < q.ticketQueue.Size(); i++ {
		value, _ := q.ticketQueue.Get(i)
		value.(*Ticket).Position--
	}

	q.logger.Infof("removed ticket[%+v]", ticket)
	q.changed()
	return *ticket, nil
}

func (q *Queue) Snapshot() *Snapshot {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.snapshot()
}

func (q *Queue) StatsView() StatsView {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.stats.view
}

func (q *Queue) statsWorker() {
	ticker := time.NewTicker(time.Duration(*q.config.NotifyStatsIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for ; true; <-ticker.C {
		stats := q.StatsView()
		q.logger.Debugf("current stats[%+v]", stats)

		if err := q.counterConfig.PublishStats(context.Background(), stats.Waiting, stats.Served, stats.AvgWaitDuration); err != nil {
			q.logger.Errorf("cannot publish stats to redis %v", err)
		}

		select {
		case q.NotifyStats <- stats:
		default:
			q.logger.Warnf("notifyStats channel is full, drop stats")
		}
	}
}

func (q *Queue) newTicket(name string, class Class) *Ticket {
	return &Ticket{
		Name:      name,
		Class:     class,
		ArrivedAt: q.now(),
	}
}

func (q *Queue) find(position int) (int, *Ticket) {
	index, value := q.ticketQueue.Find(func(_ int, value interface{}) bool {
		return value.(*Ticket).Position == position
	})
	if index < 0 {
		return -1, nil
	}
	return index, value.(*Ticket)
}

func (q *Queue) tailPosition() int {
	if q.ticketQueue.Empty() {
		return 0
	}
	value, _ := q.ticketQueue.Get(q.ticketQueue.Size() - 1)
	return value.(*Ticket).Position
}

func (q *Queue) tickets() []*Ticket {
	tickets := make([]*Ticket, 0, q.ticketQueue.Size())
	q.ticketQueue.Each(func(_ int, value interface{}) {
		tickets = append(tickets, value.(*Ticket))
	})
	return tickets
}

func (q *Queue) activeViews() []View {
	views := []View{}
	q.ticketQueue.Each(func(_ int, value interface{}) {
		if ticket := value.(*Ticket); !ticket.Served {
			views = append(views, ticket.View())
		}
	})
	return views
}

func (q *Queue) snapshot() *Snapshot {
	return &Snapshot{
		Tickets: q.activeViews(),
		Stats:   q.stats.view,
	}
}

func (q *Queue) servedTickets(served []Ticket) {
	if len(served) == 0 {
		return
	}

	waitDurations := make([]time.Duration, 0, len(served))
	for _, ticket := range served {
		waitDurations = append(waitDurations, ticket.WaitDuration())

		select {
		case q.NotifyServed <- ticket:
		default:
			q.logger.Warnf("notifyServed channel is full, drop ticket[%+v]", ticket)
		}
	}
	q.stats.updateAvgWait(waitDurations)
}

// changed must be called with the lock held after every mutation.
func (q *Queue) changed() {
	q.stats.recount(q.tickets())

	select {
	case q.NotifySnapshot <- q.snapshot():
	default:
		q.logger.Warnf("notifySnapshot channel is full, drop snapshot")
	}

	if q.logger.Desugar().Core().Enabled(zap.DebugLevel) {
		q.dumpQueue()
	}
}

func (q *Queue) dumpQueue() {
	var ticketData string
	for _, ticket := range q.tickets() {
		ticketData = ticketData + fmt.Sprintf("ticket[%+v]\n", ticket)
	}
	q.logger.Debugf("ticketQueue:\n\n%v\n\n", ticketData)
}
