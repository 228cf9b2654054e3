package msg

import "time"

type EventCode uint

const (
	SnapshotCode   EventCode = 2000
	QueueStatsCode EventCode = 2001
)

type TicketData struct {
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	ArrivedAt time.Time `json:"arrivedAt"`
}

type QueueStatsServerEvent struct {
	Waiting         int   `json:"waiting"`
	WaitingPriority int   `json:"waitingPriority"`
	Served          int   `json:"served"`
	HeadPosition    int   `json:"headPosition"`
	TailPosition    int   `json:"tailPosition"`
	AvgWaitMsec     int64 `json:"avgWaitMsec"`
}

// SnapshotServerEvent carries the waiting line for display boards.
type SnapshotServerEvent struct {
	Tickets []TicketData          `json:"tickets"`
	Stats   QueueStatsServerEvent `json:"stats"`
}
