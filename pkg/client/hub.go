package client

import (
	"walk-in-service/counter-queue-server/pkg/infra"
	"walk-in-service/counter-queue-server/pkg/msg"
	"walk-in-service/counter-queue-server/pkg/queue"

	"github.com/emirpasic/gods/maps/hashmap"
	"go.uber.org/zap"
)

// Hub fans queue changes out to connected display boards. Only the Run
// goroutine touches clients.
type Hub struct {
	// Registered clients. Key value: client.id -> client.
	clients *hashmap.Map

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	queue *queue.Queue

	logger *zap.SugaredLogger
}

func ProvideHub(queue *queue.Queue, loggerFactory *infra.LoggerFactory) *Hub {
	return &Hub{
		clients: hashmap.New(),

		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),

		queue:  queue,
		logger: loggerFactory.Create("Hub").Sugar(),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.logger.Debugf("unregister client id[%v]", client.id)
			if _, ok := h.clients.Get(client.id); !ok {
				continue
			}
			h.removeClient(client)

		case snapshot := <-h.queue.NotifySnapshot:
			h.logger.Debugf("notifySnapshot tickets[%v]", len(snapshot.Tickets))
			wsMessage, err := snapshotMessage(snapshot)
			if err != nil {
				h.logger.Errorf("cannot marshal SnapshotServerEvent %v", err)
				continue
			}
			h.broadcast(wsMessage)

		case stats := <-h.queue.NotifyStats:
			h.logger.Debugf("notifyStats stats[%+v]", stats)
			wsMessage, err := msg.NewWsMessage(msg.QueueStatsCode, statsEvent(stats))
			if err != nil {
				h.logger.Errorf("cannot marshal QueueStatsServerEvent %v", err)
				continue
			}
			h.broadcast(wsMessage)
		}
	}
}

// addClient registers a board and brings every board to the current line.
// Buffered snapshots are all older than the current one, so they are
// dropped instead of reaching the new board after it.
func (h *Hub) addClient(client *Client) {
	h.logger.Debugf("register client id[%v] ip[%v]", client.id, client.ip)
	h.clients.Put(client.id, client)

	for drained := false; !drained; {
		select {
		case <-h.queue.NotifySnapshot:
		default:
			drained = true
		}
	}

	wsMessage, err := snapshotMessage(h.queue.Snapshot())
	if err != nil {
		h.logger.Errorf("cannot marshal SnapshotServerEvent %v", err)
		return
	}
	h.broadcast(wsMessage)
}

func (h *Hub) broadcast(wsMessage *msg.WsMessage) {
	for _, value := range h.clients.Values() {
		h.send(value.(*Client), wsMessage)
	}
}

// send drops the client if its buffer is full, the client is assumed to be
// dead or stuck.
func (h *Hub) send(client *Client, wsMessage *msg.WsMessage) {
	select {
	case client.sendWsMessage <- wsMessage:
	default:
		h.logger.Warnf("id[%v] send channel is full, closing it", client.id)
		h.removeClient(client)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.clients.Remove(client.id)
	close(client.sendWsMessage) // Notify client it should close now.
}

func snapshotMessage(snapshot *queue.Snapshot) (*msg.WsMessage, error) {
	tickets := make([]msg.TicketData, 0, len(snapshot.Tickets))
	for _, view := range snapshot.Tickets {
		tickets = append(tickets, msg.TicketData{
			Position:  view.Position,
			Name:      view.Name,
			ArrivedAt: view.ArrivedAt,
		})
	}

	return msg.NewWsMessage(msg.SnapshotCode, &msg.SnapshotServerEvent{
		Tickets: tickets,
		Stats:   statsEvent(snapshot.Stats),
	})
}

func statsEvent(stats queue.StatsView) msg.QueueStatsServerEvent {
	return msg.QueueStatsServerEvent{
		Waiting:         stats.Waiting,
		WaitingPriority: stats.WaitingPriority,
		Served:          stats.Served,
		HeadPosition:    stats.HeadPosition,
		TailPosition:    stats.TailPosition,
		AvgWaitMsec:     stats.AvgWaitDuration.Milliseconds(),
	}
}
