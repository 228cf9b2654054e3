package notify

import (
	"fmt"
	"os"

	"walk-in-service/counter-queue-server/pkg/infra"
	"walk-in-service/counter-queue-server/pkg/queue"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"
)

// CallPayload is what the caller display receives for each served ticket.
type CallPayload struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	WaitMsec int64  `json:"waitMsec"`
}

// Notifier tells the caller display which customer to call to the counter.
type Notifier struct {
	// Base url of the caller display. Empty disables notifications.
	host   string
	apiKey string

	queue      *queue.Queue
	httpClient *req.Client
	logger     *zap.SugaredLogger
}

func ProvideNotifier(queue *queue.Queue, httpClient *req.Client, loggerFactory *infra.LoggerFactory) *Notifier {
	return NewNotifier(os.Getenv("CALLER_DISPLAY_HOST"), os.Getenv("CALLER_DISPLAY_API_KEY"), queue, httpClient, loggerFactory)
}

func NewNotifier(host string, apiKey string, queue *queue.Queue, httpClient *req.Client, loggerFactory *infra.LoggerFactory) *Notifier {
	return &Notifier{
		host:       host,
		apiKey:     apiKey,
		queue:      queue,
		httpClient: httpClient,
		logger:     loggerFactory.Create("Notifier").Sugar(),
	}
}

func (n *Notifier) Run() {
	if n.host == "" {
		n.logger.Infof("CALLER_DISPLAY_HOST not set, served tickets will not be announced")
	}

	for ticket := range n.queue.NotifyServed {
		if n.host == "" {
			continue
		}

		if err := n.Call(ticket); err != nil {
			n.logger.Errorf("cannot call ticket[%+v] %v", ticket, err)
		}
	}
}

func (n *Notifier) Call(ticket queue.Ticket) error {
	resp, err := n.httpClient.R().
		SetHeader("apiKey", n.apiKey).
		SetBodyJsonMarshal(&CallPayload{
			Position: ticket.Position,
			Name:     ticket.Name,
			Class:    string(ticket.Class),
			WaitMsec: ticket.WaitDuration().Milliseconds(),
		}).
		Post(n.host + "/calls")
	if err != nil {
		return err
	}

	if resp.IsError() {
		return fmt.Errorf("request failed with status[%v]", resp.Status)
	}

	n.logger.Infof("called ticket name[%v] position[%v]", ticket.Name, ticket.Position)
	return nil
}
