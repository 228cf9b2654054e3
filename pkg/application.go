package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"walk-in-service/counter-queue-server/pkg/client"
	"walk-in-service/counter-queue-server/pkg/config"
	"walk-in-service/counter-queue-server/pkg/infra"
	"walk-in-service/counter-queue-server/pkg/notify"
	"walk-in-service/counter-queue-server/pkg/queue"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EnrollRequest struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type InfoResponse struct {
	Info   interface{} `json:"info"`
	Status int         `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type Application struct {
	config        *config.Config
	counterConfig *config.CounterConfig
	hub           *client.Hub
	queue         *queue.Queue
	notifier      *notify.Notifier
	wsUpgrader    *websocket.Upgrader
	logger        *zap.SugaredLogger
}

func ProvideApplication(config *config.Config, counterConfig *config.CounterConfig, hub *client.Hub, queue *queue.Queue, notifier *notify.Notifier, loggerFactory *infra.LoggerFactory) *Application {
	return &Application{
		config:        config,
		counterConfig: counterConfig,
		hub:           hub,
		queue:         queue,
		notifier:      notifier,
		wsUpgrader: &websocket.Upgrader{
			// Display boards are served from other origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: loggerFactory.Create("Application").Sugar(),
	}
}

func (a *Application) Run() {
	go a.counterConfig.Run()
	go a.hub.Run()
	go a.queue.Run()
	go a.notifier.Run()
}

func (a *Application) HandleList(c echo.Context) error {
	return c.JSON(http.StatusOK, &InfoResponse{
		Info:   a.queue.ListActive(),
		Status: http.StatusOK,
	})
}

func (a *Application) HandleGet(c echo.Context) error {
	position, err := positionParam(c)
	if err != nil {
		return err
	}

	view, err := a.queue.GetByPosition(position)
	if errors.Is(err, queue.ErrNotFound) {
		return c.JSON(http.StatusNotFound, &MessageResponse{
			Message: "Customer not found.",
			Status:  http.StatusNotFound,
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &InfoResponse{
		Info:   view,
		Status: http.StatusOK,
	})
}

func (a *Application) HandleEnqueue(c echo.Context) error {
	return a.enqueue(c, a.queue.EnqueueNormal)
}

func (a *Application) HandleEnqueuePriority(c echo.Context) error {
	if !a.counterConfig.IsPriorityEnabled() {
		a.logger.Debugf("priority disabled, enqueue as normal")
		return a.enqueue(c, a.queue.EnqueueNormal)
	}
	return a.enqueue(c, a.queue.EnqueuePriority)
}

func (a *Application) enqueue(c echo.Context, enqueueFunc func(name string, class queue.Class) queue.Ticket) error {
	req, class, err := a.bindEnrollRequest(c)
	if err != nil {
		return err
	}

	if !a.counterConfig.IsOpen() {
		return c.JSON(http.StatusServiceUnavailable, &MessageResponse{
			Message: "Counter is closed.",
			Status:  http.StatusServiceUnavailable,
		})
	}

	ticket := enqueueFunc(req.Name, class)
	a.logger.Debugf("enqueued ticket[%+v]", ticket)

	return c.JSON(http.StatusCreated, &MessageResponse{
		Message: "Customer added to the queue.",
		Status:  http.StatusCreated,
	})
}

func (a *Application) HandleAdvance(c echo.Context) error {
	a.queue.AdvanceSequential()
	return c.JSON(http.StatusOK, &MessageResponse{
		Message: "Queue updated.",
		Status:  http.StatusOK,
	})
}

func (a *Application) HandleAdvancePriority(c echo.Context) error {
	a.queue.AdvancePriority()
	return c.JSON(http.StatusOK, &MessageResponse{
		Message: "Queue updated.",
		Status:  http.StatusOK,
	})
}

func (a *Application) HandleDelete(c echo.Context) error {
	position, err := positionParam(c)
	if err != nil {
		return err
	}

	if _, err := a.queue.DeleteByPosition(position); err != nil {
		if errors.Is(err, queue.ErrNotFound) {
			return c.JSON(http.StatusNotFound, &MessageResponse{
				Message: "Customer not found at this position.",
				Status:  http.StatusNotFound,
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, &MessageResponse{
		Message: "Customer removed from the queue.",
		Status:  http.StatusOK,
	})
}

func (a *Application) HandleWs(c echo.Context) error {
	conn, err := a.wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	id := c.Response().Header().Get(echo.HeaderXRequestID)
	pingPeriod := time.Duration(*a.config.PingIntervalSeconds) * time.Second
	a.hub.NewClient(id, c.RealIP(), conn, pingPeriod).Run()

	return nil
}

func (a *Application) bindEnrollRequest(c echo.Context) (*EnrollRequest, queue.Class, error) {
	req := &EnrollRequest{}
	if err := c.Bind(req); err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if utf8.RuneCountInString(req.Name) > *a.config.MaxNameLength {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "name must have at most "+strconv.Itoa(*a.config.MaxNameLength)+" characters")
	}

	class, err := queue.ParseClass(req.Class)
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return req, class, nil
}

func positionParam(c echo.Context) (int, error) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "position must be an integer")
	}
	return position, nil
}
