package queue

import (
	"fmt"
	"time"
)

type Class string

const (
	Normal   Class = "N"
	Priority Class = "P"
)

func ParseClass(raw string) (Class, error) {
	switch class := Class(raw); class {
	case Normal, Priority:
		return class, nil
	default:
		return "", fmt.Errorf("invalid class[%v], want %q or %q", raw, Normal, Priority)
	}
}

type Ticket struct {
	// Rank in the line, starting at 1. It doubles as the lookup key for
	// get and delete, so it moves whenever the line changes. Reaches 0
	// when the ticket is served by tick-down.
	Position int

	Name string

	Class Class

	// The time when the customer enrolled.
	ArrivedAt time.Time

	// True once the customer has been attended. Never reset.
	Served bool

	// The time when Served became true. Zero while waiting.
	ServedAt time.Time
}

// View is what callers get to see of a ticket.
type View struct {
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	ArrivedAt time.Time `json:"arrivedAt"`
}

func (t *Ticket) View() View {
	return View{
		Position:  t.Position,
		Name:      t.Name,
		ArrivedAt: t.ArrivedAt,
	}
}

func (t *Ticket) serve(now time.Time) bool {
	if t.Served {
		return false
	}
	t.Served = true
	t.ServedAt = now
	return true
}

func (t *Ticket) WaitDuration() time.Duration {
	if !t.Served {
		return 0
	}
	return t.ServedAt.Sub(t.ArrivedAt)
}
