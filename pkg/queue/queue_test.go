package queue

import (
	"errors"
	"testing"
	"time"

	"walk-in-service/counter-queue-server/pkg/config"
	"walk-in-service/counter-queue-server/pkg/infra"

	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestQueue returns an unseeded queue whose clock moves one minute per
// reading.
func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	loggerFactory := infra.NewLoggerFactory(zap.NewNop())
	stats := ProvideStats(config.CFG, loggerFactory)

	now := baseTime
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return newQueue(stats, config.CFG, nil, loggerFactory, clock)
}

func positions(q *Queue) []int {
	var result []int
	for _, ticket := range q.tickets() {
		result = append(result, ticket.Position)
	}
	return result
}

func names(q *Queue) []string {
	var result []string
	for _, ticket := range q.tickets() {
		result = append(result, ticket.Name)
	}
	return result
}

func served(q *Queue) []bool {
	var result []bool
	for _, ticket := range q.tickets() {
		result = append(result, ticket.Served)
	}
	return result
}

func assertInts(t *testing.T, name string, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%v = %v, want %v", name, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%v = %v, want %v", name, got, want)
		}
	}
}

func assertStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%v = %v, want %v", name, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%v = %v, want %v", name, got, want)
		}
	}
}

func assertBools(t *testing.T, name string, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%v = %v, want %v", name, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%v = %v, want %v", name, got, want)
		}
	}
}

func TestEnqueueNormalAppends(t *testing.T) {
	q := newTestQueue(t)

	first := q.EnqueueNormal("Maria", Normal)
	second := q.EnqueueNormal("Ana", Priority)

	if first.Position != 1 || second.Position != 2 {
		t.Fatalf("positions = %v, %v, want 1, 2", first.Position, second.Position)
	}
	if first.Served || second.Served {
		t.Fatalf("new tickets must not be served")
	}
	if !first.ArrivedAt.Before(second.ArrivedAt) {
		t.Fatalf("arrivedAt not increasing: %v, %v", first.ArrivedAt, second.ArrivedAt)
	}
	assertStrings(t, "names", names(q), []string{"Maria", "Ana"})
}

func TestEnqueuePriority(t *testing.T) {
	tests := []struct {
		name      string
		existing  []Class
		class     Class
		wantNames []string
		wantPos   []int
	}{
		{
			name:      "ahead of all normal",
			existing:  []Class{Normal, Normal},
			class:     Priority,
			wantNames: []string{"new", "t0", "t1"},
			wantPos:   []int{3, 1, 2},
		},
		{
			name:      "behind earlier priority",
			existing:  []Class{Priority, Normal},
			class:     Priority,
			wantNames: []string{"t0", "new", "t1"},
			wantPos:   []int{1, 3, 2},
		},
		{
			name:      "front when no normal",
			existing:  []Class{Priority, Priority},
			class:     Priority,
			wantNames: []string{"new", "t0", "t1"},
			wantPos:   []int{3, 1, 2},
		},
		{
			name:      "empty line",
			existing:  nil,
			class:     Priority,
			wantNames: []string{"new"},
			wantPos:   []int{1},
		},
		{
			name:      "normal class appends",
			existing:  []Class{Priority, Normal},
			class:     Normal,
			wantNames: []string{"t0", "t1", "new"},
			wantPos:   []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(t)
			for i, class := range tt.existing {
				q.EnqueueNormal("t"+string(rune('0'+i)), class)
			}

			q.EnqueuePriority("new", tt.class)

			assertStrings(t, "names", names(q), tt.wantNames)
			assertInts(t, "positions", positions(q), tt.wantPos)
		})
	}
}

func TestAdvanceSequential(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b", "c"})

	got := q.AdvanceSequential()

	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("served = %+v, want only a", got)
	}
	if got[0].ServedAt.IsZero() {
		t.Fatalf("servedAt not set")
	}
	assertInts(t, "positions", positions(q), []int{0, 1, 2})
	assertBools(t, "served", served(q), []bool{true, false, false})

	q.AdvanceSequential()
	assertInts(t, "positions", positions(q), []int{-1, 0, 1})
	assertBools(t, "served", served(q), []bool{true, true, false})

	if views := q.ListActive(); len(views) != 1 || views[0].Name != "c" {
		t.Fatalf("active = %+v, want only c", views)
	}
}

func TestAdvanceSequentialNoWaitingTicket(t *testing.T) {
	q := newTestQueue(t)
	if got := q.AdvanceSequential(); got != nil {
		t.Fatalf("served on empty queue = %+v", got)
	}

	q.Seed([]string{"a", "b"})
	q.AdvancePriority()
	q.AdvancePriority()

	got := q.AdvanceSequential()

	if len(got) != 0 {
		t.Fatalf("served = %+v, want none", got)
	}
	assertInts(t, "positions", positions(q), []int{1, 2})
	assertBools(t, "served", served(q), []bool{true, true})
}

func TestAdvancePriorityLeavesPositions(t *testing.T) {
	tests := []struct {
		name       string
		classes    []Class
		wantName   string
		wantServed []bool
	}{
		{"priority first", []Class{Priority, Normal}, "t0", []bool{true, false}},
		{"priority behind normal", []Class{Normal, Priority}, "t1", []bool{false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(t)
			for i, class := range tt.classes {
				q.EnqueueNormal("t"+string(rune('0'+i)), class)
			}

			ticket, ok := q.AdvancePriority()

			if !ok || ticket.Name != tt.wantName {
				t.Fatalf("served = %+v %v, want %v", ticket, ok, tt.wantName)
			}
			assertInts(t, "positions", positions(q), []int{1, 2})
			assertBools(t, "served", served(q), tt.wantServed)
		})
	}
}

func TestAdvancePriorityOrder(t *testing.T) {
	q := newTestQueue(t)
	q.EnqueueNormal("n1", Normal)
	q.EnqueueNormal("p1", Priority)
	q.EnqueueNormal("n2", Normal)
	q.EnqueueNormal("p2", Priority)

	var order []string
	for {
		ticket, ok := q.AdvancePriority()
		if !ok {
			break
		}
		order = append(order, ticket.Name)
	}

	assertStrings(t, "order", order, []string{"p1", "p2", "n1", "n2"})
	assertInts(t, "positions", positions(q), []int{1, 2, 3, 4})
}

func TestAdvancePriorityAllServed(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a"})
	q.AdvancePriority()

	before := q.tickets()[0]
	servedAt := before.ServedAt

	if _, ok := q.AdvancePriority(); ok {
		t.Fatalf("expected no ticket to be served")
	}
	if after := q.tickets()[0]; after.ServedAt != servedAt || after.Position != 1 {
		t.Fatalf("ticket changed: %+v", after)
	}
}

func TestDeleteByPosition(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b", "c", "d"})

	ticket, err := q.DeleteByPosition(2)

	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if ticket.Name != "b" {
		t.Fatalf("removed = %+v, want b", ticket)
	}
	assertStrings(t, "names", names(q), []string{"a", "c", "d"})
	assertInts(t, "positions", positions(q), []int{1, 2, 3})

	// Position 2 now belongs to c.
	ticket, err = q.DeleteByPosition(2)
	if err != nil || ticket.Name != "c" {
		t.Fatalf("second delete = %+v %v, want c", ticket, err)
	}
	assertInts(t, "positions", positions(q), []int{1, 2})
	if q.Len() != 2 {
		t.Fatalf("len = %v, want 2", q.Len())
	}
}

func TestPositionsContiguous(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b", "c", "d", "e"})
	q.DeleteByPosition(5)
	q.DeleteByPosition(1)
	q.EnqueueNormal("f", Normal)
	q.DeleteByPosition(3)
	q.EnqueueNormal("g", Priority)

	for i, ticket := range q.tickets() {
		if ticket.Position != i+1 {
			t.Fatalf("ticket[%+v] at index[%v]", ticket, i)
		}
	}
}

func TestNotFound(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b"})

	if _, err := q.GetByPosition(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
	if _, err := q.DeleteByPosition(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete err = %v, want ErrNotFound", err)
	}
	assertStrings(t, "names", names(q), []string{"a", "b"})
	assertInts(t, "positions", positions(q), []int{1, 2})
}

func TestGetByPosition(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b"})

	view, err := q.GetByPosition(2)
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if view.Name != "b" || view.Position != 2 {
		t.Fatalf("view = %+v, want b at 2", view)
	}

	// Served tickets can still be looked up while they hold a position.
	q.AdvanceSequential()
	view, err = q.GetByPosition(0)
	if err != nil || view.Name != "a" {
		t.Fatalf("view = %+v %v, want a", view, err)
	}
}

func TestListActive(t *testing.T) {
	q := newTestQueue(t)
	if views := q.ListActive(); views == nil || len(views) != 0 {
		t.Fatalf("empty queue views = %#v, want empty slice", views)
	}

	q.Seed([]string{"a", "b", "c"})
	q.AdvancePriority()

	views := q.ListActive()
	if len(views) != 2 || views[0].Name != "b" || views[1].Name != "c" {
		t.Fatalf("views = %+v, want b, c", views)
	}
	if views[0].Position != 2 {
		t.Fatalf("view position = %v, want 2", views[0].Position)
	}
}

func TestNotifications(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b"})
	for len(q.NotifySnapshot) > 0 {
		<-q.NotifySnapshot
	}

	q.AdvanceSequential()

	select {
	case ticket := <-q.NotifyServed:
		if ticket.Name != "a" {
			t.Fatalf("served notification = %+v, want a", ticket)
		}
	default:
		t.Fatalf("no served notification")
	}

	select {
	case snapshot := <-q.NotifySnapshot:
		if len(snapshot.Tickets) != 1 || snapshot.Stats.Served != 1 || snapshot.Stats.Waiting != 1 {
			t.Fatalf("snapshot = %+v", snapshot)
		}
	default:
		t.Fatalf("no snapshot notification")
	}
}

func TestAdvancePriorityReadsClockOnce(t *testing.T) {
	q := newTestQueue(t)
	q.Seed([]string{"a", "b"})
	q.AdvancePriority()

	// a is skipped before b gets served, the call still reads one time.
	ticket, ok := q.AdvancePriority()

	if !ok || ticket.Name != "b" {
		t.Fatalf("served = %+v %v, want b", ticket, ok)
	}
	if want := baseTime.Add(4 * time.Minute); !ticket.ServedAt.Equal(want) {
		t.Fatalf("servedAt = %v, want %v", ticket.ServedAt, want)
	}
}

func TestSeedSkipsLongNames(t *testing.T) {
	q := newTestQueue(t)

	q.Seed([]string{"Ana", "Ana Beatriz Albuquerque", "", "José"})

	assertStrings(t, "names", names(q), []string{"Ana", "", "José"})
	assertInts(t, "positions", positions(q), []int{1, 2, 3})
}
