package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"walk-in-service/counter-queue-server/pkg/infra"
	"walk-in-service/counter-queue-server/pkg/queue"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"
)

func TestCall(t *testing.T) {
	var (
		gotPath    string
		gotApiKey  string
		gotPayload CallPayload
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotApiKey = r.Header.Get("apiKey")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("cannot decode payload %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "secret", nil, req.C(), infra.NewLoggerFactory(zap.NewNop()))

	arrivedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	err := notifier.Call(queue.Ticket{
		Position:  0,
		Name:      "Maria",
		Class:     queue.Priority,
		ArrivedAt: arrivedAt,
		Served:    true,
		ServedAt:  arrivedAt.Add(2 * time.Minute),
	})

	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if gotPath != "/calls" || gotApiKey != "secret" {
		t.Fatalf("path[%v] apiKey[%v]", gotPath, gotApiKey)
	}
	want := CallPayload{Position: 0, Name: "Maria", Class: "P", WaitMsec: 120000}
	if gotPayload != want {
		t.Fatalf("payload = %+v, want %+v", gotPayload, want)
	}
}

func TestCallErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "", nil, req.C(), infra.NewLoggerFactory(zap.NewNop()))

	if err := notifier.Call(queue.Ticket{Name: "José", Class: queue.Normal}); err == nil {
		t.Fatalf("expected error for status 400")
	}
}
