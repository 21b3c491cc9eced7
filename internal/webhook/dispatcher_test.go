package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"motoboy/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type mockConfigFinder struct {
	FindActiveByTypeFunc func(ctx context.Context, tipo string) (*model.WebhookConfig, error)
}

func (m *mockConfigFinder) FindActiveByType(ctx context.Context, tipo string) (*model.WebhookConfig, error) {
	if m.FindActiveByTypeFunc != nil {
		return m.FindActiveByTypeFunc(ctx, tipo)
	}
	return nil, nil
}

type memoryLogs struct {
	mu      sync.Mutex
	entries []model.WebhookLog
	err     error
}

func (m *memoryLogs) Create(_ context.Context, entry *model.WebhookLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func configFor(url string, retries int) *model.WebhookConfig {
	return &model.WebhookConfig{
		ID:            uuid.New(),
		Nome:          "n8n aprovação",
		Tipo:          model.WebhookTypeApproval,
		URL:           url,
		Ativo:         true,
		Headers:       datatypes.NewJSONType(map[string]string{"X-Api-Key": "secret"}),
		Timeout:       2000,
		RetryAttempts: retries,
	}
}

func TestDispatchNoEndpoint(t *testing.T) {
	logs := &memoryLogs{}
	d := NewDispatcher(&mockConfigFinder{}, logs, Options{}, nil)

	if d.Dispatch(context.Background(), model.WebhookTypeApproval, map[string]string{"a": "b"}, "req-1") {
		t.Fatal("Dispatch() = true with no endpoint")
	}
	if len(logs.entries) != 0 {
		t.Fatalf("expected no call log rows, got %d", len(logs.entries))
	}
}

func TestDispatchSuccessFirstAttempt(t *testing.T) {
	var gotHeader, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := configFor(srv.URL, 3)
	logs := &memoryLogs{}
	d := NewDispatcher(&mockConfigFinder{
		FindActiveByTypeFunc: func(_ context.Context, tipo string) (*model.WebhookConfig, error) {
			if tipo != model.WebhookTypeApproval {
				t.Errorf("looked up tipo %q", tipo)
			}
			return cfg, nil
		},
	}, logs, Options{}, nil)

	ok := d.Dispatch(context.Background(), model.WebhookTypeApproval, map[string]string{"mensagem": "oi"}, "req-1")
	if !ok {
		t.Fatal("Dispatch() = false, want true")
	}
	if gotHeader != "secret" || gotContentType != "application/json" {
		t.Errorf("headers = %q / %q", gotHeader, gotContentType)
	}
	if gotBody["mensagem"] != "oi" {
		t.Errorf("body = %v", gotBody)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("expected 1 call log row, got %d", len(logs.entries))
	}
	entry := logs.entries[0]
	if !entry.Sucesso || entry.Tentativa != 1 || entry.SolicitacaoID != "req-1" || entry.Tipo != model.WebhookTypeApproval {
		t.Errorf("unexpected log row: %+v", entry)
	}
	if entry.WebhookConfigID == nil || *entry.WebhookConfigID != cfg.ID {
		t.Errorf("log row config id = %v", entry.WebhookConfigID)
	}
	if entry.ResponseStatus == nil || *entry.ResponseStatus != 200 || entry.ResponseBody == nil || *entry.ResponseBody != `{"ok":true}` {
		t.Errorf("response not recorded: %+v", entry)
	}
	if entry.ErrorMessage != nil {
		t.Errorf("unexpected error message %q", *entry.ErrorMessage)
	}
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	logs := &memoryLogs{}
	sleeps := &recordedSleeps{}
	d := NewDispatcher(&mockConfigFinder{
		FindActiveByTypeFunc: func(context.Context, string) (*model.WebhookConfig, error) {
			return configFor(srv.URL, 3), nil
		},
	}, logs, Options{Sleep: sleeps.sleep}, nil)

	if d.Dispatch(context.Background(), model.WebhookTypeApproval, map[string]int{"x": 1}, "req-2") {
		t.Fatal("Dispatch() = true against a failing endpoint")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("endpoint called %d times, want 3", got)
	}
	if len(logs.entries) != 3 {
		t.Fatalf("expected 3 call log rows, got %d", len(logs.entries))
	}
	for i, e := range logs.entries {
		if e.Tentativa != i+1 || e.Sucesso {
			t.Errorf("row %d: tentativa=%d sucesso=%v", i, e.Tentativa, e.Sucesso)
		}
		if e.ErrorMessage == nil || *e.ErrorMessage != "HTTP 500" {
			t.Errorf("row %d: error message = %v", i, e.ErrorMessage)
		}
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeps.delays) != len(want) {
		t.Fatalf("slept %v, want %v", sleeps.delays, want)
	}
	for i := range want {
		if sleeps.delays[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, sleeps.delays[i], want[i])
		}
	}
}

func TestDispatchRecoversOnSecondAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logs := &memoryLogs{}
	d := NewDispatcher(&mockConfigFinder{
		FindActiveByTypeFunc: func(context.Context, string) (*model.WebhookConfig, error) {
			return configFor(srv.URL, 5), nil
		},
	}, logs, Options{Sleep: (&recordedSleeps{}).sleep}, nil)

	if !d.Dispatch(context.Background(), model.WebhookTypeApproval, struct{}{}, "req-3") {
		t.Fatal("Dispatch() = false, want true")
	}
	if len(logs.entries) != 2 {
		t.Fatalf("expected 2 call log rows, got %d", len(logs.entries))
	}
	if logs.entries[0].Sucesso || !logs.entries[1].Sucesso {
		t.Errorf("unexpected success flags: %v, %v", logs.entries[0].Sucesso, logs.entries[1].Sucesso)
	}
}

func TestDispatchNetworkErrorIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	logs := &memoryLogs{}
	d := NewDispatcher(&mockConfigFinder{
		FindActiveByTypeFunc: func(context.Context, string) (*model.WebhookConfig, error) {
			return configFor(url, 1), nil
		},
	}, logs, Options{}, nil)

	if d.Dispatch(context.Background(), model.WebhookTypeApproval, struct{}{}, "req-4") {
		t.Fatal("Dispatch() = true against a closed server")
	}
	if len(logs.entries) != 1 {
		t.Fatalf("expected 1 call log row, got %d", len(logs.entries))
	}
	e := logs.entries[0]
	if e.ResponseStatus != nil || e.ErrorMessage == nil {
		t.Errorf("network failure not recorded as error: %+v", e)
	}
}

func TestDispatchUsesFallbackURL(t *testing.T) {
	var hit atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logs := &memoryLogs{}
	d := NewDispatcher(&mockConfigFinder{}, logs, Options{
		FallbackURLs: map[string]string{model.WebhookTypeApproval: srv.URL},
	}, nil)

	if !d.Dispatch(context.Background(), model.WebhookTypeApproval, struct{}{}, "req-5") {
		t.Fatal("Dispatch() = false with a fallback configured")
	}
	if !hit.Load() {
		t.Error("fallback endpoint was not called")
	}
	if len(logs.entries) != 1 || logs.entries[0].WebhookConfigID != nil {
		t.Errorf("fallback call log = %+v", logs.entries)
	}

	if d.Dispatch(context.Background(), model.WebhookTypeGeneral, struct{}{}, "req-5") {
		t.Error("general category must not use the approval fallback")
	}
}

func TestDispatchLogWriteFailureDoesNotFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(&mockConfigFinder{
		FindActiveByTypeFunc: func(context.Context, string) (*model.WebhookConfig, error) {
			return configFor(srv.URL, 3), nil
		},
	}, &memoryLogs{err: errors.New("db down")}, Options{}, nil)

	if !d.Dispatch(context.Background(), model.WebhookTypeApproval, struct{}{}, "req-6") {
		t.Fatal("a call log write failure must not fail the dispatch")
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := map[int]time.Duration{
		0: time.Second,
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 8 * time.Second,
		9: maxBackoff,
	}
	for attempt, want := range cases {
		if got := BackoffDelay(attempt); got != want {
			t.Errorf("BackoffDelay(%d) = %v, want %v", attempt, got, want)
		}
	}
}
