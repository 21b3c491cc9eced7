// Package webhook delivers chat-bot notifications to the configured
// endpoint of a category, retrying with exponential backoff and logging
// every attempt.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"motoboy/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ConfigFinder resolves the active endpoint of a category.
type ConfigFinder interface {
	FindActiveByType(ctx context.Context, tipo string) (*model.WebhookConfig, error)
}

// LogWriter persists one call log row per attempt.
type LogWriter interface {
	Create(ctx context.Context, entry *model.WebhookLog) error
}

// Endpoint is a resolved delivery target.
type Endpoint struct {
	ConfigID *uuid.UUID // nil for a configured fallback
	Name     string
	URL      string
	Headers  map[string]string
	Timeout  time.Duration
	Attempts int
}

// Options tunes a Dispatcher. Zero values take the package defaults.
type Options struct {
	DefaultTimeout time.Duration
	DefaultRetries int
	// FallbackURLs maps a category to the endpoint used when no active
	// configuration row exists. Resolved once at startup.
	FallbackURLs map[string]string
	Client       *http.Client
	// Sleep waits between attempts; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Dispatcher struct {
	configs   ConfigFinder
	logs      LogWriter
	client    *http.Client
	fallbacks map[string]string
	timeout   time.Duration
	retries   int
	sleep     func(ctx context.Context, d time.Duration) error
	log       *zap.Logger
}

func NewDispatcher(configs ConfigFinder, logs LogWriter, opts Options, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		configs:   configs,
		logs:      logs,
		client:    opts.Client,
		fallbacks: opts.FallbackURLs,
		timeout:   opts.DefaultTimeout,
		retries:   opts.DefaultRetries,
		sleep:     opts.Sleep,
		log:       logger,
	}
	if d.client == nil {
		d.client = &http.Client{}
	}
	if d.timeout <= 0 {
		d.timeout = time.Duration(model.DefaultWebhookTimeoutMs) * time.Millisecond
	}
	if d.retries <= 0 {
		d.retries = model.DefaultWebhookRetries
	}
	if d.sleep == nil {
		d.sleep = sleepContext
	}
	return d
}

// Resolve returns the endpoint for a category: the newest active
// configuration, else the startup fallback. ok is false when neither exists.
func (d *Dispatcher) Resolve(ctx context.Context, category string) (Endpoint, bool) {
	cfg, err := d.configs.FindActiveByType(ctx, category)
	if err != nil {
		d.log.Error("failed to look up webhook config", zap.String("tipo", category), zap.Error(err))
	}
	if cfg != nil {
		return d.EndpointFor(cfg), true
	}

	if url := d.fallbacks[category]; url != "" {
		d.log.Warn("no active webhook config, using fallback endpoint", zap.String("tipo", category))
		return Endpoint{
			Name:     "fallback-" + category,
			URL:      url,
			Timeout:  d.timeout,
			Attempts: d.retries,
		}, true
	}
	return Endpoint{}, false
}

// EndpointFor converts a configuration row, applying defaults.
func (d *Dispatcher) EndpointFor(cfg *model.WebhookConfig) Endpoint {
	id := cfg.ID
	ep := Endpoint{
		ConfigID: &id,
		Name:     cfg.Nome,
		URL:      cfg.URL,
		Headers:  cfg.Headers.Data(),
		Timeout:  time.Duration(cfg.Timeout) * time.Millisecond,
		Attempts: cfg.RetryAttempts,
	}
	if ep.Timeout <= 0 {
		ep.Timeout = d.timeout
	}
	if ep.Attempts <= 0 {
		ep.Attempts = d.retries
	}
	return ep
}

// Dispatch delivers payload to the category's endpoint and reports whether
// any attempt got a 2xx reply. With no endpoint it returns false and logs
// nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, category string, payload any, relatedID string) bool {
	ep, ok := d.Resolve(ctx, category)
	if !ok {
		d.log.Info("no webhook endpoint for category", zap.String("tipo", category))
		return false
	}
	return d.Deliver(ctx, ep, category, payload, relatedID)
}

// Deliver runs the retry loop against a specific endpoint.
func (d *Dispatcher) Deliver(ctx context.Context, ep Endpoint, category string, payload any, relatedID string) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("failed to marshal webhook payload", zap.String("tipo", category), zap.Error(err))
		return false
	}

	attempts := ep.Attempts
	if attempts <= 0 {
		attempts = d.retries
	}
	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		res := post(ctx, d.client, ep, body, timeout, d.log)
		d.record(ctx, ep, category, body, relatedID, attempt, res)

		if res.ok() {
			d.log.Info("webhook delivered",
				zap.String("webhook", ep.Name),
				zap.String("tipo", category),
				zap.Int("attempt", attempt),
				zap.Int("latency_ms", res.LatencyMs),
			)
			return true
		}

		fields := []zap.Field{
			zap.String("webhook", ep.Name),
			zap.String("tipo", category),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
		}
		if msg := res.errorMessage(); msg != nil {
			fields = append(fields, zap.String("error", *msg))
		}
		d.log.Warn("webhook attempt failed", fields...)

		if attempt == attempts {
			break
		}
		if err := d.sleep(ctx, BackoffDelay(attempt)); err != nil {
			d.log.Warn("webhook retry aborted", zap.String("tipo", category), zap.Error(err))
			return false
		}
	}

	d.log.Error("webhook failed after all attempts",
		zap.String("webhook", ep.Name),
		zap.String("tipo", category),
		zap.Int("attempts", attempts),
	)
	return false
}

// record appends the call log row. A failed write never fails the dispatch.
func (d *Dispatcher) record(ctx context.Context, ep Endpoint, category string, body []byte, relatedID string, attempt int, res attemptResult) {
	entry := &model.WebhookLog{
		WebhookConfigID: ep.ConfigID,
		SolicitacaoID:   relatedID,
		Tipo:            category,
		URL:             ep.URL,
		Payload:         datatypes.JSON(body),
		ResponseStatus:  res.Status,
		ErrorMessage:    res.errorMessage(),
		Tentativa:       attempt,
		Sucesso:         res.ok(),
		TempoResposta:   res.LatencyMs,
	}
	if res.Status != nil {
		b := res.Body
		entry.ResponseBody = &b
	}

	if err := d.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		d.log.Error("failed to save webhook log",
			zap.String("tipo", category),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
