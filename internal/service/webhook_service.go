package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/internal/webhook"
	"motoboy/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WebhookConfigRequest struct {
	Nome          string            `json:"nome" binding:"required"`
	Tipo          string            `json:"tipo" binding:"required"`
	URL           string            `json:"url" binding:"required"`
	Ativo         *bool             `json:"ativo"`
	Descricao     string            `json:"descricao"`
	Headers       map[string]string `json:"headers"`
	Timeout       int               `json:"timeout"` // ms
	RetryAttempts int               `json:"retryAttempts"`
}

type WebhookConfigResponse struct {
	ID            string            `json:"id"`
	Nome          string            `json:"nome"`
	Tipo          string            `json:"tipo"`
	URL           string            `json:"url"`
	Ativo         bool              `json:"ativo"`
	Descricao     *string           `json:"descricao,omitempty"`
	Headers       map[string]string `json:"headers"`
	Timeout       int               `json:"timeout"`
	RetryAttempts int               `json:"retryAttempts"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

type WebhookLogResponse struct {
	ID              string  `json:"id"`
	WebhookConfigID *string `json:"webhookConfigId,omitempty"`
	SolicitacaoID   string  `json:"solicitacaoId"`
	Tipo            string  `json:"tipo"`
	URL             string  `json:"url"`
	Payload         string  `json:"payload"`
	ResponseStatus  *int    `json:"responseStatus,omitempty"`
	ResponseBody    *string `json:"responseBody,omitempty"`
	ErrorMessage    *string `json:"errorMessage,omitempty"`
	Tentativa       int     `json:"tentativa"`
	Sucesso         bool    `json:"sucesso"`
	TempoResposta   int     `json:"tempoResposta"`
	CreatedAt       string  `json:"createdAt"`
}

type WebhookTestResult struct {
	Delivered bool   `json:"delivered"`
	URL       string `json:"url"`
}

// EndpointDeliverer sends to one explicit endpoint; *webhook.Dispatcher
// satisfies it.
type EndpointDeliverer interface {
	EndpointFor(cfg *model.WebhookConfig) webhook.Endpoint
	Deliver(ctx context.Context, ep webhook.Endpoint, category string, payload any, relatedID string) bool
}

type WebhookService interface {
	List(ctx context.Context) ([]WebhookConfigResponse, error)
	Get(ctx context.Context, id string) (*WebhookConfigResponse, error)
	Create(ctx context.Context, req WebhookConfigRequest, actor string) (*WebhookConfigResponse, error)
	Update(ctx context.Context, id string, req WebhookConfigRequest, actor string) (*WebhookConfigResponse, error)
	Delete(ctx context.Context, id string, actor string) error
	Test(ctx context.Context, id string) (*WebhookTestResult, error)
	Logs(ctx context.Context, filter repository.WebhookLogFilter) ([]WebhookLogResponse, int64, error)
}

type webhookService struct {
	configs  repository.WebhookConfigRepository
	logs     repository.WebhookLogRepository
	audit    repository.AuditRepository
	delivery EndpointDeliverer
	now      func() time.Time
}

func NewWebhookService(configs repository.WebhookConfigRepository, logs repository.WebhookLogRepository, audit repository.AuditRepository, delivery EndpointDeliverer) WebhookService {
	return &webhookService{configs: configs, logs: logs, audit: audit, delivery: delivery, now: time.Now}
}

func toWebhookConfigResponse(cfg *model.WebhookConfig) WebhookConfigResponse {
	headers := cfg.Headers.Data()
	if headers == nil {
		headers = map[string]string{}
	}
	return WebhookConfigResponse{
		ID:            cfg.ID.String(),
		Nome:          cfg.Nome,
		Tipo:          cfg.Tipo,
		URL:           cfg.URL,
		Ativo:         cfg.Ativo,
		Descricao:     cfg.Descricao,
		Headers:       headers,
		Timeout:       cfg.Timeout,
		RetryAttempts: cfg.RetryAttempts,
		CreatedAt:     cfg.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     cfg.UpdatedAt.Format(time.RFC3339),
	}
}

func toWebhookLogResponse(l *model.WebhookLog) WebhookLogResponse {
	res := WebhookLogResponse{
		ID:             l.ID.String(),
		SolicitacaoID:  l.SolicitacaoID,
		Tipo:           l.Tipo,
		URL:            l.URL,
		Payload:        string(l.Payload),
		ResponseStatus: l.ResponseStatus,
		ResponseBody:   l.ResponseBody,
		ErrorMessage:   l.ErrorMessage,
		Tentativa:      l.Tentativa,
		Sucesso:        l.Sucesso,
		TempoResposta:  l.TempoResposta,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.WebhookConfigID != nil {
		id := l.WebhookConfigID.String()
		res.WebhookConfigID = &id
	}
	return res
}

func validWebhookType(tipo string) bool {
	return tipo == model.WebhookTypeApproval || tipo == model.WebhookTypeGeneral
}

func (s *webhookService) apply(cfg *model.WebhookConfig, req WebhookConfigRequest) error {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return validationf("nome is required")
	}
	if !validWebhookType(req.Tipo) {
		return validationf("tipo must be %q or %q", model.WebhookTypeApproval, model.WebhookTypeGeneral)
	}
	target := strings.TrimSpace(req.URL)
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validationf("url must be an absolute http(s) URL")
	}
	if req.Timeout < 0 || req.RetryAttempts < 0 {
		return validationf("timeout and retryAttempts must not be negative")
	}

	cfg.Nome = nome
	cfg.Tipo = req.Tipo
	cfg.URL = target
	cfg.Descricao = optionalString(req.Descricao)
	if req.Ativo != nil {
		cfg.Ativo = *req.Ativo
	}
	headers := req.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	cfg.Headers = datatypes.NewJSONType(headers)

	cfg.Timeout = req.Timeout
	if cfg.Timeout == 0 {
		cfg.Timeout = model.DefaultWebhookTimeoutMs
	}
	cfg.RetryAttempts = req.RetryAttempts
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = model.DefaultWebhookRetries
	}
	return nil
}

func (s *webhookService) record(ctx context.Context, actor, action string, cfg *model.WebhookConfig) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]interface{}{"tipo": cfg.Tipo, "url": cfg.URL, "ativo": cfg.Ativo})
	_ = s.audit.Log(ctx, &model.AuditLog{
		UserID:     parseActor(actor),
		Action:     action,
		EntityID:   cfg.ID.String(),
		EntityName: cfg.Nome,
		Details:    string(details),
	})
}

func (s *webhookService) find(ctx context.Context, id string) (*model.WebhookConfig, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, validationf("invalid webhook id")
	}
	cfg, err := s.configs.FindByID(ctx, uid)
	if err != nil {
		return nil, translateRepoErr(err, "webhook config")
	}
	return cfg, nil
}

func (s *webhookService) List(ctx context.Context) ([]WebhookConfigResponse, error) {
	list, err := s.configs.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]WebhookConfigResponse, 0, len(list))
	for i := range list {
		res = append(res, toWebhookConfigResponse(&list[i]))
	}
	return res, nil
}

func (s *webhookService) Get(ctx context.Context, id string) (*WebhookConfigResponse, error) {
	cfg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toWebhookConfigResponse(cfg)
	return &res, nil
}

func (s *webhookService) Create(ctx context.Context, req WebhookConfigRequest, actor string) (*WebhookConfigResponse, error) {
	cfg := &model.WebhookConfig{Ativo: true}
	if err := s.apply(cfg, req); err != nil {
		return nil, err
	}
	if err := s.configs.Create(ctx, cfg); err != nil {
		return nil, err
	}
	s.record(ctx, actor, model.ActionCreateWebhook, cfg)
	res := toWebhookConfigResponse(cfg)
	return &res, nil
}

func (s *webhookService) Update(ctx context.Context, id string, req WebhookConfigRequest, actor string) (*WebhookConfigResponse, error) {
	cfg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(cfg, req); err != nil {
		return nil, err
	}
	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, err
	}
	s.record(ctx, actor, model.ActionUpdateWebhook, cfg)
	res := toWebhookConfigResponse(cfg)
	return &res, nil
}

func (s *webhookService) Delete(ctx context.Context, id string, actor string) error {
	cfg, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.configs.Delete(ctx, cfg.ID); err != nil {
		return translateRepoErr(err, "webhook config")
	}
	s.record(ctx, actor, model.ActionDeleteWebhook, cfg)
	return nil
}

// Test posts a test payload straight to this config, active or not.
func (s *webhookService) Test(ctx context.Context, id string) (*WebhookTestResult, error) {
	cfg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := webhook.TestPayload{
		Teste:       true,
		Timestamp:   s.now().UTC(),
		WebhookNome: cfg.Nome,
		WebhookTipo: cfg.Tipo,
		Mensagem:    webhook.PingMessage(cfg.Nome),
	}
	ep := s.delivery.EndpointFor(cfg)
	delivered := s.delivery.Deliver(context.WithoutCancel(ctx), ep, cfg.Tipo, payload, "teste")
	result := &WebhookTestResult{Delivered: delivered, URL: cfg.URL}
	if !delivered {
		return result, fmt.Errorf("%w: test delivery to %s failed", ErrNotification, cfg.URL)
	}
	return result, nil
}

func (s *webhookService) Logs(ctx context.Context, filter repository.WebhookLogFilter) ([]WebhookLogResponse, int64, error) {
	p := pagination.New(filter.Page, filter.Limit)
	filter.Page, filter.Limit = p.Page, p.Limit
	if filter.Tipo != "" && !validWebhookType(filter.Tipo) {
		return nil, 0, validationf("invalid tipo filter %q", filter.Tipo)
	}
	list, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]WebhookLogResponse, 0, len(list))
	for i := range list {
		res = append(res, toWebhookLogResponse(&list[i]))
	}
	return res, total, nil
}
