package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/internal/storage"
	"motoboy/internal/voucher"
	"motoboy/internal/webhook"
	"motoboy/pkg/pagination"
	"motoboy/pkg/phone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VoucherRenderer produces the authorization PDF for a request.
type VoucherRenderer interface {
	Fuel(v voucher.FuelVoucher) ([]byte, error)
	Parts(v voucher.PartsVoucher) ([]byte, error)
}

// Notifier delivers a payload to the endpoint configured for a category.
type Notifier interface {
	Dispatch(ctx context.Context, category string, payload any, relatedID string) bool
}

// EventPublisher pushes row-change events to connected clients.
type EventPublisher interface {
	Publish(table, event, id string)
}

// Row-change events.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// SolicitationService drives the supervisor approval state machine
// (pendente -> aprovado | rejeitado, and back to pendente on reset) and its
// side effects: voucher rendering, upload, courier notification.
type SolicitationService interface {
	Create(ctx context.Context, req CreateSolicitationRequest, actor string) (*SolicitationResponse, error)
	Get(ctx context.Context, id string) (*SolicitationResponse, error)
	List(ctx context.Context, filter SolicitationListFilter) ([]SolicitationResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateSolicitationRequest, actor string) (*SolicitationResponse, error)
	Delete(ctx context.Context, id string, actor string) error

	Approve(ctx context.Context, id string, in ApproveInput, actor string) (*TransitionResult, error)
	Reject(ctx context.Context, id string, in RejectInput, actor string) (*TransitionResult, error)
	Reset(ctx context.Context, id string, actor string) (*SolicitationResponse, error)

	RequestEvidence(ctx context.Context, id string, actor string) (*TransitionResult, error)
	RecheckEvidence(ctx context.Context, id string, actor string) (*EvidenceResult, error)
	AttachEvidence(ctx context.Context, id string, evidenceURL string, actor string) (*SolicitationResponse, error)
	SetEvidenceStatus(ctx context.Context, id string, status string, actor string) (*SolicitationResponse, error)
}

// SolicitationDeps wires the lifecycle controller.
type SolicitationDeps struct {
	Repo        repository.SolicitationRepository
	Supervisors repository.SupervisorRepository
	Motoboys    repository.MotoboyRepository
	Audit       repository.AuditRepository
	Tx          repository.TransactionManager
	Vouchers    VoucherRenderer
	Store       storage.ObjectStore
	Notifier    Notifier
	Events      EventPublisher
	Logger      *zap.Logger
	Now         func() time.Time
}

type solicitationService struct {
	repo        repository.SolicitationRepository
	supervisors repository.SupervisorRepository
	motoboys    repository.MotoboyRepository
	audit       repository.AuditRepository
	tx          repository.TransactionManager
	vouchers    VoucherRenderer
	store       storage.ObjectStore
	notifier    Notifier
	events      EventPublisher
	log         *zap.Logger
	now         func() time.Time

	inflight sync.Map // uuid.UUID -> struct{}
	evidence evidenceMemo
}

func NewSolicitationService(d SolicitationDeps) SolicitationService {
	s := &solicitationService{
		repo:        d.Repo,
		supervisors: d.Supervisors,
		motoboys:    d.Motoboys,
		audit:       d.Audit,
		tx:          d.Tx,
		vouchers:    d.Vouchers,
		store:       d.Store,
		notifier:    d.Notifier,
		events:      d.Events,
		log:         d.Logger,
		now:         d.Now,
		evidence:    evidenceMemo{entries: make(map[uuid.UUID]evidenceEntry)},
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// --- evidence memo ---

type evidenceEntry struct {
	url   string
	found bool
}

// evidenceMemo remembers storage probes for photo evidence per request.
// Any mutation of a request forgets its entry.
type evidenceMemo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]evidenceEntry
}

func (m *evidenceMemo) get(id uuid.UUID) (evidenceEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *evidenceMemo) put(id uuid.UUID, e evidenceEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = e
}

func (m *evidenceMemo) forget(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// --- helpers ---

func parseSolicitationID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, validationf("invalid solicitation id %q", id)
	}
	return uid, nil
}

func parseActor(actor string) *uuid.UUID {
	uid, err := uuid.Parse(actor)
	if err != nil {
		return nil
	}
	return &uid
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// begin marks id as having a transition in progress in this process.
func (s *solicitationService) begin(id uuid.UUID) (func(), error) {
	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, validationf("another action is already running for this request")
	}
	return func() { s.inflight.Delete(id) }, nil
}

func (s *solicitationService) load(ctx context.Context, id uuid.UUID) (*model.Solicitation, error) {
	sol, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "solicitation")
	}
	return sol, nil
}

func (s *solicitationService) runInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

// mutate persists columns and the audit row together, then forgets the
// evidence memo and tells connected clients.
func (s *solicitationService) mutate(ctx context.Context, sol *model.Solicitation, columns map[string]interface{}, actor, action string, details map[string]interface{}) error {
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Updates(txCtx, sol.ID, columns); err != nil {
			return translateRepoErr(err, "solicitation")
		}
		return s.writeAudit(txCtx, actor, action, sol, details)
	})
	if err != nil {
		return err
	}
	s.evidence.forget(sol.ID)
	s.publish(EventUpdate, sol.ID)
	return nil
}

func (s *solicitationService) writeAudit(ctx context.Context, actor, action string, sol *model.Solicitation, details map[string]interface{}) error {
	if s.audit == nil {
		return nil
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := &model.AuditLog{
		UserID:     parseActor(actor),
		Action:     action,
		EntityID:   sol.ID.String(),
		EntityName: sol.Nome,
		Details:    string(raw),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *solicitationService) publish(event string, id uuid.UUID) {
	if s.events != nil {
		s.events.Publish(model.Solicitation{}.TableName(), event, id.String())
	}
}

func (s *solicitationService) dispatch(ctx context.Context, category string, payload any, id uuid.UUID) bool {
	if s.notifier == nil {
		return false
	}
	return s.notifier.Dispatch(ctx, category, payload, id.String())
}

// --- CRUD ---

func (s *solicitationService) Create(ctx context.Context, req CreateSolicitationRequest, actor string) (*SolicitationResponse, error) {
	sol := &model.Solicitation{
		Fone:         strings.TrimSpace(req.Fone),
		Nome:         strings.TrimSpace(req.Nome),
		Matricula:    strings.TrimSpace(req.Matricula),
		Placa:        strings.ToUpper(strings.TrimSpace(req.Placa)),
		Solicitacao:  strings.TrimSpace(req.Solicitacao),
		AprovacaoSup: model.ApprovalPending,
		Aprovacao:    model.ApprovalPending,
		Status:       model.StatusLabel(model.ApprovalPending),
		Avisado:      true,
		StatusImagem: model.EvidencePending,
		CreatedBy:    parseActor(actor),
	}

	if req.MotoboyID != "" {
		mid, err := uuid.Parse(req.MotoboyID)
		if err != nil {
			return nil, validationf("invalid motoboyId")
		}
		if s.motoboys == nil {
			return nil, validationf("motoboy lookup is not available")
		}
		m, err := s.motoboys.FindByID(ctx, mid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationf("motoboy %s not found", req.MotoboyID)
			}
			return nil, translateRepoErr(err, "motoboy")
		}
		sol.MotoboyID = &m.ID
		if sol.Nome == "" {
			sol.Nome = m.Nome
		}
		if sol.Fone == "" {
			sol.Fone = m.Fone
		}
		if sol.Matricula == "" {
			sol.Matricula = m.Matricula
		}
		if sol.Placa == "" {
			sol.Placa = m.Placa
		}
		if req.SupervisorCodigo == "" && m.SupervisorCodigo != nil {
			req.SupervisorCodigo = *m.SupervisorCodigo
		}
	}

	if sol.Nome == "" {
		return nil, validationf("nome is required")
	}
	if sol.Solicitacao == "" {
		return nil, validationf("solicitacao is required")
	}
	if req.Valor == nil || !req.Valor.IsPositive() {
		return nil, validationf("valor must be greater than zero")
	}
	sol.Valor = req.Valor.Round(2)
	sol.Categoria = model.ParseCategory(sol.Solicitacao)

	if sol.Fone != "" {
		normalized, err := phone.Normalize(sol.Fone)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		sol.Fone = normalized
	}

	data, err := s.parseDate(req.Data)
	if err != nil {
		return nil, err
	}
	sol.Data = data

	if sol.Categoria == model.CategoryParts && strings.TrimSpace(req.DescricaoPecas) == "" {
		return nil, validationf("descricaoPecas is required for parts requests")
	}
	if req.ValorCombustivel != nil {
		if req.ValorCombustivel.IsNegative() {
			return nil, validationf("valorCombustivel must not be negative")
		}
		sol.ValorCombustivel = decimal.NewNullDecimal(req.ValorCombustivel.Round(2))
	}
	sol.DescricaoPecas = optionalString(req.DescricaoPecas)

	if code := strings.TrimSpace(req.SupervisorCodigo); code != "" {
		if err := s.checkSupervisor(ctx, code); err != nil {
			return nil, err
		}
		sol.SupervisorCodigo = &code
	}

	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, sol); err != nil {
			return fmt.Errorf("failed to create solicitation: %w", err)
		}
		return s.writeAudit(txCtx, actor, model.ActionCreateSolicitation, sol, map[string]interface{}{
			"categoria": sol.Categoria,
			"valor":     sol.Valor.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(EventInsert, sol.ID)

	created, err := s.load(ctx, sol.ID)
	if err != nil {
		return nil, err
	}

	s.dispatch(context.WithoutCancel(ctx), model.WebhookTypeGeneral, webhook.NewRequestPayload{
		Mensagem:    webhook.NewRequestMessage(created.Nome, created.Solicitacao, created.Valor),
		ID:          created.ID.String(),
		Nome:        created.Nome,
		Telefone:    created.Fone,
		Solicitacao: created.Solicitacao,
		Valor:       webhook.Amount(created.Valor),
		Status:      model.ApprovalPending,
		Timestamp:   s.now().UTC(),
	}, created.ID)

	res := toSolicitationResponse(created)
	return &res, nil
}

func (s *solicitationService) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, validationf("data must be YYYY-MM-DD")
}

func (s *solicitationService) checkSupervisor(ctx context.Context, code string) error {
	if s.supervisors == nil {
		return nil
	}
	if _, err := s.supervisors.FindByCode(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationf("supervisor %s not found", code)
		}
		return translateRepoErr(err, "supervisor")
	}
	return nil
}

func (s *solicitationService) Get(ctx context.Context, id string) (*SolicitationResponse, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	res := toSolicitationResponse(sol)
	return &res, nil
}

func (s *solicitationService) List(ctx context.Context, filter SolicitationListFilter) ([]SolicitationResponse, int64, error) {
	if filter.AprovacaoSup != "" && !model.ValidApproval(filter.AprovacaoSup) {
		return nil, 0, validationf("invalid aprovacaoSup filter %q", filter.AprovacaoSup)
	}
	if filter.Aprovacao != "" && !model.ValidApproval(filter.Aprovacao) {
		return nil, 0, validationf("invalid aprovacao filter %q", filter.Aprovacao)
	}
	cat := model.Category(filter.Categoria)
	if cat != "" && !cat.Valid() {
		return nil, 0, validationf("invalid categoria filter %q", filter.Categoria)
	}
	p := pagination.New(filter.Page, filter.Limit)

	rows, total, err := s.repo.List(ctx, repository.SolicitationFilter{
		AprovacaoSup:     filter.AprovacaoSup,
		Aprovacao:        filter.Aprovacao,
		Categoria:        cat,
		SupervisorCodigo: filter.SupervisorCodigo,
		Search:           strings.TrimSpace(filter.Search),
		Page:             p.Page,
		Limit:            p.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch solicitations: %w", err)
	}

	result := make([]SolicitationResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toSolicitationResponse(&rows[i]))
	}
	return result, total, nil
}

func (s *solicitationService) Update(ctx context.Context, id string, req UpdateSolicitationRequest, actor string) (*SolicitationResponse, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sol.AprovacaoSup != model.ApprovalPending {
		return nil, validationf("only pending requests can be edited; reset it first")
	}

	cols := map[string]interface{}{}
	if req.Nome != nil {
		nome := strings.TrimSpace(*req.Nome)
		if nome == "" {
			return nil, validationf("nome is required")
		}
		cols["nome"] = nome
		sol.Nome = nome
	}
	if req.Fone != nil {
		fone := strings.TrimSpace(*req.Fone)
		if fone != "" {
			if fone, err = phone.Normalize(fone); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
		}
		cols["fone"] = fone
	}
	if req.Matricula != nil {
		cols["matricula"] = strings.TrimSpace(*req.Matricula)
	}
	if req.Placa != nil {
		cols["placa"] = strings.ToUpper(strings.TrimSpace(*req.Placa))
	}
	if req.Data != nil {
		d, err := s.parseDate(*req.Data)
		if err != nil {
			return nil, err
		}
		cols["data"] = d
	}
	if req.Solicitacao != nil {
		text := strings.TrimSpace(*req.Solicitacao)
		if text == "" {
			return nil, validationf("solicitacao is required")
		}
		cols["solicitacao"] = text
		sol.Categoria = model.ParseCategory(text)
		cols["categoria"] = sol.Categoria
	}
	if req.Valor != nil {
		if !req.Valor.IsPositive() {
			return nil, validationf("valor must be greater than zero")
		}
		cols["valor"] = req.Valor.Round(2)
	}
	if req.ValorCombustivel != nil {
		if req.ValorCombustivel.IsNegative() {
			return nil, validationf("valorCombustivel must not be negative")
		}
		cols["valor_combustivel"] = decimal.NewNullDecimal(req.ValorCombustivel.Round(2))
	}
	if req.DescricaoPecas != nil {
		sol.DescricaoPecas = optionalString(*req.DescricaoPecas)
		cols["descricao_pecas"] = sol.DescricaoPecas
	}
	if sol.Categoria == model.CategoryParts && deref(sol.DescricaoPecas) == "" {
		return nil, validationf("descricaoPecas is required for parts requests")
	}
	if req.SupervisorCodigo != nil {
		code := strings.TrimSpace(*req.SupervisorCodigo)
		if code == "" {
			cols["supervisor_codigo"] = nil
		} else {
			if err := s.checkSupervisor(ctx, code); err != nil {
				return nil, err
			}
			cols["supervisor_codigo"] = code
		}
	}
	if len(cols) == 0 {
		res := toSolicitationResponse(sol)
		return &res, nil
	}

	fields := make([]string, 0, len(cols))
	for k := range cols {
		fields = append(fields, k)
	}
	if err := s.mutate(ctx, sol, cols, actor, model.ActionUpdateSolicitation, map[string]interface{}{"fields": fields}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *solicitationService) Delete(ctx context.Context, id string, actor string) error {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return err
	}
	release, err := s.begin(uid)
	if err != nil {
		return err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	sol, err := s.load(ctx, uid)
	if err != nil {
		return err
	}
	prior := deref(sol.PdfLaudo)

	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, uid); err != nil {
			return translateRepoErr(err, "solicitation")
		}
		return s.writeAudit(txCtx, actor, model.ActionDeleteSolicitation, sol, map[string]interface{}{
			"aprovacao_sup": sol.AprovacaoSup,
			"pdf_laudo":     prior,
		})
	})
	if err != nil {
		return err
	}
	s.evidence.forget(uid)
	s.publish(EventDelete, uid)

	if prior != "" {
		s.discardDocument(ctx, uid, prior)
	}
	return nil
}

// discardDocument is best-effort cleanup: failures are logged, not retried.
func (s *solicitationService) discardDocument(ctx context.Context, id uuid.UUID, docURL string) {
	if err := s.store.Delete(ctx, docURL); err != nil {
		s.log.Warn("failed to delete stored voucher",
			zap.String("solicitation_id", id.String()),
			zap.String("url", docURL),
			zap.Error(err),
		)
	}
}

// --- transitions ---

func (s *solicitationService) Approve(ctx context.Context, id string, in ApproveInput, actor string) (*TransitionResult, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sol.AprovacaoSup != model.ApprovalPending {
		return nil, validationf("request is already %s; reset it to pending first", sol.AprovacaoSup)
	}

	cols := map[string]interface{}{}
	var (
		doc        []byte
		genErr     error
		supervisor *model.Supervisor
	)

	switch sol.Categoria {
	case model.CategoryParts:
		evidenceURL, found, err := s.lookupEvidence(ctx, sol)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &EvidenceRequiredError{
				SolicitationID: uid.String(),
				Actions:        []string{ActionRequestEvidence, ActionRecheckEvidence},
			}
		}
		if in.ValorPeca == nil || !in.ValorPeca.IsPositive() {
			return nil, validationf("valorPeca must be greater than zero")
		}
		loja := strings.TrimSpace(in.LojaAutorizada)
		if loja == "" {
			return nil, validationf("lojaAutorizada is required")
		}
		desc := strings.TrimSpace(in.DescricaoCompletaPecas)
		if desc == "" {
			return nil, validationf("descricaoCompletaPecas is required")
		}
		valorPeca := in.ValorPeca.Round(2)

		supervisor = sol.Supervisor
		doc, genErr = s.vouchers.Parts(voucher.PartsVoucher{
			Nome:           sol.Nome,
			Telefone:       phone.Display(sol.Fone),
			Placa:          sol.Placa,
			Matricula:      sol.Matricula,
			DescricaoPecas: desc,
			ValorPeca:      valorPeca,
			Loja:           loja,
			DataCriacao:    sol.Data,
			Supervisor:     supervisorRef(supervisor),
		})

		cols["valor_peca"] = decimal.NewNullDecimal(valorPeca)
		cols["loja_autorizada"] = loja
		cols["descricao_completa_pecas"] = desc
		if deref(sol.URLImagemPecas) == "" {
			cols["url_imagem_pecas"] = evidenceURL
			cols["status_imagem"] = model.EvidenceReceived
		}

	default:
		supervisor = sol.Supervisor
		if code := strings.TrimSpace(in.SupervisorCodigo); code != "" && s.supervisors != nil {
			sup, err := s.supervisors.FindByCode(ctx, code)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, validationf("supervisor %s not found", code)
				}
				return nil, translateRepoErr(err, "supervisor")
			}
			supervisor = sup
			cols["supervisor_codigo"] = sup.Codigo
		}

		doc, genErr = s.vouchers.Fuel(voucher.FuelVoucher{
			Nome:             sol.Nome,
			Telefone:         phone.Display(sol.Fone),
			Placa:            sol.Placa,
			Solicitacao:      sol.Solicitacao,
			ValorCombustivel: sol.ValorCombustivel,
			DataCriacao:      sol.Data,
			Supervisor:       supervisorRef(supervisor),
		})
	}
	if genErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, genErr)
	}

	key := storage.VoucherKey(sol.Categoria.StorageFolder(), sol.Nome, s.now())
	docURL, err := s.store.Upload(ctx, key, doc, storage.ContentTypePDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	cols["aprovacao_sup"] = model.ApprovalApproved
	cols["aprovacao"] = model.ApprovalApproved
	cols["status"] = model.StatusLabel(model.ApprovalApproved)
	cols["pdf_laudo"] = docURL
	cols["motivo_rejeicao"] = nil

	if err := s.mutate(ctx, sol, cols, actor, model.ActionApproveSolicitation, map[string]interface{}{
		"categoria": sol.Categoria,
		"pdf_laudo": docURL,
	}); err != nil {
		// the row does not point at the upload, so it must not outlive the failure
		s.discardDocument(ctx, uid, docURL)
		return nil, err
	}

	updated, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}

	pdf64 := base64.StdEncoding.EncodeToString(doc)
	payload := s.decisionPayload(updated, model.ApprovalApproved, nil)
	payload.Mensagem = webhook.ApprovalMessage(updated.Categoria, updated.Nome, updated.Solicitacao, approvedAmount(updated), deref(updated.LojaAutorizada))
	payload.PdfURL = &docURL
	payload.PdfBase64 = &pdf64

	notified := s.dispatch(ctx, model.WebhookTypeApproval, payload, uid)
	result := &TransitionResult{Solicitation: toSolicitationResponse(updated), Notified: notified}
	if !notified {
		result.Warning = "voucher saved, notification failed"
	}
	return result, nil
}

func (s *solicitationService) Reject(ctx context.Context, id string, in RejectInput, actor string) (*TransitionResult, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sol.AprovacaoSup != model.ApprovalPending {
		return nil, validationf("request is already %s; reset it to pending first", sol.AprovacaoSup)
	}

	motivo := strings.TrimSpace(in.Motivo)
	if motivo == "" {
		return nil, validationf("motivo is required")
	}

	cols := map[string]interface{}{
		"aprovacao_sup":   model.ApprovalRejected,
		"aprovacao":       model.ApprovalRejected,
		"status":          model.StatusLabel(model.ApprovalRejected),
		"motivo_rejeicao": motivo,
	}

	var sup *webhook.SupervisorInfo
	if sol.Categoria == model.CategoryFuel {
		nome := strings.TrimSpace(in.SupervisorNome)
		codigo := strings.TrimSpace(in.SupervisorCodigo)
		if nome == "" || codigo == "" {
			return nil, validationf("supervisor name and code are required to reject a fuel request")
		}
		sup = &webhook.SupervisorInfo{Nome: nome, Codigo: codigo}
	}

	if err := s.mutate(ctx, sol, cols, actor, model.ActionRejectSolicitation, map[string]interface{}{
		"motivo":     motivo,
		"supervisor": sup,
	}); err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}

	payload := s.decisionPayload(updated, model.ApprovalRejected, sup)
	payload.Mensagem = webhook.RejectionMessage(updated.Categoria, updated.Nome, updated.Solicitacao, motivo, sup)
	payload.Motivo = &motivo

	notified := s.dispatch(ctx, model.WebhookTypeApproval, payload, uid)
	result := &TransitionResult{Solicitation: toSolicitationResponse(updated), Notified: notified}
	if !notified {
		result.Warning = "rejection saved, notification failed"
	}
	return result, nil
}

func (s *solicitationService) Reset(ctx context.Context, id string, actor string) (*SolicitationResponse, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	prior := deref(sol.PdfLaudo)

	cols := map[string]interface{}{
		"aprovacao_sup":   model.ApprovalPending,
		"aprovacao":       model.ApprovalPending,
		"status":          model.StatusLabel(model.ApprovalPending),
		"pdf_laudo":       nil,
		"motivo_rejeicao": nil,
	}
	if err := s.mutate(ctx, sol, cols, actor, model.ActionResetSolicitation, map[string]interface{}{
		"from":      sol.AprovacaoSup,
		"pdf_laudo": prior,
	}); err != nil {
		return nil, err
	}

	if prior != "" {
		s.discardDocument(ctx, uid, prior)
	}
	return s.Get(ctx, id)
}

// --- evidence ---

// lookupEvidence returns the photo evidence URL: the stored column first,
// then a (memoized) probe of the request's evidence folder.
func (s *solicitationService) lookupEvidence(ctx context.Context, sol *model.Solicitation) (string, bool, error) {
	if u := deref(sol.URLImagemPecas); u != "" {
		return u, true, nil
	}
	if e, ok := s.evidence.get(sol.ID); ok {
		return e.url, e.found, nil
	}
	u, found, err := s.store.FindFirst(ctx, storage.EvidencePrefix(sol.ID.String()))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.evidence.put(sol.ID, evidenceEntry{url: u, found: found})
	return u, found, nil
}

func (s *solicitationService) RequestEvidence(ctx context.Context, id string, actor string) (*TransitionResult, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sol.Categoria != model.CategoryParts {
		return nil, validationf("photo evidence only applies to parts requests")
	}

	if err := s.mutate(ctx, sol, map[string]interface{}{"status_imagem": model.EvidencePending}, actor, model.ActionRequestEvidence, nil); err != nil {
		return nil, err
	}

	payload := webhook.EvidenceRequestPayload{
		Mensagem:        webhook.EvidenceRequestMessage(sol.Nome, deref(sol.DescricaoPecas), sol.Placa, sol.Valor),
		ID:              sol.ID.String(),
		Nome:            sol.Nome,
		Telefone:        sol.Fone,
		TipoSolicitacao: webhook.EvidenceTitle,
		Solicitacao:     webhook.EvidenceTitle,
		Valor:           webhook.Amount(sol.Valor),
		Placa:           sol.Placa,
		DescricaoPecas:  sol.DescricaoPecas,
		Tag:             webhook.EvidenceTag,
		Status:          webhook.EvidenceStatus,
		Motivo:          webhook.EvidenceMotivo,
		Timestamp:       s.now().UTC(),
	}
	notified := s.dispatch(ctx, model.WebhookTypeApproval, payload, uid)

	updated, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	result := &TransitionResult{Solicitation: toSolicitationResponse(updated), Notified: notified}
	if !notified {
		result.Warning = "evidence request not delivered"
	}
	return result, nil
}

func (s *solicitationService) RecheckEvidence(ctx context.Context, id string, actor string) (*EvidenceResult, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()
	s.evidence.forget(uid)

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if deref(sol.URLImagemPecas) != "" {
		return &EvidenceResult{Solicitation: toSolicitationResponse(sol), Found: true}, nil
	}

	u, found, err := s.lookupEvidence(ctx, sol)
	if err != nil {
		return nil, err
	}
	if !found {
		return &EvidenceResult{Solicitation: toSolicitationResponse(sol), Found: false}, nil
	}

	updated, err := s.storeEvidence(ctx, sol, u, actor)
	if err != nil {
		return nil, err
	}
	return &EvidenceResult{Solicitation: *updated, Found: true}, nil
}

func (s *solicitationService) AttachEvidence(ctx context.Context, id string, evidenceURL string, actor string) (*SolicitationResponse, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	evidenceURL = strings.TrimSpace(evidenceURL)
	parsed, err := url.Parse(evidenceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, validationf("evidence url must be an absolute http(s) URL")
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sol.Categoria != model.CategoryParts {
		return nil, validationf("photo evidence only applies to parts requests")
	}
	return s.storeEvidence(ctx, sol, evidenceURL, actor)
}

func (s *solicitationService) storeEvidence(ctx context.Context, sol *model.Solicitation, evidenceURL, actor string) (*SolicitationResponse, error) {
	cols := map[string]interface{}{
		"url_imagem_pecas": evidenceURL,
		"status_imagem":    model.EvidenceReceived,
	}
	if err := s.mutate(ctx, sol, cols, actor, model.ActionAttachEvidence, map[string]interface{}{"url": evidenceURL}); err != nil {
		return nil, err
	}
	return s.Get(ctx, sol.ID.String())
}

func (s *solicitationService) SetEvidenceStatus(ctx context.Context, id string, status string, actor string) (*SolicitationResponse, error) {
	uid, err := parseSolicitationID(id)
	if err != nil {
		return nil, err
	}
	switch status {
	case model.EvidencePending, model.EvidenceReceived, model.EvidenceProcessed:
	default:
		return nil, validationf("invalid evidence status %q", status)
	}
	release, err := s.begin(uid)
	if err != nil {
		return nil, err
	}
	defer release()

	sol, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.mutate(ctx, sol, map[string]interface{}{"status_imagem": status}, actor, model.ActionEvidenceStatus, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// --- payloads ---

func supervisorRef(sup *model.Supervisor) *voucher.SupervisorRef {
	if sup == nil {
		return nil
	}
	return &voucher.SupervisorRef{Codigo: sup.Codigo, Nome: sup.Nome}
}

// approvedAmount is what the courier may spend: the authorized part value,
// else the fuel amount, else the requested amount.
func approvedAmount(sol *model.Solicitation) decimal.Decimal {
	if sol.Categoria == model.CategoryParts && sol.ValorPeca.Valid {
		return sol.ValorPeca.Decimal
	}
	if sol.ValorCombustivel.Valid && sol.ValorCombustivel.Decimal.IsPositive() {
		return sol.ValorCombustivel.Decimal
	}
	return sol.Valor
}

// decisionPayload builds the courier notification. Approvals fall back to the
// request's supervisor; rejections only carry the one named in the form.
func (s *solicitationService) decisionPayload(sol *model.Solicitation, decision string, sup *webhook.SupervisorInfo) webhook.DecisionPayload {
	if sup == nil && decision == model.ApprovalApproved && sol.Supervisor != nil {
		sup = &webhook.SupervisorInfo{Nome: sol.Supervisor.Nome, Codigo: sol.Supervisor.Codigo}
	}
	return webhook.DecisionPayload{
		ID:                     sol.ID.String(),
		Nome:                   sol.Nome,
		Telefone:               sol.Fone,
		AprovacaoSup:           decision,
		Solicitacao:            sol.Solicitacao,
		Categoria:              string(sol.Categoria),
		Valor:                  webhook.Amount(approvedAmount(sol)),
		ValorPeca:              webhook.OptionalAmount(sol.ValorPeca),
		LojaAutorizada:         sol.LojaAutorizada,
		DescricaoCompletaPecas: sol.DescricaoCompletaPecas,
		Supervisor:             sup,
		PdfURL:                 sol.PdfLaudo,
		Timestamp:              s.now().UTC(),
	}
}
