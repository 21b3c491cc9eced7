package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/internal/voucher"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- persistence ---

type memorySolicitations struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]model.Solicitation
	supervisors *memorySupervisors
	updatesErr  error
}

func newMemorySolicitations(sups *memorySupervisors) *memorySolicitations {
	return &memorySolicitations{rows: make(map[uuid.UUID]model.Solicitation), supervisors: sups}
}

func (m *memorySolicitations) Create(_ context.Context, s *model.Solicitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	row := *s
	row.Supervisor = nil
	m.rows[s.ID] = row
	return nil
}

func (m *memorySolicitations) FindByID(_ context.Context, id uuid.UUID) (*model.Solicitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if row.SupervisorCodigo != nil && m.supervisors != nil {
		if sup, err := m.supervisors.FindByCode(context.Background(), *row.SupervisorCodigo); err == nil {
			row.Supervisor = sup
		}
	}
	return &row, nil
}

func (m *memorySolicitations) List(_ context.Context, f repository.SolicitationFilter) ([]model.Solicitation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Solicitation
	for _, row := range m.rows {
		if f.AprovacaoSup != "" && row.AprovacaoSup != f.AprovacaoSup {
			continue
		}
		if f.Categoria != "" && row.Categoria != f.Categoria {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (m *memorySolicitations) Updates(_ context.Context, id uuid.UUID, columns map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updatesErr != nil {
		return m.updatesErr
	}
	row, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	applyColumns(&row, columns)
	row.UpdatedAt = time.Now()
	m.rows[id] = row
	return nil
}

func (m *memorySolicitations) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memorySolicitations) row(id string) model.Solicitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[uuid.MustParse(id)]
}

// applyColumns mirrors what gorm's Updates(map) writes.
func applyColumns(s *model.Solicitation, cols map[string]interface{}) {
	for k, v := range cols {
		switch k {
		case "aprovacao_sup":
			s.AprovacaoSup = v.(string)
		case "aprovacao":
			s.Aprovacao = v.(string)
		case "status":
			s.Status = v.(string)
		case "status_imagem":
			s.StatusImagem = v.(string)
		case "nome":
			s.Nome = v.(string)
		case "fone":
			s.Fone = v.(string)
		case "matricula":
			s.Matricula = v.(string)
		case "placa":
			s.Placa = v.(string)
		case "solicitacao":
			s.Solicitacao = v.(string)
		case "categoria":
			s.Categoria = v.(model.Category)
		case "data":
			s.Data = v.(time.Time)
		case "valor":
			s.Valor = v.(decimal.Decimal)
		case "valor_combustivel":
			s.ValorCombustivel = v.(decimal.NullDecimal)
		case "valor_peca":
			s.ValorPeca = v.(decimal.NullDecimal)
		case "pdf_laudo":
			s.PdfLaudo = optStr(v)
		case "motivo_rejeicao":
			s.MotivoRejeicao = optStr(v)
		case "loja_autorizada":
			s.LojaAutorizada = optStr(v)
		case "descricao_completa_pecas":
			s.DescricaoCompletaPecas = optStr(v)
		case "descricao_pecas":
			s.DescricaoPecas = optStr(v)
		case "url_imagem_pecas":
			s.URLImagemPecas = optStr(v)
		case "supervisor_codigo":
			s.SupervisorCodigo = optStr(v)
		default:
			panic("unexpected column " + k)
		}
	}
}

func optStr(v interface{}) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return &x
	case *string:
		return x
	}
	panic("unexpected value type")
}

type memorySupervisors struct {
	mu   sync.Mutex
	rows map[string]model.Supervisor
}

func newMemorySupervisors(list ...model.Supervisor) *memorySupervisors {
	m := &memorySupervisors{rows: make(map[string]model.Supervisor)}
	for _, s := range list {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		m.rows[s.Codigo] = s
	}
	return m
}

func (m *memorySupervisors) Create(_ context.Context, s *model.Supervisor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.rows[s.Codigo] = *s
	return nil
}

func (m *memorySupervisors) FindByID(_ context.Context, id uuid.UUID) (*model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memorySupervisors) FindByCode(_ context.Context, codigo string) (*model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[codigo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *memorySupervisors) List(_ context.Context, activeOnly bool) ([]model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Supervisor
	for _, s := range m.rows {
		if activeOnly && !s.Ativo {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (m *memorySupervisors) Update(_ context.Context, s *model.Supervisor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, row := range m.rows {
		if row.ID == s.ID {
			delete(m.rows, code)
		}
	}
	m.rows[s.Codigo] = *s
	return nil
}

func (m *memorySupervisors) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, row := range m.rows {
		if row.ID == id {
			delete(m.rows, code)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type mockMotoboyRepository struct {
	FindByIDFunc func(ctx context.Context, id uuid.UUID) (*model.Motoboy, error)
	created      []model.Motoboy
}

func (m *mockMotoboyRepository) Create(_ context.Context, mb *model.Motoboy) error {
	mb.ID = uuid.New()
	m.created = append(m.created, *mb)
	return nil
}

func (m *mockMotoboyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Motoboy, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMotoboyRepository) List(context.Context, string, int, int) ([]model.Motoboy, int64, error) {
	return m.created, int64(len(m.created)), nil
}

func (m *mockMotoboyRepository) Update(context.Context, *model.Motoboy) error { return nil }

func (m *mockMotoboyRepository) Delete(context.Context, uuid.UUID) error { return nil }

type memoryAudit struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (m *memoryAudit) Log(_ context.Context, entry *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAudit) List(_ context.Context, entityID string, _, _ int) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditLog
	for _, e := range m.entries {
		if entityID == "" || e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- side effects ---

type mockRenderer struct {
	mu        sync.Mutex
	FuelFunc  func(v voucher.FuelVoucher) ([]byte, error)
	PartsFunc func(v voucher.PartsVoucher) ([]byte, error)
	fuel      []voucher.FuelVoucher
	parts     []voucher.PartsVoucher
}

func (m *mockRenderer) Fuel(v voucher.FuelVoucher) ([]byte, error) {
	m.mu.Lock()
	m.fuel = append(m.fuel, v)
	m.mu.Unlock()
	if m.FuelFunc != nil {
		return m.FuelFunc(v)
	}
	return []byte("%PDF-fuel"), nil
}

func (m *mockRenderer) Parts(v voucher.PartsVoucher) ([]byte, error) {
	m.mu.Lock()
	m.parts = append(m.parts, v)
	m.mu.Unlock()
	if m.PartsFunc != nil {
		return m.PartsFunc(v)
	}
	return []byte("%PDF-parts"), nil
}

func (m *mockRenderer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fuel) + len(m.parts)
}

const testStoreBase = "https://storage.test/motoboy-documents"

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.objects[key] = data
	m.uploads = append(m.uploads, key)
	return testStoreBase + "/" + key, nil
}

func (m *memoryStore) Delete(_ context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, publicURL)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, strings.TrimPrefix(publicURL, testStoreBase+"/"))
	return nil
}

func (m *memoryStore) FindFirst(_ context.Context, prefix string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false, nil
	}
	sort.Strings(keys)
	return testStoreBase + "/" + keys[0], true, nil
}

func (m *memoryStore) put(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = []byte("jpeg")
}

type dispatchCall struct {
	Category  string
	Payload   any
	RelatedID string
}

type mockNotifier struct {
	mu    sync.Mutex
	ok    bool
	calls []dispatchCall
}

func (m *mockNotifier) Dispatch(_ context.Context, category string, payload any, relatedID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, dispatchCall{category, payload, relatedID})
	return m.ok
}

func (m *mockNotifier) byCategory(category string) []dispatchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dispatchCall
	for _, c := range m.calls {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

type recordedEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedEvents) Publish(table, event, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, table+":"+event)
}

var errBoom = errors.New("boom")

// --- harness ---

type harness struct {
	svc      SolicitationService
	repo     *memorySolicitations
	sups     *memorySupervisors
	motoboys *mockMotoboyRepository
	audit    *memoryAudit
	renderer *mockRenderer
	store    *memoryStore
	notifier *mockNotifier
	events   *recordedEvents
}

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newHarness(notifier Notifier) *harness {
	sups := newMemorySupervisors(model.Supervisor{Codigo: "1234", Nome: "Carlos", Ativo: true})
	h := &harness{
		repo:     newMemorySolicitations(sups),
		sups:     sups,
		motoboys: &mockMotoboyRepository{},
		audit:    &memoryAudit{},
		renderer: &mockRenderer{},
		store:    newMemoryStore(),
		notifier: &mockNotifier{ok: true},
		events:   &recordedEvents{},
	}
	if notifier == nil {
		notifier = h.notifier
	}
	h.svc = NewSolicitationService(SolicitationDeps{
		Repo:        h.repo,
		Supervisors: h.sups,
		Motoboys:    h.motoboys,
		Audit:       h.audit,
		Tx:          passthroughTx{},
		Vouchers:    h.renderer,
		Store:       h.store,
		Notifier:    notifier,
		Events:      h.events,
		Now:         func() time.Time { return fixedNow },
	})
	return h
}
