package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"motoboy/internal/middleware"
	"motoboy/internal/service"
	"motoboy/internal/voucher"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "handler-secret"

type mockSolicitationService struct {
	service.SolicitationService // unimplemented methods panic

	CreateFunc  func(ctx context.Context, req service.CreateSolicitationRequest, actor string) (*service.SolicitationResponse, error)
	ListFunc    func(ctx context.Context, f service.SolicitationListFilter) ([]service.SolicitationResponse, int64, error)
	ApproveFunc func(ctx context.Context, id string, in service.ApproveInput, actor string) (*service.TransitionResult, error)
	RejectFunc  func(ctx context.Context, id string, in service.RejectInput, actor string) (*service.TransitionResult, error)
	GetFunc     func(ctx context.Context, id string) (*service.SolicitationResponse, error)
}

func (m *mockSolicitationService) Create(ctx context.Context, req service.CreateSolicitationRequest, actor string) (*service.SolicitationResponse, error) {
	return m.CreateFunc(ctx, req, actor)
}

func (m *mockSolicitationService) List(ctx context.Context, f service.SolicitationListFilter) ([]service.SolicitationResponse, int64, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockSolicitationService) Approve(ctx context.Context, id string, in service.ApproveInput, actor string) (*service.TransitionResult, error) {
	return m.ApproveFunc(ctx, id, in, actor)
}

func (m *mockSolicitationService) Reject(ctx context.Context, id string, in service.RejectInput, actor string) (*service.TransitionResult, error) {
	return m.RejectFunc(ctx, id, in, actor)
}

func (m *mockSolicitationService) Get(ctx context.Context, id string) (*service.SolicitationResponse, error) {
	return m.GetFunc(ctx, id)
}

func bearer(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "role": role, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func newRouter(register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r.Group("/api"))
	return r
}

func do(r http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}
	return env
}

func TestCreateSolicitation(t *testing.T) {
	var actor string
	svc := &mockSolicitationService{
		CreateFunc: func(_ context.Context, req service.CreateSolicitationRequest, a string) (*service.SolicitationResponse, error) {
			actor = a
			if req.Nome == "" {
				return nil, fmt.Errorf("%w: nome is required", service.ErrValidation)
			}
			return &service.SolicitationResponse{ID: "s1", Nome: req.Nome, AprovacaoSup: "pendente", Status: "Fase de aprovação"}, nil
		},
	}
	r := newRouter(NewSolicitationHandler(svc, middleware.NewAuth(testSecret, false)).RegisterRoutes)

	w := do(r, http.MethodPost, "/api/solicitations", bearer(t, "op-1", "operador"), map[string]any{
		"nome": "João Silva", "solicitacao": "Combustível", "valor": "50.00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var res service.SolicitationResponse
	if err := json.Unmarshal(decode(t, w).Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.AprovacaoSup != "pendente" || actor != "op-1" {
		t.Errorf("res = %+v, actor = %q", res, actor)
	}

	w = do(r, http.MethodPost, "/api/solicitations", bearer(t, "op-1", "operador"), map[string]any{"solicitacao": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("validation status = %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/solicitations", "", map[string]any{"nome": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", w.Code)
	}
}

func TestApproveErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"evidence", &service.EvidenceRequiredError{SolicitationID: "s1", Actions: []string{service.ActionRequestEvidence, service.ActionRecheckEvidence}}, http.StatusConflict},
		{"not pending", fmt.Errorf("%w: request is not pending", service.ErrValidation), http.StatusBadRequest},
		{"missing", fmt.Errorf("%w: solicitation", service.ErrNotFound), http.StatusNotFound},
		{"pdf", fmt.Errorf("%w: boom", service.ErrGeneration), http.StatusBadGateway},
		{"upload", fmt.Errorf("%w: boom", service.ErrStorage), http.StatusBadGateway},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSolicitationService{
				ApproveFunc: func(context.Context, string, service.ApproveInput, string) (*service.TransitionResult, error) {
					return nil, tc.err
				},
			}
			r := newRouter(NewSolicitationHandler(svc, middleware.NewAuth(testSecret, false)).RegisterRoutes)
			w := do(r, http.MethodPost, "/api/solicitations/s1/approve", bearer(t, "sup", "supervisor"), nil)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusConflict {
				var data struct {
					Actions []string `json:"actions"`
				}
				_ = json.Unmarshal(decode(t, w).Data, &data)
				if len(data.Actions) != 2 {
					t.Errorf("actions = %v", data.Actions)
				}
			}
		})
	}
}

func TestApproveReportsNotificationWarning(t *testing.T) {
	svc := &mockSolicitationService{
		ApproveFunc: func(_ context.Context, id string, in service.ApproveInput, _ string) (*service.TransitionResult, error) {
			if in.LojaAutorizada != "Moto Peças" {
				t.Errorf("input not bound: %+v", in)
			}
			return &service.TransitionResult{
				Solicitation: service.SolicitationResponse{ID: id, AprovacaoSup: "aprovado"},
				Notified:     false,
				Warning:      "voucher saved, notification failed",
			}, nil
		},
	}
	r := newRouter(NewSolicitationHandler(svc, middleware.NewAuth(testSecret, false)).RegisterRoutes)
	w := do(r, http.MethodPost, "/api/solicitations/s1/approve", bearer(t, "a", "admin"), map[string]any{
		"valorPeca": 120, "lojaAutorizada": "Moto Peças", "descricaoCompletaPecas": "pastilha",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res service.TransitionResult
	_ = json.Unmarshal(decode(t, w).Data, &res)
	if res.Notified || res.Warning == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestDecisionsNeedSupervisorRole(t *testing.T) {
	svc := &mockSolicitationService{}
	r := newRouter(NewSolicitationHandler(svc, middleware.NewAuth(testSecret, false)).RegisterRoutes)
	w := do(r, http.MethodPost, "/api/solicitations/s1/reject", bearer(t, "op", "operador"), map[string]any{"motivo": "x"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d", w.Code)
	}
}

func TestListPassesFilters(t *testing.T) {
	var got service.SolicitationListFilter
	svc := &mockSolicitationService{
		ListFunc: func(_ context.Context, f service.SolicitationListFilter) ([]service.SolicitationResponse, int64, error) {
			got = f
			return []service.SolicitationResponse{{ID: "a"}}, 1, nil
		},
	}
	r := newRouter(NewSolicitationHandler(svc, middleware.NewAuth(testSecret, false)).RegisterRoutes)
	w := do(r, http.MethodGet, "/api/solicitations?aprovacaoSup=pendente&categoria=pecas&page=2&limit=5", bearer(t, "a", "admin"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got.AprovacaoSup != "pendente" || got.Categoria != "pecas" || got.Page != 2 || got.Limit != 5 {
		t.Errorf("filter = %+v", got)
	}
}

type mockRenderer struct {
	ReportFunc func(r voucher.ReportData) ([]byte, error)
}

func (m *mockRenderer) Report(r voucher.ReportData) ([]byte, error) { return m.ReportFunc(r) }

func TestGeneratePDF(t *testing.T) {
	var seen voucher.ReportData
	renderer := &mockRenderer{ReportFunc: func(r voucher.ReportData) ([]byte, error) {
		seen = r
		return []byte("%PDF-1.3 test"), nil
	}}
	limiter := middleware.NewRateLimiter(2, time.Minute)
	h := NewPDFHandler(renderer, limiter.Middleware(), nil)
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	r := newRouter(h.RegisterRoutes)

	if w := do(r, http.MethodGet, "/api/generate-pdf", "", nil); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/generate-pdf", "", map[string]any{"nome": "Ana"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/generate-pdf", "", map[string]any{
		"nome": "Ana Paula", "telefone": "5511999999999", "tipoSolicitacao": "Combustível", "valor": 50,
		"status": "Fase de aprovação", "aprovacaoSup": "pendente", "dataCriacao": "2024-05-01",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "solicitacao_Ana_Paula_1700000000000.pdf") {
		t.Errorf("disposition = %q", cd)
	}
	if !seen.Valor.Valid || seen.Valor.Decimal.String() != "50" {
		t.Errorf("valor = %+v", seen.Valor)
	}

	// two POSTs already consumed the bucket
	w = do(r, http.MethodPost, "/api/generate-pdf", "", map[string]any{"nome": "a", "telefone": "b", "tipoSolicitacao": "c"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("rate limited status = %d", w.Code)
	}
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

func TestStatus(t *testing.T) {
	r := newRouter(NewHealthHandler(failingPinger{}).RegisterRoutes)
	if w := do(r, http.MethodGet, "/api/status", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}
	r = newRouter(NewHealthHandler(failingPinger{err: errors.New("down")}).RegisterRoutes)
	if w := do(r, http.MethodGet, "/api/status", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
}
