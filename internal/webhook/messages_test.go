package webhook

import (
	"strings"
	"testing"

	"motoboy/internal/model"

	"github.com/shopspring/decimal"
)

func TestApprovalMessage(t *testing.T) {
	fuel := ApprovalMessage(model.CategoryFuel, "João Silva", "Combustível", decimal.RequireFromString("50"), "")
	want := "✅ AUTORIZADO! Olá *João Silva*, sua solicitação de Combustível no valor de R$ 50.00 foi APROVADA pelo supervisor. Você pode retirar o vale ou realizar a compra."
	if fuel != want {
		t.Errorf("fuel message = %q", fuel)
	}

	parts := ApprovalMessage(model.CategoryParts, "Maria", "Vale Peças", decimal.RequireFromString("120.5"), "")
	if !strings.Contains(parts, "loja autorizada no valor de R$ 120.50") {
		t.Errorf("parts message = %q", parts)
	}
}

func TestRejectionMessage(t *testing.T) {
	sup := &SupervisorInfo{Nome: "Carlos", Codigo: "1234"}

	fuel := RejectionMessage(model.CategoryFuel, "João Silva", "Combustível", "limite excedido", sup)
	want := "❌ SOLICITAÇÃO NEGADA: Olá João Silva, sua solicitação de combustível foi rejeitada pelo supervisor Carlos (Código: 1234). Motivo: limite excedido"
	if fuel != want {
		t.Errorf("fuel rejection = %q", fuel)
	}

	parts := RejectionMessage(model.CategoryParts, "Maria", "Vale Peças", "sem orçamento", sup)
	if strings.Contains(parts, "1234") || !strings.Contains(parts, "rejeitada pelo supervisor. Motivo: sem orçamento") {
		t.Errorf("parts rejection = %q", parts)
	}

	if msg := RejectionMessage(model.CategoryOther, "Ana", "Outro", "", nil); !strings.HasSuffix(msg, "Motivo: Motivo não informado") {
		t.Errorf("empty reason = %q", msg)
	}
}

func TestEvidenceRequestMessage(t *testing.T) {
	msg := EvidenceRequestMessage("Maria", "", "XYZ9K87", decimal.NewFromInt(80))
	for _, part := range []string{"📸 SOLICITAÇÃO DE IMAGEM", "*Maria*", "Peça para manutenção", "XYZ9K87", "R$ 80.00"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message missing %q:\n%s", part, msg)
		}
	}
}
