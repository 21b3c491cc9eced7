package webhook

import (
	"fmt"
	"strings"

	"motoboy/internal/model"

	"github.com/shopspring/decimal"
)

// SupervisorInfo identifies the deciding supervisor in messages and payloads.
type SupervisorInfo struct {
	Nome   string `json:"nome"`
	Codigo string `json:"codigo"`
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// ApprovalMessage is sent to the courier when a voucher is authorized.
func ApprovalMessage(cat model.Category, nome, solicitacao string, valor decimal.Decimal, loja string) string {
	if cat == model.CategoryParts {
		if strings.TrimSpace(loja) == "" {
			loja = "autorizada"
		}
		return fmt.Sprintf("🔧 AUTORIZADO! Olá *%s*, sua solicitação de peça foi APROVADA pelo supervisor. Você pode retirar a peça na loja %s no valor de R$ %s.",
			nome, loja, money(valor))
	}
	return fmt.Sprintf("✅ AUTORIZADO! Olá *%s*, sua solicitação de %s no valor de R$ %s foi APROVADA pelo supervisor. Você pode retirar o vale ou realizar a compra.",
		nome, solicitacao, money(valor))
}

// RejectionMessage is sent when a supervisor denies a request. Fuel
// rejections name the supervisor and code.
func RejectionMessage(cat model.Category, nome, solicitacao, motivo string, sup *SupervisorInfo) string {
	if strings.TrimSpace(motivo) == "" {
		motivo = "Motivo não informado"
	}
	by := " pelo supervisor"
	if cat == model.CategoryFuel && sup != nil {
		by = fmt.Sprintf(" pelo supervisor %s (Código: %s)", sup.Nome, sup.Codigo)
	}
	return fmt.Sprintf("❌ SOLICITAÇÃO NEGADA: Olá %s, sua solicitação de %s foi rejeitada%s. Motivo: %s",
		nome, strings.ToLower(solicitacao), by, motivo)
}

// EvidenceRequestMessage asks the courier for a photo of the part.
func EvidenceRequestMessage(nome, descricao, placa string, valor decimal.Decimal) string {
	if strings.TrimSpace(descricao) == "" {
		descricao = "Peça para manutenção"
	}
	var b strings.Builder
	b.WriteString("📸 SOLICITAÇÃO DE IMAGEM\n\n")
	fmt.Fprintf(&b, "Olá *%s*!\n\n", nome)
	b.WriteString("Para finalizar a aprovação da sua solicitação de peças, precisamos da foto da peça.\n\n")
	fmt.Fprintf(&b, "🔧 *Peça solicitada:* %s\n", descricao)
	fmt.Fprintf(&b, "🚗 *Placa:* %s\n", placa)
	fmt.Fprintf(&b, "💰 *Valor estimado:* R$ %s\n\n", money(valor))
	b.WriteString("📱 *Por favor, envie a foto da peça para prosseguirmos com a aprovação.*\n\n")
	b.WriteString("⚠️ *Importante:* A foto é obrigatória para liberação do vale peças.")
	return b.String()
}

// NewRequestMessage announces a freshly entered request on the general channel.
func NewRequestMessage(nome, solicitacao string, valor decimal.Decimal) string {
	return fmt.Sprintf("🆕 Nova solicitação! *%s* solicitou %s no valor de R$ %s. Aguardando aprovação do supervisor.",
		nome, solicitacao, money(valor))
}

// PingMessage is the text of the "test endpoint" payload.
func PingMessage(webhookNome string) string {
	return "Teste do webhook " + webhookNome
}
