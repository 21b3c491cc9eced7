package webhook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evidence request markers read by the chat bot.
const (
	EvidenceTag    = "SOLICITACAO_IMAGEM"
	EvidenceStatus = "aguardando_imagem"
	EvidenceMotivo = "Imagem obrigatória para aprovação de peças"
	EvidenceTitle  = "Solicitação de Imagem"
)

// DecisionPayload announces an approval or rejection.
type DecisionPayload struct {
	Mensagem               string          `json:"mensagem"`
	ID                     string          `json:"id"`
	Nome                   string          `json:"nome"`
	Telefone               string          `json:"telefone"`
	AprovacaoSup           string          `json:"aprovacao_sup"`
	Solicitacao            string          `json:"solicitacao"`
	Categoria              string          `json:"categoria"`
	Valor                  float64         `json:"valor"`
	ValorPeca              *float64        `json:"valor_peca"`
	LojaAutorizada         *string         `json:"loja_autorizada"`
	DescricaoCompletaPecas *string         `json:"descricao_completa_pecas"`
	Motivo                 *string         `json:"motivo"`
	Supervisor             *SupervisorInfo `json:"supervisor,omitempty"`
	PdfURL                 *string         `json:"pdf_url"`
	PdfBase64              *string         `json:"pdf_base64,omitempty"`
	Timestamp              time.Time       `json:"timestamp"`
}

// EvidenceRequestPayload asks the chat bot to collect a photo of the part.
type EvidenceRequestPayload struct {
	Mensagem        string    `json:"mensagem"`
	ID              string    `json:"id"`
	Nome            string    `json:"nome"`
	Telefone        string    `json:"telefone"`
	TipoSolicitacao string    `json:"tipo_solicitacao"`
	Solicitacao     string    `json:"solicitacao"`
	Valor           float64   `json:"valor"`
	Placa           string    `json:"placa"`
	DescricaoPecas  *string   `json:"descricao_pecas"`
	Tag             string    `json:"tag"`
	Status          string    `json:"status"`
	Motivo          string    `json:"motivo"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewRequestPayload goes to the general channel when a request is entered.
type NewRequestPayload struct {
	Mensagem    string    `json:"mensagem"`
	ID          string    `json:"id"`
	Nome        string    `json:"nome"`
	Telefone    string    `json:"telefone"`
	Solicitacao string    `json:"solicitacao"`
	Valor       float64   `json:"valor"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// TestPayload is posted by the "test endpoint" action.
type TestPayload struct {
	Teste       bool      `json:"teste"`
	Timestamp   time.Time `json:"timestamp"`
	WebhookNome string    `json:"webhook_nome"`
	WebhookTipo string    `json:"webhook_tipo"`
	Mensagem    string    `json:"mensagem"`
}

// Amount converts a stored decimal to the JSON number receivers expect.
func Amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// OptionalAmount is Amount for nullable columns.
func OptionalAmount(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}
