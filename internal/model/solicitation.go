package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supervisor approval states (aprovacao_sup). The rider-facing aprovacao
// column uses the same values.
const (
	ApprovalPending  = "pendente"
	ApprovalApproved = "aprovado"
	ApprovalRejected = "rejeitado"
)

// Photo-evidence receipt states for parts requests (status_imagem).
const (
	EvidencePending   = "pendente"
	EvidenceReceived  = "recebida"
	EvidenceProcessed = "processada"
)

// Status labels shown to staff, derived from aprovacao_sup.
const (
	StatusLabelPending  = "Fase de aprovação"
	StatusLabelApproved = "Aprovado pelo supervisor"
	StatusLabelRejected = "Rejeitado pelo supervisor"
)

// StatusLabel returns the status label for a supervisor approval state.
func StatusLabel(aprovacaoSup string) string {
	switch aprovacaoSup {
	case ApprovalApproved:
		return StatusLabelApproved
	case ApprovalRejected:
		return StatusLabelRejected
	default:
		return StatusLabelPending
	}
}

// ValidApproval reports whether s is one of the three approval states.
func ValidApproval(s string) bool {
	return s == ApprovalPending || s == ApprovalApproved || s == ApprovalRejected
}

// Solicitation is one courier's request for a fuel advance or a parts voucher.
type Solicitation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Data      time.Time `gorm:"column:data;not null" json:"data"` // request date as entered
	Fone      string    `gorm:"type:varchar(40)" json:"fone"`     // 5511999999999@s.whatsapp.net
	Nome      string    `gorm:"type:varchar(255);not null" json:"nome"`
	Matricula string    `gorm:"type:varchar(50)" json:"matricula"`
	Placa     string    `gorm:"type:varchar(20)" json:"placa"`

	Solicitacao      string              `gorm:"type:varchar(100);not null" json:"solicitacao"` // free text, e.g. "Combustível"
	Categoria        Category            `gorm:"type:varchar(20);not null;default:'outro';index" json:"categoria"`
	Valor            decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"valor"`
	ValorCombustivel decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"valor_combustivel"`
	DescricaoPecas   *string             `gorm:"type:text" json:"descricao_pecas"`

	Status       string `gorm:"type:varchar(100);not null" json:"status"`
	Aprovacao    string `gorm:"type:varchar(20);not null;default:'pendente'" json:"aprovacao"`
	Avisado      bool   `gorm:"not null;default:true" json:"avisado"`
	AprovacaoSup string `gorm:"column:aprovacao_sup;type:varchar(20);not null;default:'pendente';index" json:"aprovacao_sup"`

	SupervisorCodigo *string     `gorm:"type:varchar(50);index" json:"supervisor_codigo"`
	Supervisor       *Supervisor `gorm:"foreignKey:SupervisorCodigo;references:Codigo" json:"supervisor,omitempty"`
	MotoboyID        *uuid.UUID  `gorm:"type:uuid;index" json:"motoboy_id"`

	PdfLaudo *string `gorm:"type:text" json:"pdf_laudo"`

	ValorPeca              decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"valor_peca"`
	LojaAutorizada         *string             `gorm:"type:varchar(255)" json:"loja_autorizada"`
	DescricaoCompletaPecas *string             `gorm:"type:text" json:"descricao_completa_pecas"`
	URLImagemPecas         *string             `gorm:"column:url_imagem_pecas;type:text" json:"url_imagem_pecas"`
	StatusImagem           string              `gorm:"type:varchar(20);not null;default:'pendente'" json:"status_imagem"`

	MotivoRejeicao *string    `gorm:"type:text" json:"motivo_rejeicao"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Solicitation) TableName() string {
	return "solicitacoes_motoboy"
}
