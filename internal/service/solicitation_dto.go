package service

import (
	"time"

	"motoboy/internal/model"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// --- DTOs ---

// Amounts accept both JSON numbers and numeric strings ("50.00").
type CreateSolicitationRequest struct {
	Data             string           `json:"data"` // YYYY-MM-DD, defaults to today
	Fone             string           `json:"fone"`
	Nome             string           `json:"nome"`
	Matricula        string           `json:"matricula"`
	Placa            string           `json:"placa"`
	Solicitacao      string           `json:"solicitacao"`
	Valor            *decimal.Decimal `json:"valor"`
	ValorCombustivel *decimal.Decimal `json:"valorCombustivel"`
	DescricaoPecas   string           `json:"descricaoPecas"`
	SupervisorCodigo string           `json:"supervisorCodigo"`
	MotoboyID        string           `json:"motoboyId"`
}

// UpdateSolicitationRequest edits a pending request. Nil fields are left alone.
type UpdateSolicitationRequest struct {
	Data             *string          `json:"data"`
	Fone             *string          `json:"fone"`
	Nome             *string          `json:"nome"`
	Matricula        *string          `json:"matricula"`
	Placa            *string          `json:"placa"`
	Solicitacao      *string          `json:"solicitacao"`
	Valor            *decimal.Decimal `json:"valor"`
	ValorCombustivel *decimal.Decimal `json:"valorCombustivel"`
	DescricaoPecas   *string          `json:"descricaoPecas"`
	SupervisorCodigo *string          `json:"supervisorCodigo"`
}

type SolicitationListFilter struct {
	AprovacaoSup     string
	Aprovacao        string
	Categoria        string
	SupervisorCodigo string
	Search           string
	Page             int
	Limit            int
}

// ApproveInput carries the supervisor's terms. Parts approvals need all
// three parts fields; fuel approvals may name the approving supervisor.
type ApproveInput struct {
	ValorPeca              *decimal.Decimal `json:"valorPeca"`
	LojaAutorizada         string           `json:"lojaAutorizada"`
	DescricaoCompletaPecas string           `json:"descricaoCompletaPecas"`
	SupervisorCodigo       string           `json:"supervisorCodigo"`
}

type RejectInput struct {
	Motivo           string `json:"motivo"`
	SupervisorNome   string `json:"supervisorNome"`
	SupervisorCodigo string `json:"supervisorCodigo"`
}

type AttachEvidenceInput struct {
	URL string `json:"url" binding:"required"`
}

type EvidenceStatusInput struct {
	Status string `json:"status" binding:"required"`
}

type SupervisorSummary struct {
	ID     string `json:"id"`
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
}

type SolicitationResponse struct {
	ID                     string             `json:"id"`
	Data                   string             `json:"data"`
	Fone                   string             `json:"fone"`
	Nome                   string             `json:"nome"`
	Matricula              string             `json:"matricula"`
	Placa                  string             `json:"placa"`
	Solicitacao            string             `json:"solicitacao"`
	Categoria              string             `json:"categoria"`
	Valor                  float64            `json:"valor"`
	ValorCombustivel       *float64           `json:"valorCombustivel,omitempty"`
	DescricaoPecas         *string            `json:"descricaoPecas,omitempty"`
	Status                 string             `json:"status"`
	Aprovacao              string             `json:"aprovacao"`
	Avisado                bool               `json:"avisado"`
	AprovacaoSup           string             `json:"aprovacaoSup"`
	SupervisorCodigo       *string            `json:"supervisorCodigo,omitempty"`
	Supervisor             *SupervisorSummary `json:"supervisor,omitempty"`
	MotoboyID              *string            `json:"motoboyId,omitempty"`
	PdfLaudo               *string            `json:"pdfLaudo,omitempty"`
	ValorPeca              *float64           `json:"valorPeca,omitempty"`
	LojaAutorizada         *string            `json:"lojaAutorizada,omitempty"`
	DescricaoCompletaPecas *string            `json:"descricaoCompletaPecas,omitempty"`
	URLImagemPecas         *string            `json:"urlImagemPecas,omitempty"`
	StatusImagem           string             `json:"statusImagem"`
	MotivoRejeicao         *string            `json:"motivoRejeicao,omitempty"`
	CreatedAt              string             `json:"createdAt"`
	UpdatedAt              string             `json:"updatedAt"`
}

// TransitionResult reports a state change and whether the courier was told.
type TransitionResult struct {
	Solicitation SolicitationResponse `json:"solicitation"`
	Notified     bool                 `json:"notified"`
	Warning      string               `json:"warning,omitempty"`
}

type EvidenceResult struct {
	Solicitation SolicitationResponse `json:"solicitation"`
	Found        bool                 `json:"found"`
}

// --- Mapping ---

func nullAmount(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func toSolicitationResponse(s *model.Solicitation) SolicitationResponse {
	res := SolicitationResponse{
		ID:                     s.ID.String(),
		Data:                   s.Data.Format(dateLayout),
		Fone:                   s.Fone,
		Nome:                   s.Nome,
		Matricula:              s.Matricula,
		Placa:                  s.Placa,
		Solicitacao:            s.Solicitacao,
		Categoria:              string(s.Categoria),
		Valor:                  s.Valor.InexactFloat64(),
		ValorCombustivel:       nullAmount(s.ValorCombustivel),
		DescricaoPecas:         s.DescricaoPecas,
		Status:                 s.Status,
		Aprovacao:              s.Aprovacao,
		Avisado:                s.Avisado,
		AprovacaoSup:           s.AprovacaoSup,
		SupervisorCodigo:       s.SupervisorCodigo,
		PdfLaudo:               s.PdfLaudo,
		ValorPeca:              nullAmount(s.ValorPeca),
		LojaAutorizada:         s.LojaAutorizada,
		DescricaoCompletaPecas: s.DescricaoCompletaPecas,
		URLImagemPecas:         s.URLImagemPecas,
		StatusImagem:           s.StatusImagem,
		MotivoRejeicao:         s.MotivoRejeicao,
		CreatedAt:              s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              s.UpdatedAt.Format(time.RFC3339),
	}
	if s.Supervisor != nil {
		res.Supervisor = &SupervisorSummary{
			ID:     s.Supervisor.ID.String(),
			Codigo: s.Supervisor.Codigo,
			Nome:   s.Supervisor.Nome,
		}
	}
	if s.MotoboyID != nil {
		id := s.MotoboyID.String()
		res.MotoboyID = &id
	}
	return res
}
