package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/pkg/pagination"
	"motoboy/pkg/phone"

	"github.com/google/uuid"
)

type MotoboyRequest struct {
	Fone             string `json:"fone" binding:"required"`
	Nome             string `json:"nome" binding:"required"`
	Matricula        string `json:"matricula"`
	Placa            string `json:"placa"`
	SupervisorCodigo string `json:"supervisorCodigo"`
	Ativo            *bool  `json:"ativo"`
}

type MotoboyResponse struct {
	ID               string  `json:"id"`
	Fone             string  `json:"fone"`
	Nome             string  `json:"nome"`
	Matricula        string  `json:"matricula"`
	Placa            string  `json:"placa"`
	SupervisorCodigo *string `json:"supervisorCodigo,omitempty"`
	Ativo            bool    `json:"ativo"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

type MotoboyService interface {
	List(ctx context.Context, search string, page, limit int) ([]MotoboyResponse, int64, error)
	Get(ctx context.Context, id string) (*MotoboyResponse, error)
	Create(ctx context.Context, req MotoboyRequest) (*MotoboyResponse, error)
	Update(ctx context.Context, id string, req MotoboyRequest) (*MotoboyResponse, error)
	Delete(ctx context.Context, id string) error
}

type motoboyService struct {
	repo        repository.MotoboyRepository
	supervisors repository.SupervisorRepository
}

func NewMotoboyService(repo repository.MotoboyRepository, supervisors repository.SupervisorRepository) MotoboyService {
	return &motoboyService{repo: repo, supervisors: supervisors}
}

func toMotoboyResponse(m *model.Motoboy) MotoboyResponse {
	return MotoboyResponse{
		ID:               m.ID.String(),
		Fone:             m.Fone,
		Nome:             m.Nome,
		Matricula:        m.Matricula,
		Placa:            m.Placa,
		SupervisorCodigo: m.SupervisorCodigo,
		Ativo:            m.Ativo,
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        m.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *motoboyService) List(ctx context.Context, search string, page, limit int) ([]MotoboyResponse, int64, error) {
	p := pagination.New(page, limit)
	list, total, err := s.repo.List(ctx, strings.TrimSpace(search), p.Page, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]MotoboyResponse, 0, len(list))
	for i := range list {
		res = append(res, toMotoboyResponse(&list[i]))
	}
	return res, total, nil
}

func (s *motoboyService) Get(ctx context.Context, id string) (*MotoboyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, validationf("invalid motoboy id")
	}
	m, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, translateRepoErr(err, "motoboy")
	}
	res := toMotoboyResponse(m)
	return &res, nil
}

// apply copies a request onto a row, normalising the phone number.
func (s *motoboyService) apply(ctx context.Context, m *model.Motoboy, req MotoboyRequest) error {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return validationf("nome is required")
	}
	fone, err := phone.Normalize(req.Fone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	m.Nome = nome
	m.Fone = fone
	m.Matricula = strings.TrimSpace(req.Matricula)
	m.Placa = strings.ToUpper(strings.TrimSpace(req.Placa))
	if req.Ativo != nil {
		m.Ativo = *req.Ativo
	}

	m.SupervisorCodigo = nil
	if code := strings.TrimSpace(req.SupervisorCodigo); code != "" {
		if s.supervisors != nil {
			if _, err := s.supervisors.FindByCode(ctx, code); err != nil {
				return translateRepoErr(err, "supervisor "+code)
			}
		}
		m.SupervisorCodigo = &code
	}
	return nil
}

func (s *motoboyService) Create(ctx context.Context, req MotoboyRequest) (*MotoboyResponse, error) {
	m := &model.Motoboy{Ativo: true}
	if err := s.apply(ctx, m, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	res := toMotoboyResponse(m)
	return &res, nil
}

func (s *motoboyService) Update(ctx context.Context, id string, req MotoboyRequest) (*MotoboyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, validationf("invalid motoboy id")
	}
	m, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, translateRepoErr(err, "motoboy")
	}
	if err := s.apply(ctx, m, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	res := toMotoboyResponse(m)
	return &res, nil
}

func (s *motoboyService) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return validationf("invalid motoboy id")
	}
	return translateRepoErr(s.repo.Delete(ctx, uid), "motoboy")
}
