package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"motoboy/internal/model"
	"motoboy/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupervisorRequest struct {
	Codigo string `json:"codigo" binding:"required"`
	Nome   string `json:"nome" binding:"required"`
	Ativo  *bool  `json:"ativo"`
}

type SupervisorResponse struct {
	ID        string `json:"id"`
	Codigo    string `json:"codigo"`
	Nome      string `json:"nome"`
	Ativo     bool   `json:"ativo"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type SupervisorService interface {
	List(ctx context.Context, includeInactive bool) ([]SupervisorResponse, error)
	Get(ctx context.Context, id string) (*SupervisorResponse, error)
	GetByCode(ctx context.Context, codigo string) (*SupervisorResponse, error)
	Create(ctx context.Context, req SupervisorRequest) (*SupervisorResponse, error)
	Update(ctx context.Context, id string, req SupervisorRequest) (*SupervisorResponse, error)
	Delete(ctx context.Context, id string) error
}

type supervisorService struct {
	repo repository.SupervisorRepository
}

func NewSupervisorService(repo repository.SupervisorRepository) SupervisorService {
	return &supervisorService{repo: repo}
}

func toSupervisorResponse(s *model.Supervisor) SupervisorResponse {
	return SupervisorResponse{
		ID:        s.ID.String(),
		Codigo:    s.Codigo,
		Nome:      s.Nome,
		Ativo:     s.Ativo,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *supervisorService) List(ctx context.Context, includeInactive bool) ([]SupervisorResponse, error) {
	list, err := s.repo.List(ctx, !includeInactive)
	if err != nil {
		return nil, err
	}
	res := make([]SupervisorResponse, 0, len(list))
	for i := range list {
		res = append(res, toSupervisorResponse(&list[i]))
	}
	return res, nil
}

func (s *supervisorService) Get(ctx context.Context, id string) (*SupervisorResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, validationf("invalid supervisor id")
	}
	sup, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, translateRepoErr(err, "supervisor")
	}
	res := toSupervisorResponse(sup)
	return &res, nil
}

func (s *supervisorService) GetByCode(ctx context.Context, codigo string) (*SupervisorResponse, error) {
	sup, err := s.repo.FindByCode(ctx, strings.TrimSpace(codigo))
	if err != nil {
		return nil, translateRepoErr(err, "supervisor")
	}
	res := toSupervisorResponse(sup)
	return &res, nil
}

func (s *supervisorService) Create(ctx context.Context, req SupervisorRequest) (*SupervisorResponse, error) {
	codigo := strings.TrimSpace(req.Codigo)
	nome := strings.TrimSpace(req.Nome)
	if codigo == "" || nome == "" {
		return nil, validationf("codigo and nome are required")
	}
	if _, err := s.repo.FindByCode(ctx, codigo); err == nil {
		return nil, validationf("supervisor code %s already exists", codigo)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translateRepoErr(err, "supervisor")
	}

	sup := &model.Supervisor{Codigo: codigo, Nome: nome, Ativo: true}
	if req.Ativo != nil {
		sup.Ativo = *req.Ativo
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	res := toSupervisorResponse(sup)
	return &res, nil
}

func (s *supervisorService) Update(ctx context.Context, id string, req SupervisorRequest) (*SupervisorResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, validationf("invalid supervisor id")
	}
	sup, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, translateRepoErr(err, "supervisor")
	}

	if codigo := strings.TrimSpace(req.Codigo); codigo != "" && codigo != sup.Codigo {
		if _, err := s.repo.FindByCode(ctx, codigo); err == nil {
			return nil, validationf("supervisor code %s already exists", codigo)
		}
		sup.Codigo = codigo
	}
	if nome := strings.TrimSpace(req.Nome); nome != "" {
		sup.Nome = nome
	}
	if req.Ativo != nil {
		sup.Ativo = *req.Ativo
	}

	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	res := toSupervisorResponse(sup)
	return &res, nil
}

func (s *supervisorService) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return validationf("invalid supervisor id")
	}
	return translateRepoErr(s.repo.Delete(ctx, uid), "supervisor")
}
