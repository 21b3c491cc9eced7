package model

import (
	"time"

	"github.com/google/uuid"
)

// Supervisor approves or rejects requests; referenced by its code.
type Supervisor struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Codigo    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"codigo"`
	Nome      string    `gorm:"type:varchar(255);not null" json:"nome"`
	Ativo     bool      `gorm:"not null;default:true" json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supervisor) TableName() string {
	return "supervisores_motoboy"
}

// Motoboy is a registered courier.
type Motoboy struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Fone             string    `gorm:"type:varchar(40);not null" json:"fone"`
	Nome             string    `gorm:"type:varchar(255);not null;index" json:"nome"`
	Matricula        string    `gorm:"type:varchar(50)" json:"matricula"`
	Placa            string    `gorm:"type:varchar(20)" json:"placa"`
	SupervisorCodigo *string   `gorm:"type:varchar(50);index" json:"supervisor_codigo"`
	Ativo            bool      `gorm:"not null;default:true" json:"ativo"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Motoboy) TableName() string {
	return "motoboys"
}
