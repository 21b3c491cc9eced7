package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Back-office roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operador"
)

// ValidRole reports whether role is a known back-office role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSupervisor || role == RoleOperator
}

// User is a back-office account.
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email            string         `gorm:"type:varchar(255);index" json:"email"`
	Password         string         `gorm:"type:varchar(255);not null" json:"-"`
	Role             string         `gorm:"type:varchar(50);not null" json:"role"`
	SupervisorCodigo *string        `gorm:"type:varchar(50)" json:"supervisor_codigo"` // set for role supervisor
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
