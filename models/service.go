package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service representa um serviço do catálogo (item vendável). Serviços nunca são
// removidos fisicamente: são desativados para preservar referências históricas
// em agendamentos e ordens de serviço.
type Service struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint `json:"organization_id" gorm:"not null;index"`

	Name        string          `json:"name" gorm:"not null;type:varchar(120)"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`

	EstimatedTimeMinutes *int `json:"estimated_time_minutes"`

	IsActive bool `json:"is_active" gorm:"default:true"`
}

// TableName define o nome da tabela
func (Service) TableName() string {
	return "services"
}
