package models

import (
	"time"
)

// Unit representa uma unidade física (filial) da oficina. Ao contrário dos
// serviços do catálogo, unidades são removidas fisicamente; a API bloqueia a
// remoção enquanto houver leads ou agendamentos vinculados.
type Unit struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint `json:"organization_id" gorm:"not null;index"`

	Name    string `json:"name" gorm:"not null;type:varchar(120)"`
	Address string `json:"address" gorm:"type:text"`
	Phone   string `json:"phone" gorm:"type:varchar(20)"`
}

// TableName define o nome da tabela
func (Unit) TableName() string {
	return "units"
}
