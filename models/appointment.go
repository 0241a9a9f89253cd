package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment representa uma visita de serviço agendada ligando lead, unidade,
// horário e serviço. Duplo agendamento no mesmo horário é permitido por design
// (duas vagas na mesma hora são comuns na oficina).
type Appointment struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	OrganizationID uint `json:"organization_id" gorm:"not null;index"`

	LeadID uint  `json:"lead_id" gorm:"not null;index"`
	Lead   *Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`

	UnitID uint  `json:"unit_id" gorm:"not null;index"`
	Unit   *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`

	// Data ISO (AAAA-MM-DD) e hora (HH:MM)
	Date string `json:"date" gorm:"not null;type:varchar(10);index"`
	Time string `json:"time" gorm:"not null;type:varchar(5)"`

	// Serviço do catálogo ou, em registros legados, texto livre
	ServiceID   *uint    `json:"service_id"`
	Service     *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	ServiceType string   `json:"service_type" gorm:"type:varchar(120)"`

	Notes string `json:"notes" gorm:"type:text"`

	// Transição permitida apenas false -> true, nunca de volta
	Attended bool `json:"attended" gorm:"default:false"`
}

// TableName define o nome da tabela
func (Appointment) TableName() string {
	return "appointments"
}
