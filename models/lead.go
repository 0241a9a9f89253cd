package models

import (
	"time"

	"gorm.io/gorm"
)

// HistoryType representa o tipo de um evento no histórico do lead (conjunto fechado)
type HistoryType string

const (
	HistoryCreation             HistoryType = "creation"
	HistoryStageChange          HistoryType = "stage_change"
	HistoryAppointmentCreated   HistoryType = "appointment_created"
	HistoryAppointmentEdited    HistoryType = "appointment_edited"
	HistoryAppointmentDeleted   HistoryType = "appointment_deleted"
	HistoryAttendanceRegistered HistoryType = "attendance_registered"
	HistoryEdit                 HistoryType = "edit"
	HistoryServiceOrderCreated  HistoryType = "service_order_created"
	HistoryServiceOrderStatus   HistoryType = "service_order_status"
	HistoryServiceOrderFinished HistoryType = "service_order_finished"
	HistoryServiceOrderDeleted  HistoryType = "service_order_deleted"
	HistoryDiagnosisCompleted   HistoryType = "diagnosis_completed"
	HistoryLeadLost             HistoryType = "lead_lost"
)

// IsValid verifica se o tipo de evento pertence ao conjunto fechado
func (t HistoryType) IsValid() bool {
	switch t {
	case HistoryCreation, HistoryStageChange, HistoryAppointmentCreated,
		HistoryAppointmentEdited, HistoryAppointmentDeleted,
		HistoryAttendanceRegistered, HistoryEdit, HistoryServiceOrderCreated,
		HistoryServiceOrderStatus, HistoryServiceOrderFinished,
		HistoryServiceOrderDeleted, HistoryDiagnosisCompleted, HistoryLeadLost:
		return true
	}
	return false
}

// Lead representa um cliente (potencial ou existente) acompanhado pelo funil
type Lead struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	OrganizationID uint `json:"organization_id" gorm:"not null;index"`

	// Dados de contato e identificação
	Name      string     `json:"name" gorm:"not null;type:varchar(120)"`
	Phone     string     `json:"phone" gorm:"type:varchar(20)"`
	Email     string     `json:"email" gorm:"type:varchar(120)"`
	Address   string     `json:"address" gorm:"type:text"`
	BirthDate *time.Time `json:"birth_date"`
	CPF       string     `json:"cpf" gorm:"type:varchar(14)"`

	// Veículo (opcional)
	CarModel string `json:"car_model" gorm:"type:varchar(80)"`
	CarPlate string `json:"car_plate" gorm:"type:varchar(10)"`

	// Unidade preferencial (opcional)
	UnitID *uint `json:"unit_id"`
	Unit   *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`

	AssignedUserID *uint `json:"assigned_user_id"`
	AssignedUser   *User `json:"assigned_user,omitempty" gorm:"foreignKey:AssignedUserID"`

	// Etapa atual do funil. Sempre referencia uma etapa existente; quando a
	// etapa é removida o lead é imediatamente realocado para a etapa
	// sobrevivente de menor Position.
	PipelineStageID uint           `json:"pipeline_stage_id" gorm:"not null;index"`
	PipelineStage   *PipelineStage `json:"pipeline_stage,omitempty" gorm:"foreignKey:PipelineStageID"`

	// Histórico append-only, mais recente primeiro na leitura
	History []LeadHistory `json:"history,omitempty" gorm:"foreignKey:LeadID"`
}

// TableName define o nome da tabela
func (Lead) TableName() string {
	return "leads"
}

// LeadHistory representa um evento imutável na vida de um lead.
// Registros nunca são editados ou removidos individualmente; apenas a exclusão
// do lead inteiro apaga o histórico em cascata.
type LeadHistory struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`

	LeadID uint `json:"lead_id" gorm:"not null;index"`

	Type        HistoryType `json:"type" gorm:"not null;type:varchar(40)"`
	Description string      `json:"description" gorm:"type:text"`

	UserID *uint `json:"user_id"`
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName define o nome da tabela
func (LeadHistory) TableName() string {
	return "lead_histories"
}
