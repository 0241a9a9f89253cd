package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceOrderStatus representa o status de uma ordem de serviço (conjunto fechado)
type ServiceOrderStatus string

const (
	OrderStatusDiagnosis     ServiceOrderStatus = "diagnosis"
	OrderStatusWaitingParts  ServiceOrderStatus = "waiting_parts"
	OrderStatusInProgress    ServiceOrderStatus = "in_progress"
	OrderStatusCompleted     ServiceOrderStatus = "completed"
	OrderStatusWaitingPickup ServiceOrderStatus = "waiting_pickup"
	OrderStatusPaid          ServiceOrderStatus = "paid"
	OrderStatusCancelled     ServiceOrderStatus = "cancelled"
)

// IsValid verifica se o status pertence ao conjunto fechado
func (s ServiceOrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDiagnosis, OrderStatusWaitingParts, OrderStatusInProgress,
		OrderStatusCompleted, OrderStatusWaitingPickup, OrderStatusPaid,
		OrderStatusCancelled:
		return true
	}
	return false
}

// Label devolve o rótulo humano do status (usado em histórico e relatórios)
func (s ServiceOrderStatus) Label() string {
	switch s {
	case OrderStatusDiagnosis:
		return "Diagnóstico"
	case OrderStatusWaitingParts:
		return "Aguardando Peças"
	case OrderStatusInProgress:
		return "Em Andamento"
	case OrderStatusCompleted:
		return "Concluída"
	case OrderStatusWaitingPickup:
		return "Aguardando Retirada"
	case OrderStatusPaid:
		return "Paga"
	case OrderStatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

// StageKeyForStatus devolve a chave da etapa do funil implicada pelo status da OS.
// A tabela é fixa e o switch é exaustivo sobre o enum: um status novo sem
// mapeamento cai no retorno final e é tratado como "sem movimentação".
func StageKeyForStatus(s ServiceOrderStatus) (string, bool) {
	switch s {
	case OrderStatusDiagnosis:
		return StageKeyInService, true
	case OrderStatusWaitingParts:
		return StageKeyWaitingParts, true
	case OrderStatusInProgress:
		return StageKeyInService, true
	case OrderStatusCompleted:
		return StageKeyCompleted, true
	case OrderStatusWaitingPickup:
		return StageKeyCompleted, true
	case OrderStatusPaid:
		return StageKeyInvoiced, true
	case OrderStatusCancelled:
		return StageKeyClosed, true
	}
	return "", false
}

// ServiceOrder representa uma ordem de serviço (OS) com diagnóstico, itens e custo
type ServiceOrder struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	OrganizationID uint `json:"organization_id" gorm:"not null;index"`

	// Número gerado no formato OS-AAAAMM-XXXXXXXX (sufixo derivado de UUID)
	OSNumber string `json:"os_number" gorm:"uniqueIndex;not null;type:varchar(20)"`

	LeadID uint  `json:"lead_id" gorm:"not null;index"`
	Lead   *Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`

	// Snapshot do veículo no momento da abertura da OS
	VehicleInfo    string `json:"vehicle_info" gorm:"type:varchar(160)"`
	ReportedIssues string `json:"reported_issues" gorm:"type:text"`

	Status ServiceOrderStatus `json:"status" gorm:"not null;type:varchar(20);default:'diagnosis'"`

	// Serviço principal (opcional)
	PrimaryServiceID *uint    `json:"primary_service_id"`
	PrimaryService   *Service `json:"primary_service,omitempty" gorm:"foreignKey:PrimaryServiceID"`

	// Definido exatamente na transição para "completed" e preservado depois,
	// mesmo que o status mude novamente
	CompletedAt *time.Time `json:"completed_at"`

	Items []ServiceOrderItem `json:"items,omitempty" gorm:"foreignKey:ServiceOrderID"`
}

// TableName define o nome da tabela
func (ServiceOrder) TableName() string {
	return "service_orders"
}

// TotalCost calcula o custo total da OS somando os itens. O total nunca é
// persistido como agregado: sempre recalculado na leitura para evitar drift.
func (so *ServiceOrder) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range so.Items {
		total = total.Add(item.Cost)
	}
	return total
}

// ServiceOrderItem representa um item de serviço dentro de uma OS
type ServiceOrderItem struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ServiceOrderID uint `json:"service_order_id" gorm:"not null;index"`

	// Serviço do catálogo (opcional; itens avulsos têm só descrição)
	ServiceID *uint    `json:"service_id"`
	Service   *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`

	Description string          `json:"description" gorm:"not null;type:varchar(200)"`
	Parts       string          `json:"parts" gorm:"type:text"`
	Cost        decimal.Decimal `json:"cost" gorm:"type:decimal(12,2)"`
}

// TableName define o nome da tabela
func (ServiceOrderItem) TableName() string {
	return "service_order_items"
}
