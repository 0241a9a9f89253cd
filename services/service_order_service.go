package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"backend_pitstop/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound indica que a ordem de serviço não existe na organização
	ErrOrderNotFound = errors.New("ordem de serviço não encontrada")
	// ErrInvalidOrderStatus indica um status fora do conjunto fechado
	ErrInvalidOrderStatus = errors.New("status de ordem de serviço inválido")
	// ErrLeadNotFound indica que o lead referenciado não existe
	ErrLeadNotFound = errors.New("lead não encontrado")
)

// ServiceOrderService é o dono do ciclo de vida das ordens de serviço e da
// invariante derivada "o status de uma OS implica uma etapa do funil".
type ServiceOrderService struct {
	db       *gorm.DB
	pipeline *PipelineService
}

// NewServiceOrderService cria uma nova instância de ServiceOrderService
func NewServiceOrderService(db *gorm.DB, pipeline *PipelineService) *ServiceOrderService {
	return &ServiceOrderService{db: db, pipeline: pipeline}
}

// ServiceOrderItemInput item de serviço informado na abertura da OS
type ServiceOrderItemInput struct {
	ServiceID   *uint           `json:"service_id"`
	Description string          `json:"description" binding:"required"`
	Parts       string          `json:"parts"`
	Cost        decimal.Decimal `json:"cost"`
}

// CreateServiceOrderInput dados de abertura de uma OS
type CreateServiceOrderInput struct {
	LeadID           uint                    `json:"lead_id" binding:"required"`
	VehicleInfo      string                  `json:"vehicle_info"`
	ReportedIssues   string                  `json:"reported_issues"`
	Items            []ServiceOrderItemInput `json:"items"`
	Status           models.ServiceOrderStatus `json:"status"`
	PrimaryServiceID *uint                   `json:"primary_service_id"`
}

// GenerateOSNumber gera o número da OS no formato OS-AAAAMM-XXXXXXXX. O sufixo
// vem de um UUID, eliminando a janela de colisão do esquema antigo baseado em
// timestamp sob criações concorrentes.
func GenerateOSNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("OS-%s-%s", now.Format("200601"), suffix)
}

// Create abre uma ordem de serviço. Independentemente do status inicial, o lead
// associado é forçado para a etapa "Em Serviço" com um registro de histórico de
// criação de OS.
func (sos *ServiceOrderService) Create(organizationID uint, input CreateServiceOrderInput) (*models.ServiceOrder, error) {
	status := input.Status
	if status == "" {
		status = models.OrderStatusDiagnosis
	}
	if !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	lead, ok := sos.pipeline.GetLeadByID(organizationID, input.LeadID)
	if !ok {
		return nil, ErrLeadNotFound
	}

	order := models.ServiceOrder{
		OrganizationID:   organizationID,
		OSNumber:         GenerateOSNumber(time.Now()),
		LeadID:           lead.ID,
		VehicleInfo:      input.VehicleInfo,
		ReportedIssues:   input.ReportedIssues,
		Status:           status,
		PrimaryServiceID: input.PrimaryServiceID,
	}

	err := sos.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range input.Items {
			orderItem := models.ServiceOrderItem{
				ServiceOrderID: order.ID,
				ServiceID:      item.ServiceID,
				Description:    item.Description,
				Parts:          item.Parts,
				Cost:           item.Cost,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, orderItem)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar ordem de serviço: %w", err)
	}

	// Sincronização melhor-esforço: falha aqui é registrada em log pelo
	// PipelineService e nunca desfaz a OS recém-criada
	description := fmt.Sprintf("Ordem de serviço %s criada", order.OSNumber)
	sos.pipeline.MoveLeadToStageKey(organizationID, lead.ID, models.StageKeyInService,
		models.HistoryServiceOrderCreated, description)

	return &order, nil
}

// GetByID busca uma OS com itens e lead
func (sos *ServiceOrderService) GetByID(organizationID, orderID uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := sos.db.Where("organization_id = ?", organizationID).
		Preload("Items").
		Preload("Lead").
		Preload("PrimaryService").
		First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("erro ao buscar ordem de serviço: %w", err)
	}
	return &order, nil
}

// UpdateStatus atualiza o status de uma OS. Quando o status não muda a chamada
// é um no-op puro (sem histórico e sem carimbo). Na transição para "completed"
// o CompletedAt é definido uma única vez e preservado para sempre, mesmo que o
// status mude novamente depois.
func (sos *ServiceOrderService) UpdateStatus(organizationID, orderID uint, newStatus models.ServiceOrderStatus) (*models.ServiceOrder, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	var order models.ServiceOrder
	err := sos.db.Where("organization_id = ?", organizationID).First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("erro ao buscar ordem de serviço: %w", err)
	}

	if order.Status == newStatus {
		return &order, nil
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == models.OrderStatusCompleted && order.CompletedAt == nil {
		now := time.Now()
		order.CompletedAt = &now
		updates["completed_at"] = now
	}

	if err := sos.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("erro ao atualizar status da OS: %w", err)
	}
	order.Status = newStatus

	historyType := models.HistoryServiceOrderStatus
	if newStatus == models.OrderStatusCompleted {
		historyType = models.HistoryServiceOrderFinished
	}
	description := fmt.Sprintf("Status OS %s: %s", order.OSNumber, newStatus.Label())

	if stageKey, ok := models.StageKeyForStatus(newStatus); ok {
		sos.pipeline.MoveLeadToStageKey(organizationID, order.LeadID, stageKey, historyType, description)
	} else {
		sos.pipeline.AddLeadHistory(organizationID, order.LeadID, historyType, description)
	}

	return &order, nil
}

// Delete remove uma OS e seus itens. Deliberadamente não desfaz a etapa do lead
// (assimetria aceita com a criação); registra apenas o evento no histórico.
func (sos *ServiceOrderService) Delete(organizationID, orderID uint) error {
	var order models.ServiceOrder
	err := sos.db.Where("organization_id = ?", organizationID).First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return fmt.Errorf("erro ao buscar ordem de serviço: %w", err)
	}

	err = sos.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_order_id = ?", order.ID).Delete(&models.ServiceOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return fmt.Errorf("erro ao remover ordem de serviço: %w", err)
	}

	description := fmt.Sprintf("Ordem de serviço %s removida", order.OSNumber)
	sos.pipeline.AddLeadHistory(organizationID, order.LeadID, models.HistoryServiceOrderDeleted, description)

	return nil
}
