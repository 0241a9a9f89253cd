package services

import (
	"fmt"
	"log"

	"backend_pitstop/models"

	"gorm.io/gorm"
)

// SyncResult indica o desfecho de uma sincronização de etapa/histórico.
// Erros de armazenamento nunca atravessam esta fronteira como panic: o chamador
// decide se o resultado vira erro visível ao usuário.
type SyncResult int

const (
	SyncOK SyncResult = iota
	SyncNotFound
	SyncStorageError
)

// PipelineService é o ponto único por onde a etapa e o histórico de um lead são
// mutados como efeito colateral de eventos de domínio (agendamentos, ordens de
// serviço, edições manuais). Toda movimentação passa por aqui para que a regra
// "por que esse lead se moveu" tenha um só lugar.
type PipelineService struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewPipelineService cria uma nova instância de PipelineService
func NewPipelineService(db *gorm.DB) *PipelineService {
	return &PipelineService{
		db:     db,
		logger: log.Default(),
	}
}

// UpdateLeadStatus move o lead para a etapa indicada e registra a entrada de
// histórico correspondente, tudo em uma transação (atualização por linha, sem
// reescrita de coleção inteira).
func (ps *PipelineService) UpdateLeadStatus(organizationID, leadID, stageID uint, historyType models.HistoryType, description string) SyncResult {
	return ps.syncLead(organizationID, leadID, &stageID, historyType, description, nil)
}

// AddLeadHistory registra um evento no histórico sem alterar a etapa do lead.
// Usado quando o evento é relevante historicamente mas não deve mover o lead
// (edição ou exclusão de agendamento, por exemplo).
func (ps *PipelineService) AddLeadHistory(organizationID, leadID uint, historyType models.HistoryType, description string) SyncResult {
	return ps.syncLead(organizationID, leadID, nil, historyType, description, nil)
}

// AddLeadHistoryByUser registra um evento no histórico atribuído a um usuário
func (ps *PipelineService) AddLeadHistoryByUser(organizationID, leadID uint, historyType models.HistoryType, description string, userID *uint) SyncResult {
	return ps.syncLead(organizationID, leadID, nil, historyType, description, userID)
}

// syncLead aplica a mutação de etapa (opcional) e o registro de histórico
func (ps *PipelineService) syncLead(organizationID, leadID uint, stageID *uint, historyType models.HistoryType, description string, userID *uint) SyncResult {
	if !historyType.IsValid() {
		ps.logger.Printf("⚠️  Tipo de histórico inválido '%s' para o lead %d", historyType, leadID)
		return SyncStorageError
	}

	result := SyncOK
	err := ps.db.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.Where("organization_id = ?", organizationID).First(&lead, leadID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				result = SyncNotFound
				return err
			}
			result = SyncStorageError
			return err
		}

		if stageID != nil {
			// A etapa destino precisa existir na mesma organização
			var stage models.PipelineStage
			if err := tx.Where("organization_id = ?", organizationID).First(&stage, *stageID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					result = SyncNotFound
					return err
				}
				result = SyncStorageError
				return err
			}

			if err := tx.Model(&lead).Update("pipeline_stage_id", stage.ID).Error; err != nil {
				result = SyncStorageError
				return err
			}
		}

		entry := models.LeadHistory{
			LeadID:      lead.ID,
			Type:        historyType,
			Description: description,
			UserID:      userID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			result = SyncStorageError
			return err
		}

		return nil
	})

	if err != nil {
		ps.logger.Printf("⚠️  Sincronização do lead %d falhou (%s): %v", leadID, historyType, err)
		return result
	}

	return SyncOK
}

// GetLeadByID busca um lead por id dentro da organização. Devolve (nil, false)
// quando o lead não existe ou a leitura falha.
func (ps *PipelineService) GetLeadByID(organizationID, leadID uint) (*models.Lead, bool) {
	var lead models.Lead
	err := ps.db.Where("organization_id = ?", organizationID).
		Preload("PipelineStage").
		First(&lead, leadID).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			ps.logger.Printf("⚠️  Erro ao buscar lead %d: %v", leadID, err)
		}
		return nil, false
	}
	return &lead, true
}

// GetLeadHistory devolve o histórico do lead, do mais recente para o mais antigo
func (ps *PipelineService) GetLeadHistory(organizationID, leadID uint) ([]models.LeadHistory, error) {
	if _, ok := ps.GetLeadByID(organizationID, leadID); !ok {
		return nil, fmt.Errorf("lead %d não encontrado", leadID)
	}

	var history []models.LeadHistory
	err := ps.db.Where("lead_id = ?", leadID).
		Order("created_at DESC, id DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar histórico do lead %d: %w", leadID, err)
	}
	return history, nil
}

// StageByKey resolve uma etapa do funil pela chave estável dentro da organização
func (ps *PipelineService) StageByKey(organizationID uint, key string) (*models.PipelineStage, error) {
	var stage models.PipelineStage
	err := ps.db.Where("organization_id = ? AND key = ?", organizationID, key).First(&stage).Error
	if err != nil {
		return nil, fmt.Errorf("etapa '%s' não encontrada na organização %d: %w", key, organizationID, err)
	}
	return &stage, nil
}

// MoveLeadToStageKey move o lead para a etapa identificada pela chave estável.
// Quando a etapa padrão foi removida pelo usuário, a movimentação vira no-op
// registrado em log: a regra de sincronização nunca bloqueia a operação original.
func (ps *PipelineService) MoveLeadToStageKey(organizationID, leadID uint, key string, historyType models.HistoryType, description string) SyncResult {
	stage, err := ps.StageByKey(organizationID, key)
	if err != nil {
		ps.logger.Printf("⚠️  Etapa '%s' indisponível, lead %d não será movido: %v", key, leadID, err)
		// Registra ao menos o evento no histórico
		return ps.AddLeadHistory(organizationID, leadID, historyType, description)
	}
	return ps.UpdateLeadStatus(organizationID, leadID, stage.ID, historyType, description)
}
