package services

import (
	"errors"
	"fmt"

	"backend_pitstop/models"

	"gorm.io/gorm"
)

var (
	// ErrStageNotFound indica que a etapa não existe na organização
	ErrStageNotFound = errors.New("etapa do funil não encontrada")
	// ErrLastStage indica a tentativa de remover a última etapa do funil
	ErrLastStage = errors.New("não é possível remover a última etapa do funil")
	// ErrInvalidColor indica uma cor fora da paleta suportada
	ErrInvalidColor = errors.New("cor inválida para a etapa do funil")
)

// KanbanService mantém a ordem total das etapas do funil e a validade das
// referências lead->etapa através de mudanças estruturais (criação, remoção e
// reordenação de colunas).
type KanbanService struct {
	db       *gorm.DB
	pipeline *PipelineService
}

// NewKanbanService cria uma nova instância de KanbanService
func NewKanbanService(db *gorm.DB, pipeline *PipelineService) *KanbanService {
	return &KanbanService{db: db, pipeline: pipeline}
}

// ListColumns devolve as etapas da organização ordenadas por posição
func (ks *KanbanService) ListColumns(organizationID uint) ([]models.PipelineStage, error) {
	var stages []models.PipelineStage
	err := ks.db.Where("organization_id = ?", organizationID).
		Order("position ASC").
		Find(&stages).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao listar etapas do funil: %w", err)
	}
	return stages, nil
}

// AddColumn cria uma nova etapa ao final do funil (position = quantidade atual).
// O nome não precisa ser único; a cor é validada contra a paleta fechada.
func (ks *KanbanService) AddColumn(organizationID uint, name string, color models.StageColor) (*models.PipelineStage, error) {
	if !color.IsValid() {
		return nil, ErrInvalidColor
	}

	var stage models.PipelineStage
	err := ks.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PipelineStage{}).
			Where("organization_id = ?", organizationID).
			Count(&count).Error; err != nil {
			return err
		}

		stage = models.PipelineStage{
			OrganizationID: organizationID,
			Name:           name,
			Color:          color,
			Position:       int(count),
		}
		return tx.Create(&stage).Error
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar etapa do funil: %w", err)
	}
	return &stage, nil
}

// ColumnUpdate atualização parcial de uma etapa. A posição nunca muda por este
// caminho: só a reordenação e a remoção alteram a ordem.
type ColumnUpdate struct {
	Name  *string            `json:"name"`
	Color *models.StageColor `json:"color"`
}

// EditColumn atualiza nome e/ou cor de uma etapa
func (ks *KanbanService) EditColumn(organizationID, stageID uint, update ColumnUpdate) (*models.PipelineStage, error) {
	var stage models.PipelineStage
	if err := ks.db.Where("organization_id = ?", organizationID).First(&stage, stageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("erro ao buscar etapa: %w", err)
	}

	updates := map[string]interface{}{}
	if update.Name != nil && *update.Name != "" {
		updates["name"] = *update.Name
	}
	if update.Color != nil {
		if !update.Color.IsValid() {
			return nil, ErrInvalidColor
		}
		updates["color"] = *update.Color
	}

	if len(updates) == 0 {
		return &stage, nil
	}

	if err := ks.db.Model(&stage).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("erro ao atualizar etapa: %w", err)
	}
	return &stage, nil
}

// DeleteColumn remove uma etapa do funil. Atomicamente: (a) todos os leads da
// etapa removida são realocados para a etapa sobrevivente de menor posição;
// (b) a etapa é removida; (c) as sobreviventes são renumeradas para 0..N-1
// preservando a ordem relativa. Remover a última etapa é rejeitado.
func (ks *KanbanService) DeleteColumn(organizationID, stageID uint) error {
	return ks.db.Transaction(func(tx *gorm.DB) error {
		var stage models.PipelineStage
		if err := tx.Where("organization_id = ?", organizationID).First(&stage, stageID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrStageNotFound
			}
			return fmt.Errorf("erro ao buscar etapa: %w", err)
		}

		var survivors []models.PipelineStage
		if err := tx.Where("organization_id = ? AND id != ?", organizationID, stage.ID).
			Order("position ASC").
			Find(&survivors).Error; err != nil {
			return fmt.Errorf("erro ao listar etapas restantes: %w", err)
		}

		if len(survivors) == 0 {
			return ErrLastStage
		}

		// Realoca os leads da etapa removida para a sobrevivente de menor posição
		lowest := survivors[0]
		if err := tx.Model(&models.Lead{}).
			Where("organization_id = ? AND pipeline_stage_id = ?", organizationID, stage.ID).
			Update("pipeline_stage_id", lowest.ID).Error; err != nil {
			return fmt.Errorf("erro ao realocar leads: %w", err)
		}

		if err := tx.Delete(&stage).Error; err != nil {
			return fmt.Errorf("erro ao remover etapa: %w", err)
		}

		// Renumera as sobreviventes de forma contígua
		for i := range survivors {
			if survivors[i].Position != i {
				if err := tx.Model(&survivors[i]).Update("position", i).Error; err != nil {
					return fmt.Errorf("erro ao renumerar etapas: %w", err)
				}
			}
		}

		return nil
	})
}

// ReorderColumns remove a etapa arrastada da posição atual e a reinsere na
// posição da etapa alvo (movimento de array, não troca), renumerando em seguida.
func (ks *KanbanService) ReorderColumns(organizationID, draggedID, targetID uint) error {
	if draggedID == targetID {
		return nil
	}

	return ks.db.Transaction(func(tx *gorm.DB) error {
		var stages []models.PipelineStage
		if err := tx.Where("organization_id = ?", organizationID).
			Order("position ASC").
			Find(&stages).Error; err != nil {
			return fmt.Errorf("erro ao listar etapas: %w", err)
		}

		draggedIdx, targetIdx := -1, -1
		for i, s := range stages {
			if s.ID == draggedID {
				draggedIdx = i
			}
			if s.ID == targetID {
				targetIdx = i
			}
		}
		if draggedIdx == -1 || targetIdx == -1 {
			return ErrStageNotFound
		}

		dragged := stages[draggedIdx]
		stages = append(stages[:draggedIdx], stages[draggedIdx+1:]...)

		// Ponto de inserção é o índice atual do alvo no momento do movimento
		reordered := make([]models.PipelineStage, 0, len(stages)+1)
		reordered = append(reordered, stages[:targetIdx]...)
		reordered = append(reordered, dragged)
		reordered = append(reordered, stages[targetIdx:]...)

		for i := range reordered {
			if reordered[i].Position != i {
				if err := tx.Model(&reordered[i]).Update("position", i).Error; err != nil {
					return fmt.Errorf("erro ao renumerar etapas: %w", err)
				}
			}
		}

		return nil
	})
}

// MoveLead move um card de lead para outra coluna (drag-and-drop). Quando a
// etapa atual já é a etapa alvo a operação é um no-op sem histórico.
func (ks *KanbanService) MoveLead(organizationID, leadID, targetStageID uint) error {
	lead, ok := ks.pipeline.GetLeadByID(organizationID, leadID)
	if !ok {
		return fmt.Errorf("lead %d não encontrado", leadID)
	}

	if lead.PipelineStageID == targetStageID {
		return nil
	}

	var target models.PipelineStage
	if err := ks.db.Where("organization_id = ?", organizationID).First(&target, targetStageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrStageNotFound
		}
		return fmt.Errorf("erro ao buscar etapa destino: %w", err)
	}

	description := fmt.Sprintf("Lead movido para a etapa \"%s\"", target.Name)
	switch ks.pipeline.UpdateLeadStatus(organizationID, leadID, target.ID, models.HistoryStageChange, description) {
	case SyncNotFound:
		return fmt.Errorf("lead %d não encontrado", leadID)
	case SyncStorageError:
		return fmt.Errorf("erro ao mover lead %d", leadID)
	}
	return nil
}
