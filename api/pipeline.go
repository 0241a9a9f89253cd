package api

import (
	"net/http"
	"strconv"

	"backend_pitstop/models"
	"backend_pitstop/services"

	"github.com/gin-gonic/gin"
)

// PipelineAPI representa a API das etapas do funil (colunas do kanban)
type PipelineAPI struct {
	Kanban *services.KanbanService
}

// NewPipelineAPI cria uma nova instância de PipelineAPI
func NewPipelineAPI(kanban *services.KanbanService) *PipelineAPI {
	return &PipelineAPI{Kanban: kanban}
}

// GetStages devolve as etapas do funil na ordem do kanban
func (api *PipelineAPI) GetStages(c *gin.Context) {
	orgID := GetOrganizationID(c)

	stages, err := api.Kanban.ListColumns(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar etapas do funil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stages})
}

// CreateStageRequest dados de criação de uma etapa
type CreateStageRequest struct {
	Name  string            `json:"name" binding:"required"`
	Color models.StageColor `json:"color" binding:"required"`
}

// CreateStage cria uma nova etapa ao final do funil
func (api *PipelineAPI) CreateStage(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var req CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	stage, err := api.Kanban.AddColumn(orgID, req.Name, req.Color)
	if err != nil {
		if err == services.ErrInvalidColor {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar etapa"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Etapa criada com sucesso",
		"data":    stage,
	})
}

// UpdateStage atualiza nome e/ou cor de uma etapa. A posição não muda aqui.
func (api *PipelineAPI) UpdateStage(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req services.ColumnUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	stage, err := api.Kanban.EditColumn(orgID, uint(id), req)
	if err != nil {
		switch err {
		case services.ErrStageNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case services.ErrInvalidColor:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar etapa"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Etapa atualizada com sucesso",
		"data":    stage,
	})
}

// DeleteStage remove uma etapa (exige confirm=true). Os leads da etapa são
// realocados para a etapa sobrevivente de menor posição e as posições são
// renumeradas. Remover a última etapa é rejeitado.
func (api *PipelineAPI) DeleteStage(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	if !RequireConfirmation(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operação destrutiva exige confirm=true"})
		return
	}

	if err := api.Kanban.DeleteColumn(orgID, uint(id)); err != nil {
		switch err {
		case services.ErrStageNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case services.ErrLastStage:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover etapa"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Etapa removida com sucesso"})
}

// ReorderStagesRequest par arrastado/alvo de uma reordenação
type ReorderStagesRequest struct {
	DraggedID uint `json:"dragged_id" binding:"required"`
	TargetID  uint `json:"target_id" binding:"required"`
}

// ReorderStages move uma etapa para a posição de outra (drag-and-drop)
func (api *PipelineAPI) ReorderStages(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var req ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if err := api.Kanban.ReorderColumns(orgID, req.DraggedID, req.TargetID); err != nil {
		if err == services.ErrStageNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao reordenar etapas"})
		}
		return
	}

	stages, _ := api.Kanban.ListColumns(orgID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Etapas reordenadas com sucesso",
		"data":    stages,
	})
}
