package api

import (
	"net/http"
	"strconv"
	"time"

	"backend_pitstop/models"
	"backend_pitstop/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LeadAPI representa a API para trabalhar com leads
type LeadAPI struct {
	DB       *gorm.DB
	Pipeline *services.PipelineService
	Kanban   *services.KanbanService
}

// NewLeadAPI cria uma nova instância de LeadAPI
func NewLeadAPI(db *gorm.DB, pipeline *services.PipelineService, kanban *services.KanbanService) *LeadAPI {
	return &LeadAPI{DB: db, Pipeline: pipeline, Kanban: kanban}
}

// LeadRequest dados de criação/edição de um lead
type LeadRequest struct {
	Name           string     `json:"name" binding:"required"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Address        string     `json:"address"`
	BirthDate      *time.Time `json:"birth_date"`
	CPF            string     `json:"cpf"`
	CarModel       string     `json:"car_model"`
	CarPlate       string     `json:"car_plate"`
	UnitID         *uint      `json:"unit_id"`
	AssignedUserID *uint      `json:"assigned_user_id"`
}

// CreateLead cria um novo lead na etapa inicial do funil (Prospecto)
func (api *LeadAPI) CreateLead(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	stage, err := api.Pipeline.StageByKey(orgID, models.StageKeyProspect)
	if err != nil {
		// Funil personalizado sem a etapa padrão: usa a primeira coluna
		stages, lerr := api.Kanban.ListColumns(orgID)
		if lerr != nil || len(stages) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Organização sem funil configurado"})
			return
		}
		stage = &stages[0]
	}

	lead := models.Lead{
		OrganizationID:  orgID,
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Address:         req.Address,
		BirthDate:       req.BirthDate,
		CPF:             req.CPF,
		CarModel:        req.CarModel,
		CarPlate:        req.CarPlate,
		UnitID:          req.UnitID,
		AssignedUserID:  req.AssignedUserID,
		PipelineStageID: stage.ID,
	}

	if err := api.DB.Create(&lead).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar lead: " + err.Error()})
		return
	}

	api.Pipeline.AddLeadHistoryByUser(orgID, lead.ID, models.HistoryCreation, "Lead criado", GetUserID(c))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Lead criado com sucesso",
		"data":    lead,
	})
}

// GetLeads devolve a lista de leads com filtros e paginação
func (api *LeadAPI) GetLeads(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var leads []models.Lead
	query := api.DB.Model(&models.Lead{}).Where("organization_id = ?", orgID)

	// Filtros
	if stageID := c.Query("stage_id"); stageID != "" {
		query = query.Where("pipeline_stage_id = ?", stageID)
	}
	if unitID := c.Query("unit_id"); unitID != "" {
		query = query.Where("unit_id = ?", unitID)
	}
	if userID := c.Query("assigned_user_id"); userID != "" {
		query = query.Where("assigned_user_id = ?", userID)
	}

	// Busca por nome, telefone ou placa
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR car_plate LIKE ?", like, like, like)
	}

	// Ordenação
	sortBy := c.DefaultQuery("sort_by", "created_at")
	sortOrder := c.DefaultQuery("sort_order", "desc")
	query = query.Order(sortBy + " " + sortOrder)

	// Paginação
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	if err := query.Preload("PipelineStage").Preload("Unit").
		Limit(limit).Offset(offset).Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": leads,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetLead devolve um lead com histórico (mais recente primeiro)
func (api *LeadAPI) GetLead(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	var lead models.Lead
	err := api.DB.Where("organization_id = ?", orgID).
		Preload("PipelineStage").
		Preload("Unit").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		First(&lead, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar lead"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lead})
}

// UpdateLead atualiza os dados cadastrais de um lead. A etapa do funil não muda
// por este caminho (apenas via movimentação no kanban ou pelas regras de
// sincronização); o histórico recebe um registro de edição.
func (api *LeadAPI) UpdateLead(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	var lead models.Lead
	if err := api.DB.Where("organization_id = ?", orgID).First(&lead, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar lead"})
		}
		return
	}

	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":             req.Name,
		"phone":            req.Phone,
		"email":            req.Email,
		"address":          req.Address,
		"birth_date":       req.BirthDate,
		"cpf":              req.CPF,
		"car_model":        req.CarModel,
		"car_plate":        req.CarPlate,
		"unit_id":          req.UnitID,
		"assigned_user_id": req.AssignedUserID,
	}

	if err := api.DB.Model(&lead).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar lead"})
		return
	}

	api.Pipeline.AddLeadHistoryByUser(orgID, lead.ID, models.HistoryEdit, "Dados do lead editados", GetUserID(c))

	c.JSON(http.StatusOK, gin.H{
		"message": "Lead atualizado com sucesso",
		"data":    lead,
	})
}

// DeleteLead remove um lead e todo o seu histórico (exige confirm=true)
func (api *LeadAPI) DeleteLead(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	if !RequireConfirmation(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operação destrutiva exige confirm=true"})
		return
	}

	var lead models.Lead
	if err := api.DB.Where("organization_id = ?", orgID).First(&lead, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar lead"})
		}
		return
	}

	err := api.DB.Transaction(func(tx *gorm.DB) error {
		// Cascata: o histórico morre junto com o lead
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.LeadHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lead).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead removido com sucesso"})
}

// MoveLeadRequest destino de movimentação de um lead no kanban
type MoveLeadRequest struct {
	StageID uint `json:"stage_id" binding:"required"`
}

// MoveLead move o card do lead para outra coluna do kanban
func (api *LeadAPI) MoveLead(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req MoveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if err := api.Kanban.MoveLead(orgID, uint(id), req.StageID); err != nil {
		if err == services.ErrStageNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Etapa não encontrada"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	lead, _ := api.Pipeline.GetLeadByID(orgID, uint(id))
	c.JSON(http.StatusOK, gin.H{
		"message": "Lead movido com sucesso",
		"data":    lead,
	})
}

// GetLeadHistory devolve o histórico do lead (mais recente primeiro)
func (api *LeadAPI) GetLeadHistory(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	history, err := api.Pipeline.GetLeadHistory(orgID, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}
