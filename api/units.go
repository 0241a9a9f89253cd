package api

import (
	"net/http"

	"backend_pitstop/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UnitAPI representa a API das unidades (filiais)
type UnitAPI struct {
	DB *gorm.DB
}

// NewUnitAPI cria uma nova instância de UnitAPI
func NewUnitAPI(db *gorm.DB) *UnitAPI {
	return &UnitAPI{DB: db}
}

// UnitRequest dados de criação/edição de uma unidade
type UnitRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// GetUnits devolve as unidades da organização
func (api *UnitAPI) GetUnits(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var units []models.Unit
	if err := api.DB.Where("organization_id = ?", orgID).Order("name ASC").Find(&units).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar unidades"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": units})
}

// CreateUnit cadastra uma unidade
func (api *UnitAPI) CreateUnit(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	unit := models.Unit{
		OrganizationID: orgID,
		Name:           req.Name,
		Address:        req.Address,
		Phone:          req.Phone,
	}

	if err := api.DB.Create(&unit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar unidade"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Unidade criada com sucesso",
		"data":    unit,
	})
}

// UpdateUnit atualiza uma unidade
func (api *UnitAPI) UpdateUnit(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	var unit models.Unit
	if err := api.DB.Where("organization_id = ?", orgID).First(&unit, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unidade não encontrada"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar unidade"})
		}
		return
	}

	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":    req.Name,
		"address": req.Address,
		"phone":   req.Phone,
	}

	if err := api.DB.Model(&unit).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar unidade"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Unidade atualizada com sucesso",
		"data":    unit,
	})
}

// DeleteUnit remove uma unidade (exige confirm=true). A remoção é bloqueada
// enquanto houver leads ou agendamentos vinculados à unidade.
func (api *UnitAPI) DeleteUnit(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	if !RequireConfirmation(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operação destrutiva exige confirm=true"})
		return
	}

	var unit models.Unit
	if err := api.DB.Where("organization_id = ?", orgID).First(&unit, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unidade não encontrada"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar unidade"})
		}
		return
	}

	var leadCount, appointmentCount int64
	api.DB.Model(&models.Lead{}).Where("unit_id = ?", unit.ID).Count(&leadCount)
	api.DB.Model(&models.Appointment{}).Where("unit_id = ?", unit.ID).Count(&appointmentCount)
	if leadCount > 0 || appointmentCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Unidade possui leads ou agendamentos vinculados e não pode ser removida",
		})
		return
	}

	if err := api.DB.Delete(&unit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover unidade"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unidade removida com sucesso"})
}
