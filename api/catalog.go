package api

import (
	"net/http"

	"backend_pitstop/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogAPI representa a API do catálogo de serviços
type CatalogAPI struct {
	DB *gorm.DB
}

// NewCatalogAPI cria uma nova instância de CatalogAPI
func NewCatalogAPI(db *gorm.DB) *CatalogAPI {
	return &CatalogAPI{DB: db}
}

// ServiceRequest dados de criação/edição de um serviço do catálogo
type ServiceRequest struct {
	Name                 string          `json:"name" binding:"required"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price"`
	EstimatedTimeMinutes *int            `json:"estimated_time_minutes"`
}

// GetServices devolve o catálogo. Por padrão apenas serviços ativos; com
// include_inactive=true devolve também os desativados.
func (api *CatalogAPI) GetServices(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var catalog []models.Service
	query := api.DB.Where("organization_id = ?", orgID)
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Order("name ASC").Find(&catalog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar serviços"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": catalog})
}

// CreateService cadastra um serviço no catálogo
func (api *CatalogAPI) CreateService(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	service := models.Service{
		OrganizationID:       orgID,
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
		IsActive:             true,
	}

	if err := api.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar serviço"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Serviço criado com sucesso",
		"data":    service,
	})
}

// UpdateService atualiza um serviço do catálogo
func (api *CatalogAPI) UpdateService(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	var service models.Service
	if err := api.DB.Where("organization_id = ?", orgID).First(&service, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Serviço não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar serviço"})
		}
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":                   req.Name,
		"description":            req.Description,
		"price":                  req.Price,
		"estimated_time_minutes": req.EstimatedTimeMinutes,
	}

	if err := api.DB.Model(&service).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar serviço"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Serviço atualizado com sucesso",
		"data":    service,
	})
}

// DeactivateService desativa um serviço do catálogo (exige confirm=true).
// Serviços nunca são removidos fisicamente para não quebrar referências de
// agendamentos e ordens de serviço antigas.
func (api *CatalogAPI) DeactivateService(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	if !RequireConfirmation(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operação destrutiva exige confirm=true"})
		return
	}

	var service models.Service
	if err := api.DB.Where("organization_id = ?", orgID).First(&service, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Serviço não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar serviço"})
		}
		return
	}

	if err := api.DB.Model(&service).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao desativar serviço"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Serviço desativado com sucesso"})
}

// ActivateService reativa um serviço desativado
func (api *CatalogAPI) ActivateService(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id := c.Param("id")

	var service models.Service
	if err := api.DB.Where("organization_id = ?", orgID).First(&service, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Serviço não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar serviço"})
		}
		return
	}

	if err := api.DB.Model(&service).Update("is_active", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao reativar serviço"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Serviço reativado com sucesso"})
}
