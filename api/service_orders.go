package api

import (
	"fmt"
	"net/http"
	"strconv"

	"backend_pitstop/models"
	"backend_pitstop/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServiceOrderAPI representa a API das ordens de serviço
type ServiceOrderAPI struct {
	DB      *gorm.DB
	Orders  *services.ServiceOrderService
	Reports *services.ReportService
}

// NewServiceOrderAPI cria uma nova instância de ServiceOrderAPI
func NewServiceOrderAPI(db *gorm.DB, orders *services.ServiceOrderService, reports *services.ReportService) *ServiceOrderAPI {
	return &ServiceOrderAPI{DB: db, Orders: orders, Reports: reports}
}

// serviceOrderView acrescenta o total calculado na resposta. O total nunca é
// armazenado; é sempre recalculado a partir dos itens.
type serviceOrderView struct {
	models.ServiceOrder
	Total string `json:"total"`
}

func newServiceOrderView(order *models.ServiceOrder) serviceOrderView {
	return serviceOrderView{
		ServiceOrder: *order,
		Total:        order.TotalCost().StringFixed(2),
	}
}

// GetServiceOrders devolve as ordens de serviço com filtros
func (api *ServiceOrderAPI) GetServiceOrders(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var orders []models.ServiceOrder
	query := api.DB.Model(&models.ServiceOrder{}).Where("organization_id = ?", orgID)

	// Filtros
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if leadID := c.Query("lead_id"); leadID != "" {
		query = query.Where("lead_id = ?", leadID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("os_number LIKE ?", "%"+search+"%")
	}

	err := query.Preload("Items").Preload("Lead").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar ordens de serviço"})
		return
	}

	views := make([]serviceOrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newServiceOrderView(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetServiceOrder devolve uma OS com itens, lead e total calculado
func (api *ServiceOrderAPI) GetServiceOrder(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	order, err := api.Orders.GetByID(orgID, uint(id))
	if err != nil {
		if err == services.ErrOrderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar ordem de serviço"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newServiceOrderView(order)})
}

// CreateServiceOrder abre uma OS e força o lead para "Em Serviço"
func (api *ServiceOrderAPI) CreateServiceOrder(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var input services.CreateServiceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	order, err := api.Orders.Create(orgID, input)
	if err != nil {
		switch err {
		case services.ErrLeadNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case services.ErrInvalidOrderStatus:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar ordem de serviço"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ordem de serviço criada com sucesso",
		"data":    newServiceOrderView(order),
	})
}

// UpdateStatusRequest novo status de uma OS
type UpdateStatusRequest struct {
	Status models.ServiceOrderStatus `json:"status" binding:"required"`
}

// UpdateServiceOrderStatus atualiza o status de uma OS e sincroniza a etapa do
// lead conforme o mapeamento status->etapa
func (api *ServiceOrderAPI) UpdateServiceOrderStatus(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	order, err := api.Orders.UpdateStatus(orgID, uint(id), req.Status)
	if err != nil {
		switch err {
		case services.ErrOrderNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case services.ErrInvalidOrderStatus:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status atualizado com sucesso",
		"data":    newServiceOrderView(order),
	})
}

// DeleteServiceOrder remove uma OS e seus itens (exige confirm=true)
func (api *ServiceOrderAPI) DeleteServiceOrder(c *gin.Context) {
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

	if err := api.Orders.Delete(orgID, uint(id)); err != nil {
		if err == services.ErrOrderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover ordem de serviço"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ordem de serviço removida com sucesso"})
}

// ExportXLSX exporta as ordens de serviço da organização em planilha
func (api *ServiceOrderAPI) ExportXLSX(c *gin.Context) {
	orgID := GetOrganizationID(c)

	f, err := api.Reports.ExportServiceOrdersXLSX(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar planilha"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="ordens_de_servico.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao enviar planilha"})
	}
}

// ExportPDF gera o PDF de uma ordem de serviço
func (api *ServiceOrderAPI) ExportPDF(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	pdfBytes, err := api.Reports.ExportServiceOrderPDF(orgID, uint(id))
	if err != nil {
		if err == services.ErrOrderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar PDF"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="os_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
