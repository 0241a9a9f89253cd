package api

import (
	"net/http"
	"strconv"

	"backend_pitstop/services"

	"github.com/gin-gonic/gin"
)

// DashboardAPI representa a API das visões analíticas do dashboard
type DashboardAPI struct {
	Reports *services.ReportService
}

// NewDashboardAPI cria uma nova instância de DashboardAPI
func NewDashboardAPI(reports *services.ReportService) *DashboardAPI {
	return &DashboardAPI{Reports: reports}
}

// GetStats devolve as estatísticas gerais da organização
func (api *DashboardAPI) GetStats(c *gin.Context) {
	orgID := GetOrganizationID(c)

	stats, err := api.Reports.GetDashboardStats(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetFunnel devolve a contagem de leads por etapa na ordem do funil
func (api *DashboardAPI) GetFunnel(c *gin.Context) {
	orgID := GetOrganizationID(c)

	funnel, err := api.Reports.GetPipelineFunnel(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular funil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": funnel})
}

// GetRevenue devolve a série mensal de receita (padrão: últimos 6 meses)
func (api *DashboardAPI) GetRevenue(c *gin.Context) {
	orgID := GetOrganizationID(c)

	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	series, err := api.Reports.GetMonthlyRevenue(orgID, months)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular receita"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": series})
}
