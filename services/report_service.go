package services

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"backend_pitstop/database"
	"backend_pitstop/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// statusesComReceita são os status de OS considerados nos cálculos de receita
var statusesComReceita = []models.ServiceOrderStatus{
	models.OrderStatusCompleted,
	models.OrderStatusWaitingPickup,
	models.OrderStatusPaid,
}

// ReportService gera as visões analíticas do dashboard e os relatórios
// exportáveis (XLSX e PDF)
type ReportService struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewReportService cria uma nova instância de ReportService
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, logger: log.Default()}
}

// DashboardStats estatísticas gerais do dashboard
type DashboardStats struct {
	TotalLeads        int64           `json:"total_leads"`
	NewLeadsThisMonth int64           `json:"new_leads_this_month"`
	AppointmentsToday int64           `json:"appointments_today"`
	OpenOrders        int64           `json:"open_orders"`
	CompletedOrders   int64           `json:"completed_orders"`
	MonthlyRevenue    decimal.Decimal `json:"monthly_revenue"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// GetDashboardStats calcula as estatísticas gerais da organização. O resultado
// é cacheado no Redis por um minuto; sem Redis disponível o cálculo é direto.
func (rs *ReportService) GetDashboardStats(organizationID uint) (*DashboardStats, error) {
	cacheKey := database.GenerateCacheKey(organizationID, "dashboard", "stats")

	if database.GetRedis() != nil {
		var cached DashboardStats
		if err := database.CacheGetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats := DashboardStats{LastUpdated: time.Now()}
	monthStart := time.Date(stats.LastUpdated.Year(), stats.LastUpdated.Month(), 1, 0, 0, 0, 0, stats.LastUpdated.Location())
	today := stats.LastUpdated.Format("2006-01-02")

	rs.db.Model(&models.Lead{}).
		Where("organization_id = ?", organizationID).
		Count(&stats.TotalLeads)
	rs.db.Model(&models.Lead{}).
		Where("organization_id = ? AND created_at >= ?", organizationID, monthStart).
		Count(&stats.NewLeadsThisMonth)
	rs.db.Model(&models.Appointment{}).
		Where("organization_id = ? AND date = ?", organizationID, today).
		Count(&stats.AppointmentsToday)
	rs.db.Model(&models.ServiceOrder{}).
		Where("organization_id = ? AND status NOT IN ?", organizationID,
			[]models.ServiceOrderStatus{models.OrderStatusCompleted, models.OrderStatusPaid, models.OrderStatusCancelled}).
		Count(&stats.OpenOrders)
	rs.db.Model(&models.ServiceOrder{}).
		Where("organization_id = ? AND status IN ?", organizationID,
			[]models.ServiceOrderStatus{models.OrderStatusCompleted, models.OrderStatusPaid}).
		Count(&stats.CompletedOrders)

	revenue, err := rs.revenueBetween(organizationID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenue = revenue

	if database.GetRedis() != nil {
		if err := database.CacheSetJSON(cacheKey, stats, time.Minute); err != nil {
			rs.logger.Printf("⚠️  Falha ao cachear estatísticas do dashboard: %v", err)
		}
	}

	return &stats, nil
}

// FunnelEntry uma etapa do funil com a quantidade de leads
type FunnelEntry struct {
	StageID  uint              `json:"stage_id"`
	Name     string            `json:"name"`
	Color    models.StageColor `json:"color"`
	Position int               `json:"position"`
	Count    int64             `json:"count"`
}

// GetPipelineFunnel devolve a contagem de leads por etapa, na ordem do funil
func (rs *ReportService) GetPipelineFunnel(organizationID uint) ([]FunnelEntry, error) {
	var stages []models.PipelineStage
	if err := rs.db.Where("organization_id = ?", organizationID).
		Order("position ASC").
		Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("erro ao listar etapas: %w", err)
	}

	funnel := make([]FunnelEntry, 0, len(stages))
	for _, stage := range stages {
		var count int64
		rs.db.Model(&models.Lead{}).
			Where("organization_id = ? AND pipeline_stage_id = ?", organizationID, stage.ID).
			Count(&count)
		funnel = append(funnel, FunnelEntry{
			StageID:  stage.ID,
			Name:     stage.Name,
			Color:    stage.Color,
			Position: stage.Position,
			Count:    count,
		})
	}

	return funnel, nil
}

// RevenuePoint receita agregada de um mês
type RevenuePoint struct {
	Month string          `json:"month"` // AAAA-MM
	Total decimal.Decimal `json:"total"`
}

// GetMonthlyRevenue devolve a série de receita dos últimos N meses. A receita
// de cada OS é sempre recalculada a partir dos itens (nunca um agregado
// armazenado), somada com decimais para evitar drift de ponto flutuante.
func (rs *ReportService) GetMonthlyRevenue(organizationID uint, months int) ([]RevenuePoint, error) {
	if months <= 0 {
		months = 6
	}

	now := time.Now()
	series := make([]RevenuePoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		total, err := rs.revenueBetween(organizationID, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}

		series = append(series, RevenuePoint{
			Month: monthStart.Format("2006-01"),
			Total: total,
		})
	}

	return series, nil
}

// revenueBetween soma o custo dos itens das OS concluídas/pagas no período
func (rs *ReportService) revenueBetween(organizationID uint, from, to time.Time) (decimal.Decimal, error) {
	var orders []models.ServiceOrder
	err := rs.db.Where("organization_id = ? AND status IN ? AND completed_at >= ? AND completed_at < ?",
		organizationID, statusesComReceita, from, to).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("erro ao calcular receita: %w", err)
	}

	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(order.TotalCost())
	}
	return total, nil
}

// ExportServiceOrdersXLSX exporta as ordens de serviço da organização em XLSX
func (rs *ReportService) ExportServiceOrdersXLSX(organizationID uint) (*excelize.File, error) {
	var orders []models.ServiceOrder
	err := rs.db.Where("organization_id = ?", organizationID).
		Preload("Items").
		Preload("Lead").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao listar ordens de serviço: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Ordens de Serviço"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Número", "Cliente", "Veículo", "Status", "Itens", "Total (R$)", "Criada em", "Concluída em"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		leadName := ""
		if order.Lead != nil {
			leadName = order.Lead.Name
		}
		completedAt := ""
		if order.CompletedAt != nil {
			completedAt = order.CompletedAt.Format("02/01/2006 15:04")
		}

		values := []interface{}{
			order.OSNumber,
			leadName,
			order.VehicleInfo,
			order.Status.Label(),
			len(order.Items),
			order.TotalCost().InexactFloat64(),
			order.CreatedAt.Format("02/01/2006 15:04"),
			completedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}

// ExportServiceOrderPDF gera o PDF de uma ordem de serviço
func (rs *ReportService) ExportServiceOrderPDF(organizationID, orderID uint) ([]byte, error) {
	var order models.ServiceOrder
	err := rs.db.Where("organization_id = ?", organizationID).
		Preload("Items").
		Preload("Lead").
		First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("erro ao buscar ordem de serviço: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Ordem de Serviço %s", order.OSNumber)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	if order.Lead != nil {
		pdf.Cell(0, 7, tr(fmt.Sprintf("Cliente: %s", order.Lead.Name)))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, tr(fmt.Sprintf("Veículo: %s", order.VehicleInfo)))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Status: %s", order.Status.Label())))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Aberta em: %s", order.CreatedAt.Format("02/01/2006 15:04"))))
	pdf.Ln(10)

	if order.ReportedIssues != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr("Problemas relatados"))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(order.ReportedIssues), "", "L", false)
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr("Itens"))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(100, 7, tr("Descrição"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(55, 7, tr("Peças"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, tr("Custo (R$)"), "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(100, 7, tr(item.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, tr(item.Parts), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, item.Cost.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(155, 7, tr("Total"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, order.TotalCost().StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erro ao gerar PDF: %w", err)
	}
	return buf.Bytes(), nil
}
