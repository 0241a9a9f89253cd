package services

import (
	"testing"
	"time"

	"backend_pitstop/models"
	"backend_pitstop/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_GetPipelineFunnel(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)

	testutils.CreateTestLead(db, org.ID, stages[0].ID)
	testutils.CreateTestLead(db, org.ID, stages[0].ID)
	testutils.CreateTestLead(db, org.ID, stages[6].ID)

	rs := NewReportService(db)
	funnel, err := rs.GetPipelineFunnel(org.ID)
	require.NoError(t, err)
	require.Len(t, funnel, len(stages))

	assert.Equal(t, int64(2), funnel[0].Count)
	assert.Equal(t, int64(1), funnel[6].Count)
	for i, entry := range funnel {
		assert.Equal(t, i, entry.Position)
	}
}

func TestReportService_GetMonthlyRevenue(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)
	lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

	now := time.Now()

	// OS concluída este mês com dois itens
	completed := models.ServiceOrder{
		OrganizationID: org.ID,
		OSNumber:       GenerateOSNumber(now),
		LeadID:         lead.ID,
		Status:         models.OrderStatusCompleted,
		CompletedAt:    &now,
	}
	require.NoError(t, db.Create(&completed).Error)
	require.NoError(t, db.Create(&models.ServiceOrderItem{
		ServiceOrderID: completed.ID,
		Description:    "Revisão",
		Cost:           decimal.RequireFromString("300.50"),
	}).Error)
	require.NoError(t, db.Create(&models.ServiceOrderItem{
		ServiceOrderID: completed.ID,
		Description:    "Pastilhas",
		Cost:           decimal.RequireFromString("199.50"),
	}).Error)

	// OS cancelada não conta como receita
	cancelled := models.ServiceOrder{
		OrganizationID: org.ID,
		OSNumber:       GenerateOSNumber(now),
		LeadID:         lead.ID,
		Status:         models.OrderStatusCancelled,
		CompletedAt:    &now,
	}
	require.NoError(t, db.Create(&cancelled).Error)
	require.NoError(t, db.Create(&models.ServiceOrderItem{
		ServiceOrderID: cancelled.ID,
		Description:    "Orçamento recusado",
		Cost:           decimal.RequireFromString("999.99"),
	}).Error)

	rs := NewReportService(db)
	series, err := rs.GetMonthlyRevenue(org.ID, 3)
	require.NoError(t, err)
	require.Len(t, series, 3)

	// Receita sempre recalculada a partir dos itens
	current := series[len(series)-1]
	assert.Equal(t, now.Format("2006-01"), current.Month)
	assert.Equal(t, "500.00", current.Total.StringFixed(2))
	assert.Equal(t, "0.00", series[0].Total.StringFixed(2))
}
