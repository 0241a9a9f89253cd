package services

import (
	"regexp"
	"testing"
	"time"

	"backend_pitstop/models"
	"backend_pitstop/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrders(t *testing.T) (*gorm.DB, *ServiceOrderService, *PipelineService, *models.Organization, []models.PipelineStage) {
	t.Helper()

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)

	pipeline := NewPipelineService(db)
	return db, NewServiceOrderService(db, pipeline), pipeline, org, stages
}

func stageKeyOf(t *testing.T, ps *PipelineService, orgID, leadID uint) string {
	t.Helper()
	lead, ok := ps.GetLeadByID(orgID, leadID)
	require.True(t, ok)
	require.NotNil(t, lead.PipelineStage)
	return lead.PipelineStage.Key
}

func TestGenerateOSNumber(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

	pattern := regexp.MustCompile(`^OS-202503-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := GenerateOSNumber(now)
		assert.Regexp(t, pattern, n)
		assert.False(t, seen[n], "número de OS repetido: %s", n)
		seen[n] = true
	}
}

func TestServiceOrderService_Create(t *testing.T) {
	db, sos, ps, org, stages := setupOrders(t)

	t.Run("criar OS força o lead para Em Serviço", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

		order, err := sos.Create(org.ID, CreateServiceOrderInput{
			LeadID:      lead.ID,
			VehicleInfo: "Fiat Uno 2015",
			Items: []ServiceOrderItemInput{
				{Description: "Troca de óleo", Cost: decimal.NewFromFloat(150)},
				{Description: "Filtro de ar", Parts: "Filtro Tecfil", Cost: decimal.NewFromFloat(80)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusDiagnosis, order.Status)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, "230", order.TotalCost().String())

		assert.Equal(t, models.StageKeyInService, stageKeyOf(t, ps, org.ID, lead.ID))

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.HistoryServiceOrderCreated, history[0].Type)
	})

	t.Run("status inicial explícito é respeitado, lead vai para Em Serviço mesmo assim", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[9].ID)

		order, err := sos.Create(org.ID, CreateServiceOrderInput{
			LeadID: lead.ID,
			Status: models.OrderStatusInProgress,
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusInProgress, order.Status)
		assert.Equal(t, models.StageKeyInService, stageKeyOf(t, ps, org.ID, lead.ID))
	})

	t.Run("lead inexistente", func(t *testing.T) {
		_, err := sos.Create(org.ID, CreateServiceOrderInput{LeadID: 9999})
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})

	t.Run("status inválido", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		_, err := sos.Create(org.ID, CreateServiceOrderInput{
			LeadID: lead.ID,
			Status: models.ServiceOrderStatus("exploded"),
		})
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
	})
}

func TestServiceOrderService_UpdateStatus(t *testing.T) {
	db, sos, ps, org, stages := setupOrders(t)

	newOrder := func(t *testing.T) (*models.ServiceOrder, *models.Lead) {
		t.Helper()
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		order, err := sos.Create(org.ID, CreateServiceOrderInput{LeadID: lead.ID})
		require.NoError(t, err)
		return order, lead
	}

	t.Run("mesmo status é no-op puro", func(t *testing.T) {
		order, lead := newOrder(t)
		before, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)

		updated, err := sos.UpdateStatus(org.ID, order.ID, models.OrderStatusDiagnosis)
		require.NoError(t, err)
		assert.Nil(t, updated.CompletedAt)

		after, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("cada status move o lead para a etapa implicada", func(t *testing.T) {
		cases := []struct {
			status   models.ServiceOrderStatus
			stageKey string
		}{
			{models.OrderStatusWaitingParts, models.StageKeyWaitingParts},
			{models.OrderStatusInProgress, models.StageKeyInService},
			{models.OrderStatusCompleted, models.StageKeyCompleted},
			{models.OrderStatusWaitingPickup, models.StageKeyCompleted},
			{models.OrderStatusPaid, models.StageKeyInvoiced},
			{models.OrderStatusCancelled, models.StageKeyClosed},
		}

		for _, tc := range cases {
			t.Run(string(tc.status), func(t *testing.T) {
				order, lead := newOrder(t)
				_, err := sos.UpdateStatus(org.ID, order.ID, tc.status)
				require.NoError(t, err)
				assert.Equal(t, tc.stageKey, stageKeyOf(t, ps, org.ID, lead.ID))
			})
		}
	})

	t.Run("concluir carimba CompletedAt uma única vez", func(t *testing.T) {
		order, _ := newOrder(t)

		updated, err := sos.UpdateStatus(org.ID, order.ID, models.OrderStatusCompleted)
		require.NoError(t, err)
		require.NotNil(t, updated.CompletedAt)
		stamp := *updated.CompletedAt

		// Sai de completed e volta: o carimbo original é preservado
		_, err = sos.UpdateStatus(org.ID, order.ID, models.OrderStatusInProgress)
		require.NoError(t, err)
		updated, err = sos.UpdateStatus(org.ID, order.ID, models.OrderStatusCompleted)
		require.NoError(t, err)
		require.NotNil(t, updated.CompletedAt)
		assert.True(t, updated.CompletedAt.Equal(stamp))
	})

	t.Run("concluir gera histórico de finalização", func(t *testing.T) {
		order, lead := newOrder(t)
		_, err := sos.UpdateStatus(org.ID, order.ID, models.OrderStatusCompleted)
		require.NoError(t, err)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.HistoryServiceOrderFinished, history[0].Type)
	})

	t.Run("OS inexistente", func(t *testing.T) {
		_, err := sos.UpdateStatus(org.ID, 9999, models.OrderStatusPaid)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestServiceOrderService_Delete(t *testing.T) {
	db, sos, ps, org, stages := setupOrders(t)

	t.Run("remove itens junto e não desfaz a etapa do lead", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		order, err := sos.Create(org.ID, CreateServiceOrderInput{
			LeadID: lead.ID,
			Items:  []ServiceOrderItemInput{{Description: "Alinhamento", Cost: decimal.NewFromFloat(90)}},
		})
		require.NoError(t, err)

		require.NoError(t, sos.Delete(org.ID, order.ID))

		_, err = sos.GetByID(org.ID, order.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)

		var itemCount int64
		db.Model(&models.ServiceOrderItem{}).Where("service_order_id = ?", order.ID).Count(&itemCount)
		assert.Zero(t, itemCount)

		// O lead permanece em "Em Serviço"; só o histórico registra a remoção
		assert.Equal(t, models.StageKeyInService, stageKeyOf(t, ps, org.ID, lead.ID))

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.HistoryServiceOrderDeleted, history[0].Type)
	})

	t.Run("OS inexistente", func(t *testing.T) {
		assert.ErrorIs(t, sos.Delete(org.ID, 9999), ErrOrderNotFound)
	})
}
