package services

import (
	"testing"

	"backend_pitstop/models"
	"backend_pitstop/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineService_UpdateLeadStatus(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)
	lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

	ps := NewPipelineService(db)

	t.Run("move lead e registra histórico atomicamente", func(t *testing.T) {
		result := ps.UpdateLeadStatus(org.ID, lead.ID, stages[5].ID, models.HistoryStageChange, "Lead movido")
		assert.Equal(t, SyncOK, result)

		updated, ok := ps.GetLeadByID(org.ID, lead.ID)
		require.True(t, ok)
		assert.Equal(t, stages[5].ID, updated.PipelineStageID)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.HistoryStageChange, history[0].Type)
		assert.Equal(t, "Lead movido", history[0].Description)
	})

	t.Run("lead inexistente devolve SyncNotFound", func(t *testing.T) {
		result := ps.UpdateLeadStatus(org.ID, 9999, stages[0].ID, models.HistoryStageChange, "x")
		assert.Equal(t, SyncNotFound, result)
	})

	t.Run("etapa inexistente devolve SyncNotFound e não registra histórico", func(t *testing.T) {
		before, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)

		result := ps.UpdateLeadStatus(org.ID, lead.ID, 9999, models.HistoryStageChange, "x")
		assert.Equal(t, SyncNotFound, result)

		after, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("lead de outra organização não é visível", func(t *testing.T) {
		other := testutils.CreateTestOrganization(db)
		result := ps.UpdateLeadStatus(other.ID, lead.ID, stages[0].ID, models.HistoryStageChange, "x")
		assert.Equal(t, SyncNotFound, result)
	})
}

func TestPipelineService_AddLeadHistory(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)
	lead := testutils.CreateTestLead(db, org.ID, stages[2].ID)

	ps := NewPipelineService(db)

	t.Run("registra evento sem mover o lead", func(t *testing.T) {
		result := ps.AddLeadHistory(org.ID, lead.ID, models.HistoryAppointmentEdited, "Agendamento editado")
		assert.Equal(t, SyncOK, result)

		updated, ok := ps.GetLeadByID(org.ID, lead.ID)
		require.True(t, ok)
		assert.Equal(t, stages[2].ID, updated.PipelineStageID)
	})

	t.Run("tipo de histórico inválido é rejeitado", func(t *testing.T) {
		result := ps.AddLeadHistory(org.ID, lead.ID, models.HistoryType("invented"), "x")
		assert.Equal(t, SyncStorageError, result)
	})

	t.Run("histórico é devolvido do mais recente para o mais antigo", func(t *testing.T) {
		ps.AddLeadHistory(org.ID, lead.ID, models.HistoryEdit, "primeiro")
		ps.AddLeadHistory(org.ID, lead.ID, models.HistoryEdit, "segundo")

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(history), 2)
		assert.Equal(t, "segundo", history[0].Description)
		assert.Equal(t, "primeiro", history[1].Description)
	})
}

func TestPipelineService_MoveLeadToStageKey(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)
	ps := NewPipelineService(db)

	t.Run("resolve a etapa pela chave estável", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

		result := ps.MoveLeadToStageKey(org.ID, lead.ID, models.StageKeyInService,
			models.HistoryServiceOrderCreated, "OS criada")
		assert.Equal(t, SyncOK, result)

		updated, ok := ps.GetLeadByID(org.ID, lead.ID)
		require.True(t, ok)
		assert.Equal(t, models.StageKeyInService, updated.PipelineStage.Key)
	})

	t.Run("chave resolve mesmo com nome da etapa editado", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

		require.NoError(t, db.Model(&models.PipelineStage{}).
			Where("organization_id = ? AND key = ?", org.ID, models.StageKeyScheduled).
			Update("name", "Visita Marcada").Error)

		result := ps.MoveLeadToStageKey(org.ID, lead.ID, models.StageKeyScheduled,
			models.HistoryAppointmentCreated, "Agendamento criado")
		assert.Equal(t, SyncOK, result)

		updated, _ := ps.GetLeadByID(org.ID, lead.ID)
		assert.Equal(t, "Visita Marcada", updated.PipelineStage.Name)
	})

	t.Run("etapa padrão removida degrada para histórico sem mover", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

		require.NoError(t, db.Where("organization_id = ? AND key = ?", org.ID, models.StageKeyInvoiced).
			Delete(&models.PipelineStage{}).Error)

		result := ps.MoveLeadToStageKey(org.ID, lead.ID, models.StageKeyInvoiced,
			models.HistoryServiceOrderStatus, "OS paga")
		assert.Equal(t, SyncOK, result)

		updated, _ := ps.GetLeadByID(org.ID, lead.ID)
		assert.Equal(t, stages[0].ID, updated.PipelineStageID)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.HistoryServiceOrderStatus, history[0].Type)
	})
}
