package services

import (
	"testing"

	"backend_pitstop/models"
	"backend_pitstop/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAppointments(t *testing.T) (*gorm.DB, *AppointmentService, *PipelineService, *models.Organization, []models.PipelineStage, *models.Unit) {
	t.Helper()

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)
	unit := testutils.CreateTestUnit(db, org.ID)

	pipeline := NewPipelineService(db)
	return db, NewAppointmentService(db, pipeline), pipeline, org, stages, unit
}

func TestAppointmentService_Create(t *testing.T) {
	db, as, ps, org, stages, unit := setupAppointments(t)

	t.Run("criar agendamento move o lead para Agendado", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

		appointment, err := as.Create(org.ID, AppointmentInput{
			LeadID: lead.ID,
			UnitID: unit.ID,
			Date:   "2025-04-10",
			Time:   "14:30",
		})
		require.NoError(t, err)
		assert.False(t, appointment.Attended)

		updated, ok := ps.GetLeadByID(org.ID, lead.ID)
		require.True(t, ok)
		assert.Equal(t, models.StageKeyScheduled, updated.PipelineStage.Key)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.HistoryAppointmentCreated, history[0].Type)
		assert.Contains(t, history[0].Description, "2025-04-10")
		assert.Contains(t, history[0].Description, "14:30")
	})

	t.Run("duplo agendamento no mesmo horário é permitido", func(t *testing.T) {
		a := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		b := testutils.CreateTestLead(db, org.ID, stages[0].ID)

		_, err := as.Create(org.ID, AppointmentInput{LeadID: a.ID, UnitID: unit.ID, Date: "2025-04-11", Time: "09:00"})
		require.NoError(t, err)
		_, err = as.Create(org.ID, AppointmentInput{LeadID: b.ID, UnitID: unit.ID, Date: "2025-04-11", Time: "09:00"})
		assert.NoError(t, err)
	})

	t.Run("lead inexistente", func(t *testing.T) {
		_, err := as.Create(org.ID, AppointmentInput{LeadID: 9999, UnitID: unit.ID, Date: "2025-04-10", Time: "10:00"})
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})
}

func TestAppointmentService_Update(t *testing.T) {
	db, as, ps, org, stages, unit := setupAppointments(t)

	lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
	appointment, err := as.Create(org.ID, AppointmentInput{
		LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-10", Time: "14:30",
	})
	require.NoError(t, err)

	t.Run("edição registra histórico sem mover o lead", func(t *testing.T) {
		// Move o lead manualmente antes da edição para detectar regressão
		require.Equal(t, SyncOK, ps.UpdateLeadStatus(org.ID, lead.ID, stages[4].ID,
			models.HistoryStageChange, "movido"))

		_, err := as.Update(org.ID, appointment.ID, AppointmentInput{
			LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-12", Time: "16:00",
		})
		require.NoError(t, err)

		updated, _ := ps.GetLeadByID(org.ID, lead.ID)
		assert.Equal(t, stages[4].ID, updated.PipelineStageID)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.HistoryAppointmentEdited, history[0].Type)
	})

	t.Run("agendamento inexistente", func(t *testing.T) {
		_, err := as.Update(org.ID, 9999, AppointmentInput{LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-12", Time: "16:00"})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestAppointmentService_Delete(t *testing.T) {
	db, as, ps, org, stages, unit := setupAppointments(t)

	lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
	appointment, err := as.Create(org.ID, AppointmentInput{
		LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-10", Time: "14:30",
	})
	require.NoError(t, err)

	t.Run("exclusão só registra histórico, etapa permanece", func(t *testing.T) {
		require.NoError(t, as.Delete(org.ID, appointment.ID))

		updated, _ := ps.GetLeadByID(org.ID, lead.ID)
		assert.Equal(t, models.StageKeyScheduled, updated.PipelineStage.Key)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.HistoryAppointmentDeleted, history[0].Type)
	})

	t.Run("agendamento inexistente", func(t *testing.T) {
		assert.ErrorIs(t, as.Delete(org.ID, 9999), ErrAppointmentNotFound)
	})
}

func TestAppointmentService_MarkAttended(t *testing.T) {
	db, as, ps, org, stages, unit := setupAppointments(t)

	t.Run("comparecimento move o lead para Em Serviço", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		appointment, err := as.Create(org.ID, AppointmentInput{
			LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-10", Time: "14:30",
		})
		require.NoError(t, err)

		updated, err := as.MarkAttended(org.ID, appointment.ID)
		require.NoError(t, err)
		assert.True(t, updated.Attended)

		leadNow, _ := ps.GetLeadByID(org.ID, lead.ID)
		assert.Equal(t, models.StageKeyInService, leadNow.PipelineStage.Key)

		history, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.HistoryAttendanceRegistered, history[0].Type)
	})

	t.Run("registrar comparecimento de novo é no-op", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		appointment, err := as.Create(org.ID, AppointmentInput{
			LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-10", Time: "08:00",
		})
		require.NoError(t, err)

		_, err = as.MarkAttended(org.ID, appointment.ID)
		require.NoError(t, err)
		before, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)

		again, err := as.MarkAttended(org.ID, appointment.ID)
		require.NoError(t, err)
		assert.True(t, again.Attended)

		after, err := ps.GetLeadHistory(org.ID, lead.ID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("edição posterior não limpa a flag de comparecimento", func(t *testing.T) {
		lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)
		appointment, err := as.Create(org.ID, AppointmentInput{
			LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-10", Time: "11:00",
		})
		require.NoError(t, err)

		_, err = as.MarkAttended(org.ID, appointment.ID)
		require.NoError(t, err)

		edited, err := as.Update(org.ID, appointment.ID, AppointmentInput{
			LeadID: lead.ID, UnitID: unit.ID, Date: "2025-04-15", Time: "11:30",
		})
		require.NoError(t, err)
		assert.True(t, edited.Attended)
	})
}
