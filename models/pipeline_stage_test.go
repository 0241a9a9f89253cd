package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageColor_IsValid(t *testing.T) {
	palette := []StageColor{
		StageColorBlue, StageColorYellow, StageColorOrange, StageColorGreen,
		StageColorRed, StageColorPurple, StageColorPink, StageColorGray,
	}
	for _, c := range palette {
		assert.True(t, c.IsValid(), "cor %q deveria ser válida", c)
	}

	assert.False(t, StageColor("magenta").IsValid())
	assert.False(t, StageColor("").IsValid())
}

func TestDefaultPipelineStages(t *testing.T) {
	stages := DefaultPipelineStages(42)
	require.Len(t, stages, 11)

	t.Run("posições contíguas de 0 a 10", func(t *testing.T) {
		for i, s := range stages {
			assert.Equal(t, i, s.Position)
			assert.Equal(t, uint(42), s.OrganizationID)
		}
	})

	t.Run("todas as etapas padrão têm chave estável única", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, s := range stages {
			assert.NotEmpty(t, s.Key, "etapa %q sem chave", s.Name)
			assert.False(t, seen[s.Key], "chave %q duplicada", s.Key)
			seen[s.Key] = true
		}
	})

	t.Run("cores dentro da paleta", func(t *testing.T) {
		for _, s := range stages {
			assert.True(t, s.Color.IsValid(), "etapa %q com cor fora da paleta", s.Name)
		}
	})

	t.Run("primeira etapa é Prospecto", func(t *testing.T) {
		assert.Equal(t, StageKeyProspect, stages[0].Key)
	})
}

func TestHistoryType_IsValid(t *testing.T) {
	valid := []HistoryType{
		HistoryCreation, HistoryStageChange, HistoryAppointmentCreated,
		HistoryAppointmentEdited, HistoryAppointmentDeleted,
		HistoryAttendanceRegistered, HistoryEdit, HistoryServiceOrderCreated,
		HistoryServiceOrderStatus, HistoryServiceOrderFinished,
		HistoryServiceOrderDeleted, HistoryDiagnosisCompleted, HistoryLeadLost,
	}
	require.Len(t, valid, 13)
	for _, h := range valid {
		assert.True(t, h.IsValid(), "tipo %q deveria ser válido", h)
	}

	assert.False(t, HistoryType("note").IsValid())
	assert.False(t, HistoryType("").IsValid())
}
