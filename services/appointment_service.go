package services

import (
	"errors"
	"fmt"

	"backend_pitstop/models"

	"gorm.io/gorm"
)

var (
	// ErrAppointmentNotFound indica que o agendamento não existe na organização
	ErrAppointmentNotFound = errors.New("agendamento não encontrado")
)

// AppointmentService é o dono do ciclo de vida dos agendamentos e das regras de
// sincronização com o funil: criar agenda move o lead para "Agendado", registrar
// comparecimento move para "Em Serviço"; edição e exclusão apenas registram
// histórico sem mover o lead.
type AppointmentService struct {
	db       *gorm.DB
	pipeline *PipelineService
}

// NewAppointmentService cria uma nova instância de AppointmentService
func NewAppointmentService(db *gorm.DB, pipeline *PipelineService) *AppointmentService {
	return &AppointmentService{db: db, pipeline: pipeline}
}

// AppointmentInput dados de criação/edição de um agendamento
type AppointmentInput struct {
	LeadID      uint   `json:"lead_id" binding:"required"`
	UnitID      uint   `json:"unit_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // AAAA-MM-DD
	Time        string `json:"time" binding:"required"` // HH:MM
	ServiceID   *uint  `json:"service_id"`
	ServiceType string `json:"service_type"`
	Notes       string `json:"notes"`
}

// Create cria um agendamento e move o lead para a etapa "Agendado"
func (as *AppointmentService) Create(organizationID uint, input AppointmentInput) (*models.Appointment, error) {
	lead, ok := as.pipeline.GetLeadByID(organizationID, input.LeadID)
	if !ok {
		return nil, ErrLeadNotFound
	}

	appointment := models.Appointment{
		OrganizationID: organizationID,
		LeadID:         lead.ID,
		UnitID:         input.UnitID,
		Date:           input.Date,
		Time:           input.Time,
		ServiceID:      input.ServiceID,
		ServiceType:    input.ServiceType,
		Notes:          input.Notes,
		Attended:       false,
	}

	if err := as.db.Create(&appointment).Error; err != nil {
		return nil, fmt.Errorf("erro ao criar agendamento: %w", err)
	}

	description := fmt.Sprintf("Agendamento criado para %s às %s", input.Date, input.Time)
	as.pipeline.MoveLeadToStageKey(organizationID, lead.ID, models.StageKeyScheduled,
		models.HistoryAppointmentCreated, description)

	return &appointment, nil
}

// Update edita um agendamento. Registra histórico no lead sem mover de etapa.
// A flag de comparecimento não pode ser limpa por este caminho.
func (as *AppointmentService) Update(organizationID, appointmentID uint, input AppointmentInput) (*models.Appointment, error) {
	var appointment models.Appointment
	err := as.db.Where("organization_id = ?", organizationID).First(&appointment, appointmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("erro ao buscar agendamento: %w", err)
	}

	updates := map[string]interface{}{
		"unit_id":      input.UnitID,
		"date":         input.Date,
		"time":         input.Time,
		"service_id":   input.ServiceID,
		"service_type": input.ServiceType,
		"notes":        input.Notes,
	}

	if err := as.db.Model(&appointment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("erro ao atualizar agendamento: %w", err)
	}

	description := fmt.Sprintf("Agendamento de %s às %s editado", appointment.Date, appointment.Time)
	as.pipeline.AddLeadHistory(organizationID, appointment.LeadID,
		models.HistoryAppointmentEdited, description)

	return &appointment, nil
}

// Delete remove um agendamento. Apenas registra histórico; a etapa do lead não
// sofre rollback.
func (as *AppointmentService) Delete(organizationID, appointmentID uint) error {
	var appointment models.Appointment
	err := as.db.Where("organization_id = ?", organizationID).First(&appointment, appointmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("erro ao buscar agendamento: %w", err)
	}

	if err := as.db.Delete(&appointment).Error; err != nil {
		return fmt.Errorf("erro ao remover agendamento: %w", err)
	}

	description := fmt.Sprintf("Agendamento de %s às %s removido", appointment.Date, appointment.Time)
	as.pipeline.AddLeadHistory(organizationID, appointment.LeadID,
		models.HistoryAppointmentDeleted, description)

	return nil
}

// MarkAttended registra o comparecimento do cliente. Transição unidirecional:
// uma vez atendido, nenhuma operação volta a flag para false. Chamadas
// repetidas são no-ops sem histórico.
func (as *AppointmentService) MarkAttended(organizationID, appointmentID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := as.db.Where("organization_id = ?", organizationID).First(&appointment, appointmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("erro ao buscar agendamento: %w", err)
	}

	if appointment.Attended {
		return &appointment, nil
	}

	if err := as.db.Model(&appointment).Update("attended", true).Error; err != nil {
		return nil, fmt.Errorf("erro ao registrar comparecimento: %w", err)
	}
	appointment.Attended = true

	description := fmt.Sprintf("Comparecimento registrado no agendamento de %s às %s", appointment.Date, appointment.Time)
	as.pipeline.MoveLeadToStageKey(organizationID, appointment.LeadID, models.StageKeyInService,
		models.HistoryAttendanceRegistered, description)

	return &appointment, nil
}
