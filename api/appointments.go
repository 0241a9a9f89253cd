package api

import (
	"net/http"
	"strconv"

	"backend_pitstop/models"
	"backend_pitstop/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentAPI representa a API de agendamentos
type AppointmentAPI struct {
	DB           *gorm.DB
	Appointments *services.AppointmentService
}

// NewAppointmentAPI cria uma nova instância de AppointmentAPI
func NewAppointmentAPI(db *gorm.DB, appointments *services.AppointmentService) *AppointmentAPI {
	return &AppointmentAPI{DB: db, Appointments: appointments}
}

// GetAppointments devolve os agendamentos com filtros por data, unidade e lead
func (api *AppointmentAPI) GetAppointments(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var appointments []models.Appointment
	query := api.DB.Model(&models.Appointment{}).Where("organization_id = ?", orgID)

	// Filtros
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("date <= ?", to)
	}
	if unitID := c.Query("unit_id"); unitID != "" {
		query = query.Where("unit_id = ?", unitID)
	}
	if leadID := c.Query("lead_id"); leadID != "" {
		query = query.Where("lead_id = ?", leadID)
	}
	if attended := c.Query("attended"); attended != "" {
		query = query.Where("attended = ?", attended == "true")
	}

	err := query.Preload("Lead").Preload("Unit").Preload("Service").
		Order("date ASC, time ASC").
		Find(&appointments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar agendamentos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": appointments})
}

// CreateAppointment cria um agendamento e move o lead para "Agendado"
func (api *AppointmentAPI) CreateAppointment(c *gin.Context) {
	orgID := GetOrganizationID(c)

	var input services.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	appointment, err := api.Appointments.Create(orgID, input)
	if err != nil {
		if err == services.ErrLeadNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar agendamento"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Agendamento criado com sucesso",
		"data":    appointment,
	})
}

// UpdateAppointment edita um agendamento (só histórico, sem mover o lead)
func (api *AppointmentAPI) UpdateAppointment(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var input services.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	appointment, err := api.Appointments.Update(orgID, uint(id), input)
	if err != nil {
		if err == services.ErrAppointmentNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar agendamento"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Agendamento atualizado com sucesso",
		"data":    appointment,
	})
}

// DeleteAppointment remove um agendamento (exige confirm=true)
func (api *AppointmentAPI) DeleteAppointment(c *gin.Context) {
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

	if err := api.Appointments.Delete(orgID, uint(id)); err != nil {
		if err == services.ErrAppointmentNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover agendamento"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Agendamento removido com sucesso"})
}

// MarkAttended registra o comparecimento e move o lead para "Em Serviço"
func (api *AppointmentAPI) MarkAttended(c *gin.Context) {
	orgID := GetOrganizationID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	appointment, err := api.Appointments.MarkAttended(orgID, uint(id))
	if err != nil {
		if err == services.ErrAppointmentNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao registrar comparecimento"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comparecimento registrado com sucesso",
		"data":    appointment,
	})
}
