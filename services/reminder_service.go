package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"backend_pitstop/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService envia lembretes diários dos agendamentos do dia seguinte via
// Telegram para cada organização que tenha chat configurado. Falha de envio é
// registrada em log e nunca interrompe o restante da rodada.
type ReminderService struct {
	db       *gorm.DB
	cron     *cron.Cron
	telegram *TelegramClient
	logger   *log.Logger
}

// NewReminderService cria uma nova instância de ReminderService. O cliente
// Telegram pode ser nil quando o bot não está configurado; nesse caso os
// lembretes são apenas registrados em log.
func NewReminderService(db *gorm.DB, telegram *TelegramClient) *ReminderService {
	return &ReminderService{
		db:       db,
		cron:     cron.New(cron.WithSeconds()),
		telegram: telegram,
		logger:   log.Default(),
	}
}

// Start agenda a rodada diária de lembretes
func (rs *ReminderService) Start(cronExpr string) error {
	if cronExpr == "" {
		cronExpr = "0 0 8 * * *"
	}

	_, err := rs.cron.AddFunc(cronExpr, func() {
		rs.SendDailyReminders()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar lembretes: %w", err)
	}

	rs.cron.Start()
	log.Println("✅ Agendador de lembretes iniciado")
	return nil
}

// Stop interrompe o agendador
func (rs *ReminderService) Stop() {
	rs.cron.Stop()
	log.Println("Agendador de lembretes interrompido")
}

// SendDailyReminders envia os lembretes dos agendamentos de amanhã
func (rs *ReminderService) SendDailyReminders() {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var appointments []models.Appointment
	err := rs.db.Where("date = ? AND attended = ?", tomorrow, false).
		Preload("Lead").
		Preload("Unit").
		Order("organization_id, time ASC").
		Find(&appointments).Error
	if err != nil {
		rs.logger.Printf("⚠️  Erro ao carregar agendamentos de %s: %v", tomorrow, err)
		return
	}

	if len(appointments) == 0 {
		return
	}

	// Agrupa por organização para enviar um resumo por chat
	byOrg := make(map[uint][]models.Appointment)
	for _, a := range appointments {
		byOrg[a.OrganizationID] = append(byOrg[a.OrganizationID], a)
	}

	for orgID, orgAppointments := range byOrg {
		rs.sendOrganizationReminder(orgID, tomorrow, orgAppointments)
	}
}

// sendOrganizationReminder monta e envia o resumo de uma organização
func (rs *ReminderService) sendOrganizationReminder(organizationID uint, date string, appointments []models.Appointment) {
	var org models.Organization
	if err := rs.db.First(&org, organizationID).Error; err != nil {
		rs.logger.Printf("⚠️  Organização %d não encontrada para lembrete: %v", organizationID, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Agendamentos de %s</b>\n", date)
	for _, a := range appointments {
		leadName := "cliente"
		if a.Lead != nil {
			leadName = a.Lead.Name
		}
		unitName := ""
		if a.Unit != nil {
			unitName = " - " + a.Unit.Name
		}
		fmt.Fprintf(&b, "• %s %s%s\n", a.Time, leadName, unitName)
	}
	message := b.String()

	if rs.telegram == nil || org.TelegramChatID == "" {
		rs.logger.Printf("Lembrete (sem Telegram) org %d:\n%s", organizationID, message)
		return
	}

	if err := rs.telegram.SendMessage(org.TelegramChatID, message); err != nil {
		rs.logger.Printf("⚠️  Erro ao enviar lembrete da organização %d: %v", organizationID, err)
	}
}
