package database

import (
	"log"

	"gorm.io/gorm"
)

// CreateIndexes cria índices compostos para os caminhos de consulta mais quentes.
// Índices simples de chave estrangeira já são criados pela automigração.
func CreateIndexes(db *gorm.DB) error {
	indexes := []string{
		// Quadro kanban: etapas sempre lidas ordenadas por posição dentro da organização
		"CREATE INDEX IF NOT EXISTS idx_pipeline_stages_org_position ON pipeline_stages (organization_id, position)",

		// Leads filtrados por etapa dentro da organização
		"CREATE INDEX IF NOT EXISTS idx_leads_org_stage ON leads (organization_id, pipeline_stage_id)",

		// Histórico lido sempre do mais recente para o mais antigo
		"CREATE INDEX IF NOT EXISTS idx_lead_histories_lead_created ON lead_histories (lead_id, created_at DESC)",

		// Agenda do dia por organização
		"CREATE INDEX IF NOT EXISTS idx_appointments_org_date ON appointments (organization_id, date)",

		// OS filtradas por status
		"CREATE INDEX IF NOT EXISTS idx_service_orders_org_status ON service_orders (organization_id, status)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	log.Println("✅ Índices criados com sucesso")
	return nil
}
