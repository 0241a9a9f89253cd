package models

import (
	"time"
)

// StageColor representa a cor de uma etapa do funil (paleta fechada)
type StageColor string

const (
	StageColorBlue   StageColor = "blue"
	StageColorYellow StageColor = "yellow"
	StageColorOrange StageColor = "orange"
	StageColorGreen  StageColor = "green"
	StageColorRed    StageColor = "red"
	StageColorPurple StageColor = "purple"
	StageColorPink   StageColor = "pink"
	StageColorGray   StageColor = "gray"
)

// IsValid verifica se a cor pertence à paleta suportada
func (c StageColor) IsValid() bool {
	switch c {
	case StageColorBlue, StageColorYellow, StageColorOrange, StageColorGreen,
		StageColorRed, StageColorPurple, StageColorPink, StageColorGray:
		return true
	}
	return false
}

// Chaves estáveis das etapas padrão. As regras de sincronização
// (agendamento criado, status de OS etc.) resolvem a etapa destino por chave,
// por isso elas nunca mudam mesmo que o nome da etapa seja editado.
const (
	StageKeyProspect     = "prospect"
	StageKeyFirstContact = "first-contact"
	StageKeyQualificacao = "qualification"
	StageKeyProposal     = "proposal-sent"
	StageKeyNegotiation  = "negotiation"
	StageKeyScheduled    = "scheduled"
	StageKeyInService    = "in-service"
	StageKeyWaitingParts = "waiting-parts"
	StageKeyCompleted    = "completed"
	StageKeyInvoiced     = "invoiced"
	StageKeyClosed       = "closed"
)

// PipelineStage representa uma etapa (coluna do kanban) do funil de vendas/serviço.
// Position é única e contígua (0..N-1) dentro da organização após qualquer
// mudança estrutural. Remoção é física: a renumeração das sobreviventes
// acontece na mesma transação.
type PipelineStage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint `json:"organization_id" gorm:"not null;index"`

	Name     string     `json:"name" gorm:"not null;type:varchar(80)"`
	Color    StageColor `json:"color" gorm:"type:varchar(10);default:'blue'"`
	Position int        `json:"position" gorm:"not null;default:0"`

	// Chave estável para etapas padrão; vazia para colunas criadas pelo usuário
	Key string `json:"key" gorm:"type:varchar(30);index"`
}

// TableName define o nome da tabela
func (PipelineStage) TableName() string {
	return "pipeline_stages"
}

// DefaultPipelineStages devolve o funil padrão de uma organização recém-criada,
// já na ordem correta (Position 0..10).
func DefaultPipelineStages(organizationID uint) []PipelineStage {
	defaults := []struct {
		key   string
		name  string
		color StageColor
	}{
		{StageKeyProspect, "Prospecto", StageColorBlue},
		{StageKeyFirstContact, "Primeiro Contato", StageColorBlue},
		{StageKeyQualificacao, "Qualificação", StageColorYellow},
		{StageKeyProposal, "Proposta Enviada", StageColorYellow},
		{StageKeyNegotiation, "Negociação", StageColorOrange},
		{StageKeyScheduled, "Agendado", StageColorPurple},
		{StageKeyInService, "Em Serviço", StageColorOrange},
		{StageKeyWaitingParts, "Aguardando Peças", StageColorRed},
		{StageKeyCompleted, "Serviço Concluído", StageColorGreen},
		{StageKeyInvoiced, "Faturado", StageColorGreen},
		{StageKeyClosed, "Encerrado", StageColorGray},
	}

	stages := make([]PipelineStage, 0, len(defaults))
	for i, d := range defaults {
		stages = append(stages, PipelineStage{
			OrganizationID: organizationID,
			Name:           d.name,
			Color:          d.color,
			Position:       i,
			Key:            d.key,
		})
	}
	return stages
}
