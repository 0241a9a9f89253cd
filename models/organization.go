package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization representa a organização (oficina) dona dos dados. Cada oficina
// PitStop opera como uma organização única com seus próprios leads, funil e catálogo.
type Organization struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name  string `json:"name" gorm:"not null;type:varchar(120)"`
	Slug  string `json:"slug" gorm:"uniqueIndex;type:varchar(60)"`
	Phone string `json:"phone" gorm:"type:varchar(20)"`
	Email string `json:"email" gorm:"type:varchar(120)"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	// Chat de destino dos lembretes de agendamento via Telegram (opcional)
	TelegramChatID string `json:"telegram_chat_id" gorm:"type:varchar(32)"`
}

// TableName define o nome da tabela
func (Organization) TableName() string {
	return "organizations"
}
