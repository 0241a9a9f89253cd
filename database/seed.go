package database

import (
	"log"

	"backend_pitstop/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaultData garante que exista a organização de demonstração com o funil
// padrão e o usuário administrador. Idempotente: execuções repetidas não criam
// duplicatas.
func SeedDefaultData(db *gorm.DB) error {
	var org models.Organization
	err := db.Where("slug = ?", "pitstop").First(&org).Error
	if err == gorm.ErrRecordNotFound {
		org = models.Organization{
			Name:     "PitStop Auto Center",
			Slug:     "pitstop",
			IsActive: true,
		}
		if err := db.Create(&org).Error; err != nil {
			return err
		}
		log.Printf("✅ Organização de demonstração criada (id=%d)", org.ID)
	} else if err != nil {
		return err
	}

	if err := EnsureDefaultPipeline(db, org.ID); err != nil {
		return err
	}

	return ensureAdminUser(db, org.ID)
}

// EnsureDefaultPipeline cria o funil padrão da organização caso ela ainda não
// tenha nenhuma etapa
func EnsureDefaultPipeline(db *gorm.DB, organizationID uint) error {
	var count int64
	if err := db.Model(&models.PipelineStage{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	stages := models.DefaultPipelineStages(organizationID)
	if err := db.Create(&stages).Error; err != nil {
		return err
	}

	log.Printf("✅ Funil padrão criado para a organização %d (%d etapas)", organizationID, len(stages))
	return nil
}

// ensureAdminUser cria o usuário administrador de demonstração (admin / pitstop123)
func ensureAdminUser(db *gorm.DB, organizationID uint) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(getEnv("ADMIN_PASSWORD", "pitstop123")), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:       "admin",
		Email:          "admin@pitstop.local",
		Password:       string(hash),
		FirstName:      "Administrador",
		Role:           "admin",
		IsActive:       true,
		OrganizationID: organizationID,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("✅ Usuário administrador criado")
	return nil
}
