package testutils

import (
	"log"

	"backend_pitstop/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB cria e configura uma base de dados de teste em memória.
// Esta função deve ser usada em todos os testes para garantir consistência.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Migrações na ordem correta (modelos base primeiro)
	err = db.AutoMigrate(
		// Modelos base
		&models.Organization{},
		&models.User{},
		&models.Unit{},
		&models.Service{},

		// Funil
		&models.PipelineStage{},
		&models.Lead{},
		&models.LeadHistory{},

		// Agenda e ordens de serviço
		&models.Appointment{},
		&models.ServiceOrder{},
		&models.ServiceOrderItem{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// CleanupTestDB fecha a base de dados de teste
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// CreateTestOrganization cria uma organização de teste
func CreateTestOrganization(db *gorm.DB) *models.Organization {
	org := &models.Organization{
		Name:     "Oficina Teste",
		Slug:     "oficina-teste",
		IsActive: true,
	}

	if err := db.Create(org).Error; err != nil {
		log.Printf("Falha ao criar organização de teste: %v", err)
		return nil
	}

	return org
}

// CreateTestPipeline cria o funil padrão da organização de teste e devolve as
// etapas na ordem de posição
func CreateTestPipeline(db *gorm.DB, organizationID uint) []models.PipelineStage {
	stages := models.DefaultPipelineStages(organizationID)
	if err := db.Create(&stages).Error; err != nil {
		log.Printf("Falha ao criar funil de teste: %v", err)
		return nil
	}
	return stages
}

// CreateTestLead cria um lead de teste na etapa indicada
func CreateTestLead(db *gorm.DB, organizationID, stageID uint) *models.Lead {
	lead := &models.Lead{
		OrganizationID:  organizationID,
		Name:            "Cliente Teste",
		Phone:           "(11) 99999-0000",
		CarModel:        "Fiat Uno",
		CarPlate:        "ABC1D23",
		PipelineStageID: stageID,
	}

	if err := db.Create(lead).Error; err != nil {
		log.Printf("Falha ao criar lead de teste: %v", err)
		return nil
	}

	return lead
}

// CreateTestUnit cria uma unidade de teste
func CreateTestUnit(db *gorm.DB, organizationID uint) *models.Unit {
	unit := &models.Unit{
		OrganizationID: organizationID,
		Name:           "Unidade Centro",
		Address:        "Rua Teste, 100",
		Phone:          "(11) 3333-0000",
	}

	if err := db.Create(unit).Error; err != nil {
		log.Printf("Falha ao criar unidade de teste: %v", err)
		return nil
	}

	return unit
}

// CreateTestService cria um serviço de catálogo de teste
func CreateTestService(db *gorm.DB, organizationID uint) *models.Service {
	service := &models.Service{
		OrganizationID: organizationID,
		Name:           "Troca de Óleo",
		Price:          decimal.NewFromFloat(150.00),
		IsActive:       true,
	}

	if err := db.Create(service).Error; err != nil {
		log.Printf("Falha ao criar serviço de teste: %v", err)
		return nil
	}

	return service
}
