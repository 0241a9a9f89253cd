package main

import (
	"log"

	"backend_pitstop/api"
	"backend_pitstop/config"
	"backend_pitstop/database"
	"backend_pitstop/middleware"
	"backend_pitstop/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// initDB inicializa a conexão com o banco de dados
func initDB() {
	log.Println("🔧 Inicializando banco de dados...")

	// Cria o banco de dados caso ele ainda não exista
	if err := database.CreateDatabaseIfNotExists(); err != nil {
		log.Fatal("❌ Erro ao criar banco de dados:", err)
	}

	// Conecta ao banco de dados
	if err := database.ConnectDatabase(); err != nil {
		log.Fatal("❌ Erro de conexão com o banco de dados:", err)
	}

	log.Println("✅ Banco de dados inicializado com sucesso")
}

func main() {
	// Carrega a configuração (inclui o .env, se existir)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Erro ao carregar configuração:", err)
	}
	cfg.LogConfig()

	initDB()

	// Redis é opcional: sem ele o cache e o rate limiting são desligados
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis indisponível, cache e rate limiting desativados: %v", err)
		database.Redis = nil
	}

	// Dados iniciais (organização demo, funil padrão, usuário admin)
	if err := database.SeedDefaultData(database.DB); err != nil {
		log.Fatal("❌ Erro ao popular dados iniciais:", err)
	}

	// Serviços de domínio
	pipelineService := services.NewPipelineService(database.DB)
	kanbanService := services.NewKanbanService(database.DB, pipelineService)
	orderService := services.NewServiceOrderService(database.DB, pipelineService)
	appointmentService := services.NewAppointmentService(database.DB, pipelineService)
	reportService := services.NewReportService(database.DB)

	// Lembretes diários via Telegram (opcional)
	var telegramClient *services.TelegramClient
	if cfg.External.TelegramBotToken != "" {
		telegramClient, err = services.NewTelegramClient(cfg.External.TelegramBotToken)
		if err != nil {
			log.Printf("⚠️  Telegram indisponível, lembretes apenas em log: %v", err)
		}
	}
	reminderService := services.NewReminderService(database.DB, telegramClient)
	if err := reminderService.Start(cfg.External.ReminderCron); err != nil {
		log.Printf("⚠️  Erro ao iniciar agendador de lembretes: %v", err)
	}
	defer reminderService.Stop()

	// APIs
	authAPI := api.NewAuthAPI(database.DB)
	leadAPI := api.NewLeadAPI(database.DB, pipelineService, kanbanService)
	pipelineAPI := api.NewPipelineAPI(kanbanService)
	appointmentAPI := api.NewAppointmentAPI(database.DB, appointmentService)
	orderAPI := api.NewServiceOrderAPI(database.DB, orderService, reportService)
	catalogAPI := api.NewCatalogAPI(database.DB)
	unitAPI := api.NewUnitAPI(database.DB)
	dashboardAPI := api.NewDashboardAPI(reportService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	// Rotas básicas
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "success",
			"message":  "pong",
			"database": "connected",
		})
	})

	// Autenticação (com rate limit por IP)
	authLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Requests:     10,
		Window:       cfg.Security.RateLimitWindow,
		KeyGenerator: middleware.DefaultKeyGenerator,
	})
	r.POST("/api/auth/login", authLimit, authAPI.Login)

	// Rotas protegidas
	auth := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	apiGroup := r.Group("/api")
	apiGroup.Use(auth.RequireAuth())
	apiGroup.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Requests:     cfg.Security.RateLimitRequests,
		Window:       cfg.Security.RateLimitWindow,
		KeyGenerator: middleware.UserKeyGenerator,
	}))
	{
		apiGroup.GET("/auth/me", authAPI.Me)

		// Leads
		apiGroup.GET("/leads", leadAPI.GetLeads)
		apiGroup.POST("/leads", leadAPI.CreateLead)
		apiGroup.GET("/leads/:id", leadAPI.GetLead)
		apiGroup.PUT("/leads/:id", leadAPI.UpdateLead)
		apiGroup.DELETE("/leads/:id", leadAPI.DeleteLead)
		apiGroup.PUT("/leads/:id/move", leadAPI.MoveLead)
		apiGroup.GET("/leads/:id/history", leadAPI.GetLeadHistory)

		// Funil (colunas do kanban)
		apiGroup.GET("/pipeline/stages", pipelineAPI.GetStages)
		apiGroup.POST("/pipeline/stages", pipelineAPI.CreateStage)
		apiGroup.PUT("/pipeline/stages/:id", pipelineAPI.UpdateStage)
		apiGroup.DELETE("/pipeline/stages/:id", pipelineAPI.DeleteStage)
		apiGroup.PUT("/pipeline/reorder", pipelineAPI.ReorderStages)

		// Agendamentos
		apiGroup.GET("/appointments", appointmentAPI.GetAppointments)
		apiGroup.POST("/appointments", appointmentAPI.CreateAppointment)
		apiGroup.PUT("/appointments/:id", appointmentAPI.UpdateAppointment)
		apiGroup.DELETE("/appointments/:id", appointmentAPI.DeleteAppointment)
		apiGroup.PUT("/appointments/:id/attend", appointmentAPI.MarkAttended)

		// Ordens de serviço
		apiGroup.GET("/service-orders", orderAPI.GetServiceOrders)
		apiGroup.POST("/service-orders", orderAPI.CreateServiceOrder)
		apiGroup.GET("/service-orders/:id", orderAPI.GetServiceOrder)
		apiGroup.PUT("/service-orders/:id/status", orderAPI.UpdateServiceOrderStatus)
		apiGroup.DELETE("/service-orders/:id", orderAPI.DeleteServiceOrder)
		apiGroup.GET("/service-orders/:id/pdf", orderAPI.ExportPDF)

		// Catálogo de serviços
		apiGroup.GET("/services", catalogAPI.GetServices)
		apiGroup.POST("/services", catalogAPI.CreateService)
		apiGroup.PUT("/services/:id", catalogAPI.UpdateService)
		apiGroup.DELETE("/services/:id", catalogAPI.DeactivateService)
		apiGroup.PUT("/services/:id/activate", catalogAPI.ActivateService)

		// Unidades
		apiGroup.GET("/units", unitAPI.GetUnits)
		apiGroup.POST("/units", unitAPI.CreateUnit)
		apiGroup.PUT("/units/:id", unitAPI.UpdateUnit)
		apiGroup.DELETE("/units/:id", unitAPI.DeleteUnit)

		// Dashboard
		apiGroup.GET("/dashboard/stats", dashboardAPI.GetStats)
		apiGroup.GET("/dashboard/funnel", dashboardAPI.GetFunnel)
		apiGroup.GET("/dashboard/revenue", dashboardAPI.GetRevenue)

		// Relatórios exportáveis
		apiGroup.GET("/reports/service-orders/xlsx", orderAPI.ExportXLSX)
	}

	log.Printf("🚀 Servidor iniciado na porta %s", cfg.App.Port)
	r.Run(":" + cfg.App.Port)
}
