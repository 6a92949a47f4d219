package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/schoolconnect/portal-api/api/swagger"
	"github.com/schoolconnect/portal-api/internal/handler"
	"github.com/schoolconnect/portal-api/internal/middleware"
	"github.com/schoolconnect/portal-api/internal/policy"
	"github.com/schoolconnect/portal-api/internal/relationship"
	"github.com/schoolconnect/portal-api/internal/repository"
	"github.com/schoolconnect/portal-api/internal/service"
	"github.com/schoolconnect/portal-api/pkg/cache"
	"github.com/schoolconnect/portal-api/pkg/config"
	"github.com/schoolconnect/portal-api/pkg/database"
	"github.com/schoolconnect/portal-api/pkg/export"
	"github.com/schoolconnect/portal-api/pkg/logger"
	corsmiddleware "github.com/schoolconnect/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolconnect/portal-api/pkg/middleware/requestid"
)

// @title SchoolConnect Portal API
// @version 1.0.0
// @description Role-based school communication portal
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: without it the read paths simply skip the cache.
	var cacheRepo *repository.CacheRepository
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
	}

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db).WithMetrics(metricsSvc)
	classroomRepo := repository.NewClassroomRepository(db)
	assignmentRepo := repository.NewTeachingAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db).WithMetrics(metricsSvc)
	messageRepo := repository.NewMessageRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	reportRepo := repository.NewReportRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	supportRepo := repository.NewSupportRequestRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	resolver := relationship.NewResolver(classroomRepo, assignmentRepo, studentRepo, userRepo)
	engine := policy.NewEngine(resolver, studentRepo, invoiceRepo)

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()

	authSvc := service.NewAuthService(userRepo, auditRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	contactSvc := service.NewContactService(engine, resolver, messageRepo, nil, logr)
	classSvc := service.NewClassService(engine, resolver, classroomRepo, studentRepo, logr)
	studentSvc := service.NewStudentService(engine, studentRepo, classroomRepo, auditRepo, nil, logr)
	reportSvc := service.NewReportService(engine, reportRepo, auditRepo, nil, logr)
	invoiceSvc := service.NewInvoiceService(engine, invoiceRepo, studentRepo, pdfExporter, auditRepo, logr)
	announcementSvc := service.NewAnnouncementService(engine, announcementRepo, cacheRepo, metricsSvc, auditRepo, nil, logr, cfg.Cache.AnnouncementsTTL)
	supportSvc := service.NewSupportService(engine, supportRepo, auditRepo, nil, logr)
	adminSvc := service.NewAdminService(engine, userRepo, studentRepo, supportRepo, cacheRepo, csvExporter, logr, cfg.Cache.AdminStatsTTL)
	timetableSvc := service.NewTimetableService(engine, resolver, timetableRepo, studentRepo, classroomRepo, logr)
	userSvc := service.NewUserService(engine, userRepo, logr)

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		User:         handler.NewUserHandler(userSvc),
		Contact:      handler.NewContactHandler(contactSvc),
		Class:        handler.NewClassHandler(classSvc, studentSvc),
		Student:      handler.NewStudentHandler(studentSvc),
		Report:       handler.NewReportHandler(reportSvc),
		Invoice:      handler.NewInvoiceHandler(invoiceSvc),
		Announcement: handler.NewAnnouncementHandler(announcementSvc),
		Support:      handler.NewSupportHandler(supportSvc),
		Admin:        handler.NewAdminHandler(adminSvc),
		Timetable:    handler.NewTimetableHandler(timetableSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
