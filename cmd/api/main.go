package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/SouravGRoy/pcl-portal-api/api/swagger"
	"github.com/SouravGRoy/pcl-portal-api/internal/handler"
	"github.com/SouravGRoy/pcl-portal-api/internal/middleware"
	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	"github.com/SouravGRoy/pcl-portal-api/internal/repository"
	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	"github.com/SouravGRoy/pcl-portal-api/pkg/cache"
	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
	"github.com/SouravGRoy/pcl-portal-api/pkg/database"
	"github.com/SouravGRoy/pcl-portal-api/pkg/logger"
	corsmiddleware "github.com/SouravGRoy/pcl-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/SouravGRoy/pcl-portal-api/pkg/middleware/requestid"
)

// @title PCL Portal API
// @version 1.0.0
// @description QR attendance check-in and grade aggregation for the campus portal
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

	metricsService := service.NewMetricsService()

	// A missing redis degrades session-token caching, not the API.
	var cacheService *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, session cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Attendance.SessionCacheTTL, logr, true)
	}

	sessionRepo := repository.NewSessionRepository(db)
	recordRepo := repository.NewAttendanceRecordRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "pcl-portal-api",
	})

	var eligibility service.EligibilityPolicy = service.AllowAllPolicy{}
	if cfg.Attendance.DuplicatePolicy == "reject" {
		eligibility = service.NewNoDuplicatePolicy(recordRepo)
	}
	checkInService := service.NewCheckInService(sessionRepo, recordRepo, eligibility, cacheService, metricsService, nil, logr, cfg.Attendance)
	sessionService := service.NewSessionService(sessionRepo, recordRepo, groupRepo, cacheService, metricsService, nil, logr, cfg.Attendance, cfg.BaseURL)
	gradeService := service.NewGradeService(gradeRepo, gradeRepo, groupRepo, logr)
	groupService := service.NewGroupService(groupRepo, logr)
	announcementService := service.NewAnnouncementService(announcementRepo, nil, logr)

	authHandler := handler.NewAuthHandler(authService)
	checkInHandler := handler.NewCheckInHandler(checkInService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	reportHandler := handler.NewReportHandler(sessionService)
	gradeHandler := handler.NewGradeHandler(gradeService)
	groupHandler := handler.NewGroupHandler(groupService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	attendance := api.Group("/attendance")
	{
		attendance.GET("/scan", checkInHandler.ScanPreview)
		attendance.POST("/check-in",
			middleware.JWT(authService),
			middleware.RequireRoles(models.RoleStudent),
			checkInHandler.CheckIn,
		)
	}

	sessions := api.Group("/sessions", middleware.JWT(authService))
	{
		sessions.POST("", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("/:id/close", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), sessionHandler.Close)
		sessions.GET("/:id/qr", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), sessionHandler.QRImage)
		sessions.GET("/:id/report", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), reportHandler.SessionReport)
		sessions.GET("/:id/report/export", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), reportHandler.ExportSessionReport)
	}

	groups := api.Group("/groups", middleware.JWT(authService))
	{
		groups.GET("/:groupID", groupHandler.Get)
		groups.GET("/:groupID/members", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), groupHandler.Roster)
		groups.GET("/:groupID/sessions", sessionHandler.ListByGroup)
		groups.GET("/:groupID/grades", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), gradeHandler.GroupGrades)
		groups.GET("/:groupID/grades/:studentID", middleware.RBAC("FACULTY", "ADMIN", "SELF"), gradeHandler.StudentGrades)
	}

	students := api.Group("/students", middleware.JWT(authService))
	{
		students.GET("/:studentID/attendance", middleware.RBAC("FACULTY", "ADMIN", "SELF"), reportHandler.StudentHistory)
	}

	announcements := api.Group("/announcements", middleware.JWT(authService))
	{
		announcements.GET("", announcementHandler.List)
		announcements.GET("/:id", announcementHandler.Get)
		announcements.POST("", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), announcementHandler.Create)
		announcements.PUT("/:id", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), announcementHandler.Update)
		announcements.DELETE("/:id", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), announcementHandler.Delete)
	}

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
