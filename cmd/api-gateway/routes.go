package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/kaizen-portal-api/internal/handler"
	"github.com/noah-isme/kaizen-portal-api/internal/middleware"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	"github.com/noah-isme/kaizen-portal-api/pkg/config"
	"github.com/noah-isme/kaizen-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/kaizen-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/kaizen-portal-api/pkg/middleware/requestid"
)

func newRouter(app *application) *gin.Engine {
	cfg := app.cfg

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(app.logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.checks)
	catalogHandler := handler.NewCatalogHandler(app.catalog)
	submissionHandler := handler.NewSubmissionHandler(app.submissions, app.exports, cfg.Images.MaxBytes)
	dashboardHandler := handler.NewDashboardHandler(app.dashboard)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.GET("/catalog/departments", catalogHandler.Departments)
	api.GET("/catalog/plants", catalogHandler.Plants)
	api.GET("/approval-policy", catalogHandler.ApprovalPolicy)
	api.POST("/submissions", submissionHandler.Create)
	api.POST("/submissions/:id/image", submissionHandler.UploadImage)

	admin := api.Group("")
	admin.Use(middleware.JWT(app.auth), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleDepartmentAdmin))
	admin.GET("/submissions", submissionHandler.List)
	admin.GET("/submissions/:id", submissionHandler.Get)
	admin.PUT("/submissions/:id", middleware.Audit(app.logger, "update", "submission"), submissionHandler.Update)
	admin.POST("/submissions/:id/decision", middleware.Audit(app.logger, "decide", "submission"), submissionHandler.Decide)
	admin.GET("/submissions/:id/print", submissionHandler.Print)
	admin.GET("/dashboard", dashboardHandler.Dashboard)

	system := admin.Group("/admin/system")
	system.Use(middleware.RequireRoles(models.RoleSuperAdmin))
	system.GET("/metrics", metricsHandler.Snapshot)

	if app.reports != nil {
		reportHandler := handler.NewReportHandler(app.reports)
		api.GET("/export/:token", reportHandler.Download)
		admin.POST("/reports", middleware.Audit(app.logger, "create", "report"), reportHandler.Create)
		admin.GET("/reports/:id", reportHandler.Status)
	}

	return r
}
