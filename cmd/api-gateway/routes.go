package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/career-readiness-api/internal/handler"
	"github.com/noah-isme/career-readiness-api/internal/middleware"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/service"
	"github.com/noah-isme/career-readiness-api/pkg/config"
	"github.com/noah-isme/career-readiness-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/career-readiness-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/career-readiness-api/pkg/middleware/requestid"
)

type routeDeps struct {
	auth        *service.AuthService
	metrics     *service.MetricsService
	authH       *handler.AuthHandler
	studentH    *handler.StudentHandler
	jobH        *handler.JobHandler
	leaderboard *handler.LeaderboardHandler
	metricsH    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(d.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.metricsH.Health)
	r.GET("/ready", d.metricsH.Ready)
	r.GET("/metrics", d.metricsH.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := string(models.RoleAdmin)
	recruiter := string(models.RoleRecruiter)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", d.authH.Login)
	api.POST("/students", d.studentH.Register)
	api.GET("/leaderboard", d.leaderboard.Top)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.auth))
	secured.GET("/auth/me", d.authH.Me)
	secured.GET("/leaderboard/export", middleware.RBAC(admin, recruiter), d.leaderboard.Export)

	students := secured.Group("/students")
	students.GET("", middleware.RBAC(admin, recruiter), d.studentH.List)
	students.GET("/:id", middleware.RBAC(middleware.Self, admin, recruiter), d.studentH.Get)
	students.GET("/:id/readiness", middleware.RBAC(middleware.Self, admin, recruiter), d.studentH.Readiness)
	students.GET("/:id/history", middleware.RBAC(middleware.Self, admin, recruiter), d.studentH.History)

	self := students.Group("/:id", middleware.RBAC(middleware.Self))
	self.PUT("/profile", d.studentH.UpdateProfile)
	self.PUT("/streak", d.studentH.UpdateStreak)
	self.POST("/projects", d.studentH.AddProject)
	self.POST("/certifications", d.studentH.AddCertification)
	self.POST("/events", d.studentH.AddEvent)
	self.POST("/coding-logs", d.studentH.LogCoding)
	self.POST("/interviews", d.studentH.CompleteInterview)
	self.POST("/sync/github", d.studentH.SyncGitHub)
	self.POST("/sync/leetcode", d.studentH.SyncLeetCode)
	self.DELETE("/:collection/:itemId", d.studentH.RemoveItem)

	adminGroup := secured.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	adminGroup.POST("/verifications/:studentId/:collection/:itemId", d.studentH.VerifyItem)
	adminGroup.GET("/metrics", d.metricsH.Summary)

	jobsGroup := secured.Group("/jobs", middleware.RBAC(admin, recruiter))
	jobsGroup.POST("", d.jobH.Create)
	jobsGroup.GET("", d.jobH.List)
	jobsGroup.GET("/:id", d.jobH.Get)
	jobsGroup.PUT("/:id", d.jobH.Update)
	jobsGroup.POST("/:id/match", d.jobH.RunMatching)
	jobsGroup.GET("/:id/matches", d.jobH.Matches)
	jobsGroup.GET("/:id/matches/export", d.jobH.ExportMatches)
	secured.GET("/jobs/:id/match/:studentId",
		middleware.RBACParam("studentId", middleware.Self, admin, recruiter), d.jobH.MatchOne)

	return r
}
