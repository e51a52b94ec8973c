package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/interview-scoring/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/interview-scoring/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	tokens        *jwt.Manager
	scoreHandler  *Score
	reportHandler *Report
	healthHandler *Health
	aiWebhook     *AIWebhookHandler
	swagger       bool
}

// RouterOptions are the handlers mounted by the router
type RouterOptions struct {
	Tokens  *jwt.Manager
	Score   *Score
	Report  *Report
	Health  *Health
	Webhook *AIWebhookHandler
	Swagger bool
}

// NewRouter creates a new router with all handlers
func NewRouter(opts RouterOptions) *Router {
	return &Router{
		tokens:        opts.Tokens,
		scoreHandler:  opts.Score,
		reportHandler: opts.Report,
		healthHandler: opts.Health,
		aiWebhook:     opts.Webhook,
		swagger:       opts.Swagger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	if rt.healthHandler != nil {
		e.GET("/health", rt.healthHandler.Check)
	}
	if rt.swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	// Webhooks authenticate with a shared secret, not a bearer token
	if rt.aiWebhook != nil {
		e.POST("/webhooks/assemblyai", rt.aiWebhook.HandleAssemblyAIWebhook)
	}

	// API v1 group
	v1 := e.Group("/v1", middleware.EchoAuth(rt.tokens))

	rt.setupScoreRoutes(v1)
	rt.setupReportRoutes(v1)
}

// setupScoreRoutes configures scoring and review routes
func (rt *Router) setupScoreRoutes(g *echo.Group) {
	if rt.scoreHandler == nil {
		return
	}
	interviews := g.Group("/interviews")

	interviews.POST("/:id/score", rt.scoreHandler.ScoreInterview,
		middleware.RequireRole(jwt.RoleRecruiter, jwt.RoleAdmin, jwt.RoleService))
	interviews.GET("/:id/score", rt.scoreHandler.GetScore)
	interviews.PUT("/:id/score/override", rt.scoreHandler.Override,
		middleware.RequireRole(jwt.RoleReviewer, jwt.RoleAdmin))
	interviews.DELETE("/:id/score/override", rt.scoreHandler.ClearOverride,
		middleware.RequireRole(jwt.RoleReviewer, jwt.RoleAdmin))
}

// setupReportRoutes configures report routes
func (rt *Router) setupReportRoutes(g *echo.Group) {
	if rt.reportHandler == nil {
		return
	}
	interviews := g.Group("/interviews")

	interviews.GET("/:id/report", rt.reportHandler.GetReport)
	interviews.POST("/:id/report/publish", rt.reportHandler.PublishReport,
		middleware.RequireRole(jwt.RoleRecruiter, jwt.RoleAdmin, jwt.RoleService))
}
