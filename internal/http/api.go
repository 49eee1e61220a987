package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/service"
)

// Authenticator resolves the caller behind an Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.AuthenticatedUser, error)
}

// Services groups the collaborators the handlers delegate to.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Surveys   service.SurveyService
	Analytics service.AnalyticsService
	Lottery   service.LotteryService
}

// RouteOptions controls where and for whom routes are served.
type RouteOptions struct {
	APIPrefix      string
	AllowedOrigins []string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth      service.AuthService
	users     service.UserService
	surveys   service.SurveyService
	analytics service.AnalyticsService
	lottery   service.LotteryService
	gate      Authenticator
	logger    logrus.FieldLogger
}

func NewHandler(services Services, gate Authenticator, logger logrus.FieldLogger) *Handler {
	useJSONFieldNames()
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Handler{
		auth:      services.Auth,
		users:     services.Users,
		surveys:   services.Surveys,
		analytics: services.Analytics,
		lottery:   services.Lottery,
		gate:      gate,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, opts RouteOptions) {
	router.Use(requestLogger(h.logger), corsMiddleware(opts.AllowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Questionnaire Platform API is running"})
	})

	api := router.Group(strings.TrimSuffix(opts.APIPrefix, "/"))
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)

		users := api.Group("/users", h.requireUser)
		users.GET("/profile", h.getProfile)
		users.GET("/transactions", h.listTransactions)

		surveys := api.Group("/surveys")
		surveys.GET("/", h.listSurveys)
		surveys.POST("/", h.requireUser, h.createSurvey)
		surveys.GET("/categories", h.listCategories)
		surveys.GET("/:survey_id", h.getSurvey)
		surveys.POST("/:survey_id/responses", h.requireUser, h.submitResponse)

		analytics := api.Group("/analytics", h.requireUser)
		analytics.GET("/dashboard", h.dashboard)
		analytics.GET("/survey/:survey_id/visualization", h.surveyVisualization)
		analytics.POST("/survey/:survey_id/export", h.exportResponses)
		analytics.GET("/survey/:survey_id/exports", h.listExports)

		lottery := api.Group("/lottery")
		lottery.GET("/events", h.listLotteryEvents)
		lottery.POST("/events/:event_id/enter", h.requireUser, h.enterLottery)
	}
}
