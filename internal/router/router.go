package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/config"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/controllers"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/middleware"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Policies of the authenticated routes
var (
	bearerPolicy = auth.Policy{RequireBearer: true}
	secretPolicy = auth.Policy{RequireSecret: true}
)

// New builds the HTTP router with every route of the API wired to db
func New(cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*gin.Engine, error) {
	tokens := auth.NewGormTokenStore(db, auth.WithTTL(cfg.AccessTokenTTL, cfg.GrantTTL))
	resolver := auth.NewResolver(tokens, auth.NewGormConsumerStore(db))

	bearer, err := middleware.Authenticate(resolver, bearerPolicy)
	if err != nil {
		return nil, err
	}
	secret, err := middleware.Authenticate(resolver, secretPolicy)
	if err != nil {
		return nil, err
	}

	userService := services.NewUserService(db)
	userController := controllers.NewUserController(userService)
	consumerController := controllers.NewConsumerController(services.NewConsumerService(db))
	authController := controllers.NewAuthController(tokens)
	phrasebookController := controllers.NewPhrasebookController(services.NewPhrasebookService(db))
	phraseController := controllers.NewPhraseController(services.NewPhraseService(db))
	langController := controllers.NewLangController(services.NewLangService(db))

	middleware.SetLogger(log)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.NewAPIError("Not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.NewAPIError(fmt.Sprintf("Method %s not supported", c.Request.Method)))
	})

	router.GET("/health", healthCheckHandler)

	// Users register publicly and manage themselves with a bearer token
	router.POST("/users", userController.CreateUser)
	users := router.Group("/users", bearer)
	{
		users.GET("", middleware.Identified(userController.GetUser))
		users.PUT("", middleware.Identified(userController.UpdateUser))
		users.DELETE("", middleware.Identified(userController.DeleteUser))
	}

	consumers := router.Group("/consumers", middleware.BasicAuth(userService, auth.AuthorizationHeader))
	{
		consumers.GET("", middleware.Identified(consumerController.GetConsumers))
		consumers.POST("", middleware.Identified(consumerController.CreateConsumer))
		consumers.GET("/:id", middleware.Identified(consumerController.GetConsumer))
		consumers.DELETE("/:id", middleware.Identified(consumerController.DeleteConsumer))
	}

	// The consumer secret takes Authorization, so the user signs in on a second header
	router.GET("/auth",
		middleware.BasicAuth(userService, middleware.UserHeader),
		secret,
		middleware.Identified(authController.IssueToken))
	router.PUT("/auth", authController.RefreshToken)
	router.DELETE("/auth", authController.RevokeToken)

	phrasebooks := router.Group("/phrasebooks", bearer)
	{
		phrasebooks.GET("", middleware.Identified(phrasebookController.GetAllPhrasebooks))
		phrasebooks.POST("", middleware.Identified(phrasebookController.CreatePhrasebook))
		phrasebooks.GET("/:id", middleware.Identified(phrasebookController.GetPhrasebookByID))
		phrasebooks.PUT("/:id", middleware.Identified(phrasebookController.UpdatePhrasebook))
		phrasebooks.DELETE("/:id", middleware.Identified(phrasebookController.DeletePhrasebook))
		phrasebooks.GET("/:id/phrases", middleware.Identified(phrasebookController.GetPhrasebookPhrases))
	}

	router.GET("/phrases/:id", phraseController.GetPhrase)
	router.POST("/phrases/:id", bearer, middleware.Identified(phraseController.CreatePhrase))
	router.POST("/phrases/:id/:phrase_id", bearer, middleware.Identified(phraseController.CopyPhrase))
	router.PUT("/phrases/:id/:phrase_id", bearer, middleware.Identified(phraseController.UpdatePhrase))
	router.DELETE("/phrases/:id/:phrase_id", bearer, middleware.Identified(phraseController.DeletePhrase))

	router.GET("/langs", langController.GetLangs)

	if cfg.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return router, nil
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-phrasebook-api",
	})
}
