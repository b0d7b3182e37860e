package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"civicreports/internal/engine"
	"civicreports/internal/handler"
	"civicreports/internal/middleware"
	"civicreports/internal/service"
)

type Server struct {
	router      *gin.Engine
	engine      *engine.Engine
	authService service.AuthService
	jwtSecret   []byte
	log         *logrus.Logger
	zlog        *zap.Logger
}

func NewServer(eng *engine.Engine, authService service.AuthService, jwtSecret []byte, log *logrus.Logger, zlog *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router:      router,
		engine:      eng,
		authService: authService,
		jwtSecret:   jwtSecret,
		log:         log,
		zlog:        zlog,
	}

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	voteHandler := handler.NewVoteHandler(s.engine, s.zlog)
	reportHandler := handler.NewReportHandler(s.engine, s.zlog)
	moderationHandler := handler.NewModerationHandler(s.engine, s.zlog)
	metricsHandler := handler.NewMetricsHandler(s.engine, s.zlog)
	authHandler := handler.NewAuthHandler(s.authService, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Community routes: no session needed, voters are pseudonymized
	api := s.router.Group("/api")
	{
		api.POST("/reports/:id/votes", voteHandler.SubmitVote)
		api.GET("/reports/:id/validation", reportHandler.GetValidationState)
		api.GET("/reports/:id/history", reportHandler.GetHistory)
		api.GET("/reports/:id/duplicates", reportHandler.GetDuplicates)
		api.GET("/metrics", metricsHandler.GetMetrics)
	}

	// Privileged routes: active moderator JWT required
	moderation := s.router.Group("/api")
	moderation.Use(middleware.AuthMiddleware(s.jwtSecret, s.zlog))
	{
		moderation.PUT("/reports/:id/status", moderationHandler.SetStatus)
		moderation.POST("/moderators", moderationHandler.AddModerator)
		moderation.GET("/moderators", moderationHandler.ListModerators)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
