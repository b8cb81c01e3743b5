package api

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yizeng/gab/gin/gorm/secret-santa/docs"
	v1 "github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/config"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

// NewServer wires the services over the given storage backend and starts
// the notice feed.
func NewServer(conf *config.AppConfig, events repository.EventDAO, assignments repository.AssignmentDAO) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	drawSvc, err := service.NewDrawService(repository.NewAssignmentRepository(assignments))
	if err != nil {
		return nil, fmt.Errorf("service.NewDrawService -> %w", err)
	}
	eventSvc := service.NewEventService(repository.NewEventRepository(events), drawSvc)

	feedHandler := v1.NewFeedHandler(s.checkOrigin)
	go feedHandler.Run()

	eventHandler := v1.NewEventHandler(eventSvc, feedHandler)
	drawHandler := v1.NewDrawHandler(eventSvc, drawSvc, feedHandler)
	s.MountHandlers(eventHandler, drawHandler, feedHandler)

	return s, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(eventHandler *v1.EventHandler, drawHandler *v1.DrawHandler, feedHandler *v1.FeedHandler) {
	const basePath = "/api/v1"

	auth := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	participants := s.Router.Group(basePath, auth.VerifyJWT())
	{
		participants.GET("/events", eventHandler.HandleListEvents)
		participants.GET("/events/:name", eventHandler.HandleGetEvent)
		participants.POST("/events/:name/participants", eventHandler.HandleRegister)
		participants.GET("/events/:name/assignments/me", drawHandler.HandleGetMyAssignment)
		participants.GET("/events/:name/feed", feedHandler.HandleFeed)
	}

	admins := s.Router.Group(basePath, auth.VerifyJWT(), middleware.RequireAdmin())
	{
		admins.POST("/events", eventHandler.HandleCreateEvent)
		admins.PUT("/events/:name", eventHandler.HandleUpdateEvent)
		admins.DELETE("/events/:name", eventHandler.HandleDeleteEvent)
		admins.DELETE("/events/:name/participants/:participant", eventHandler.HandleUnregister)
		admins.POST("/events/:name/draw", drawHandler.HandleDraw)
		admins.POST("/events/:name/redraw", drawHandler.HandleRedraw)
		admins.GET("/events/:name/assignments", drawHandler.HandleGetAssignments)
		admins.DELETE("/events/:name/assignments", drawHandler.HandleDeleteAssignments)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Secret Santa API"
	docs.SwaggerInfo.Description = "Gift exchange events, rosters and draws."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// checkOrigin mirrors the CORS policy for websocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.Config.API.AllowedCORSDomains
	if len(allowed) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(allowed, origin)
}
