package handlers

import (
	"door_controller/internal/logger"
	"door_controller/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the portal HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the Gin router with all portal routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	// Provisioning form target; deliberately unauthenticated, it is the
	// surface that creates the admin credential in the first place.
	router.POST("/provision", h.provision)

	router.POST("/auth/sign-in", h.signIn)

	h.registerAPIRoutes(router)

	// Live status push (HTTP upgrade) on the same port.
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.adminMiddleware)
	{
		api.POST("/door/open", h.openDoor)
		api.POST("/light/on", h.lightOn)
		api.GET("/status", h.getStatus)
		api.GET("/log", h.getLog)
	}
}
