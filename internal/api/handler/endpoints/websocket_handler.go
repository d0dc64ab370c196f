package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"flowcore"
	"flowcore/internal/api/handler/middleware"
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/models"
	"flowcore/internal/api/service"
	"flowcore/internal/api/websocket"
	"flowcore/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type websocketHandler struct {
	hub           *websocket.Hub
	processor     *websocket.MessageProcessor
	editorService *service.EditorService
	logger        zerolog.Logger
	config        flowcore.AppConfig
}

func newWebSocketHandler(hub *websocket.Hub, processor *websocket.MessageProcessor, editorService *service.EditorService) *websocketHandler {
	return &websocketHandler{
		hub:           hub,
		processor:     processor,
		editorService: editorService,
		logger:        flowcore.Logger,
		config:        flowcore.GetConfig(),
	}
}

// WebSocketHandler sets up WebSocket routes
func WebSocketHandler(router *graceful.Graceful, hub *websocket.Hub, processor *websocket.MessageProcessor, editorService *service.EditorService) {
	h := newWebSocketHandler(hub, processor, editorService)

	wsRoutes := router.Group("/api/v1/ws")
	wsRoutes.Use(middleware.AuthMiddleware(h.config))
	{
		wsRoutes.GET("/endpoints/:id", h.handleWebSocket)
		wsRoutes.GET("/stats", h.getStats)
	}
}

// handleWebSocket joins the caller to the editing session of one endpoint
func (slf *websocketHandler) handleWebSocket(c *gin.Context) {
	endpointID, err := pkg.ParseUintParam(c, "id")
	if err != nil || endpointID == 0 {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid endpoint ID"})
		return
	}

	userID, _ := pkg.GetUserID(c)
	username := c.GetString("username")
	if username == "" {
		username = fmt.Sprintf("User%d", userID)
	}
	role := models.AppRole(c.GetString("userRole"))
	canEdit := models.User{Role: role}.CanEdit()

	clientID := uuid.New().String()
	client := &websocket.Client{ID: clientID, EndpointID: endpointID}
	if err := slf.processor.Join(client); err != nil {
		if errors.Is(err, service.ErrEndpointNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
			return
		}
		slf.logger.Error().Err(err).Uint("endpointId", endpointID).Msg("Failed to open editor session")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to open editor session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slf.processor.Leave(client)
		slf.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	client = websocket.NewClient(
		clientID,
		userID,
		username,
		endpointID,
		canEdit,
		slf.hub,
		conn,
		slf.processor,
		slf.logger,
	)
	slf.hub.Register <- client

	slf.logger.Info().
		Str("clientId", clientID).
		Uint("userId", userID).
		Uint("endpointId", endpointID).
		Bool("canEdit", canEdit).
		Msg("WebSocket connection established")

	go client.WritePump()
	go client.ReadPump()
}

// getStats returns room and session statistics
func (slf *websocketHandler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms":    slf.hub.GetRoomStats(),
		"sessions": slf.editorService.Stats(),
	})
}
