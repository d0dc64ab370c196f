package endpoints

import (
	"errors"
	"net/http"

	"flowcore"
	"flowcore/internal/api/handler/mapper"
	"flowcore/internal/api/handler/middleware"
	"flowcore/internal/api/handler/request"
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/models"
	"flowcore/internal/api/service"
	"flowcore/internal/api/websocket"
	"flowcore/internal/editor"
	"flowcore/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type endpointHandler struct {
	endpointService *service.EndpointService
	editorService   *service.EditorService
	hub             *websocket.Hub
	endpointMapper  mapper.EndpointMapper
	config          flowcore.AppConfig
	logger          zerolog.Logger
}

func newEndpointHandler(editorService *service.EditorService, hub *websocket.Hub) *endpointHandler {
	return &endpointHandler{
		endpointService: service.NewEndpointService(),
		editorService:   editorService,
		hub:             hub,
		config:          flowcore.GetConfig(),
		logger:          flowcore.Logger,
	}
}

func EndpointHandler(router *graceful.Graceful, editorService *service.EditorService, hub *websocket.Hub) {
	h := newEndpointHandler(editorService, hub)
	canEdit := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)

	routes := router.Group("/api/v1/endpoints")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.getAll)
		routes.GET("/:id", h.getByID)
		routes.POST("", canEdit, h.create)
		routes.PUT("/:id", canEdit, h.update)
		routes.DELETE("/:id", canEdit, h.delete)

		routes.GET("/:id/flow", h.getFlow)
		routes.PUT("/:id/flow", canEdit, h.saveFlow)
		routes.POST("/:id/flow/validate", h.validateFlow)
		routes.GET("/:id/users", h.getActiveUsers)
	}
}

// fail maps service errors to HTTP statuses.
func (slf *endpointHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrEndpointNotFound):
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
	case errors.Is(err, service.ErrRouteTaken):
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
	default:
		slf.logger.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, response.APIError{Message: msg})
	}
}

func (slf *endpointHandler) endpointID(c *gin.Context) (uint, bool) {
	id, err := pkg.ParseUintParam(c, "id")
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid endpoint ID"})
		return 0, false
	}
	return id, true
}

func (slf *endpointHandler) getAll(c *gin.Context) {
	endpoints, err := slf.endpointService.FindAll()
	if err != nil {
		slf.fail(c, err, "Failed to list endpoints")
		return
	}
	c.JSON(http.StatusOK, response.NewList(slf.endpointMapper.EntitiesToResponse(endpoints)))
}

func (slf *endpointHandler) getByID(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}
	endpoint, err := slf.endpointService.FindByID(id)
	if err != nil {
		slf.fail(c, err, "Failed to get endpoint")
		return
	}
	c.JSON(http.StatusOK, slf.endpointMapper.EntityToDetail(*endpoint))
}

func (slf *endpointHandler) create(c *gin.Context) {
	var dto request.CreateEndpointDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}
	userID, _ := pkg.GetUserID(c)

	endpoint, err := slf.endpointService.Create(dto, userID)
	if err != nil {
		slf.fail(c, err, "Failed to create endpoint")
		return
	}
	c.JSON(http.StatusCreated, slf.endpointMapper.EntityToDetail(*endpoint))
}

func (slf *endpointHandler) update(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}
	var dto request.UpdateEndpointDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	endpoint, err := slf.endpointService.Update(id, dto)
	if err != nil {
		slf.fail(c, err, "Failed to update endpoint")
		return
	}
	c.JSON(http.StatusOK, slf.endpointMapper.EntityToResponse(*endpoint))
}

func (slf *endpointHandler) delete(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}
	if err := slf.endpointService.Delete(id); err != nil {
		slf.fail(c, err, "Failed to delete endpoint")
		return
	}
	slf.editorService.Discard(id)
	c.Status(http.StatusNoContent)
}

// getFlow prefers the live session document, which may be ahead of the database.
func (slf *endpointHandler) getFlow(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}

	var (
		flow  models.Flow
		draft bool
	)
	if s, open := slf.editorService.Session(id); open {
		flow, draft = s.Snapshot()
	} else {
		var err error
		if flow, err = slf.endpointService.LoadFlow(id); err != nil {
			slf.fail(c, err, "Failed to get flow")
			return
		}
	}

	c.JSON(http.StatusOK, response.FlowResponseDTO{
		EndpointID: id,
		Flow:       flow,
		Report:     editor.Audit(flow),
		Draft:      draft,
	})
}

func (slf *endpointHandler) saveFlow(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}
	var dto request.SaveFlowDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	saved, err := slf.editorService.SaveFlow(id, dto.Flow)
	if err != nil {
		slf.fail(c, err, "Failed to save flow")
		return
	}

	if saved.Live {
		userID, _ := pkg.GetUserID(c)
		slf.hub.Broadcast <- websocket.NewFlowChangedMessage(id, userID, c.GetString("username"), saved.Revision, dto.Flow)
	}

	c.JSON(http.StatusOK, response.FlowResponseDTO{EndpointID: id, Flow: dto.Flow, Report: saved.Report})
}

// validateFlow audits the posted document without storing it.
func (slf *endpointHandler) validateFlow(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}
	var dto request.SaveFlowDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.FlowResponseDTO{EndpointID: id, Flow: dto.Flow, Report: editor.Audit(dto.Flow)})
}

func (slf *endpointHandler) getActiveUsers(c *gin.Context) {
	id, ok := slf.endpointID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"endpointId": id,
		"users":      slf.hub.GetActiveUsersInRoom(id),
	})
}
