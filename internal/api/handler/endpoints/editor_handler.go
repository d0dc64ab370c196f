package endpoints

import (
	"net/http"

	"flowcore"
	"flowcore/internal/api/handler/middleware"
	"flowcore/internal/editor"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

type editorHandler struct {
	config flowcore.AppConfig
}

// EditorHandler serves the static data a canvas client needs before it connects.
func EditorHandler(router *graceful.Graceful) {
	h := &editorHandler{config: flowcore.GetConfig()}

	routes := router.Group("/api/v1/editor")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("/templates", h.getTemplates)
		routes.GET("/layout", h.getLayout)
	}
}

func (slf *editorHandler) getTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, editor.Templates())
}

func (slf *editorHandler) getLayout(c *gin.Context) {
	c.JSON(http.StatusOK, slf.config.EditorLayout())
}
