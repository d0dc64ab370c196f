package endpoints

import (
	"errors"
	"net/http"

	"flowcore"
	"flowcore/internal/api/handler/middleware"
	"flowcore/internal/api/handler/request"
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/service"
	"flowcore/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type authHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
	config      flowcore.AppConfig
}

func newAuthHandler() *authHandler {
	return &authHandler{
		userService: service.NewUserService(),
		logger:      flowcore.Logger,
		config:      flowcore.GetConfig(),
	}
}

func AuthHandler(router *graceful.Graceful) {
	h := newAuthHandler()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refreshToken)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(h.config))
	{
		protected.GET("/me", h.getMe)
		protected.POST("/auth/logout", h.logout)
	}
}

func (slf *authHandler) register(c *gin.Context) {
	var registerDTO request.RegisterDTO
	if err := pkg.ParseAndValidate(c, &registerDTO); err != nil {
		slf.logger.Debug().Err(err).Msg("Error parsing and validating register DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.userService.Register(registerDTO)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
			return
		}
		slf.logger.Error().Err(err).Msg("Error registering user")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, authResponse)
}

func (slf *authHandler) login(c *gin.Context) {
	var loginDTO request.LoginDTO
	if err := pkg.ParseAndValidate(c, &loginDTO); err != nil {
		slf.logger.Debug().Err(err).Msg("Error parsing and validating login DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.userService.Login(loginDTO)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountInactive):
			c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		default:
			slf.logger.Error().Err(err).Msg("Error logging in user")
			c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to log in"})
		}
		return
	}

	c.JSON(http.StatusOK, authResponse)
}

func (slf *authHandler) getMe(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.APIError{Message: "User not authenticated"})
		return
	}

	user, err := slf.userService.GetByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
			return
		}
		slf.logger.Error().Err(err).Uint("userId", userID).Msg("Error getting user")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to get user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (slf *authHandler) refreshToken(c *gin.Context) {
	var refreshDTO request.RefreshTokenDTO
	if err := pkg.ParseAndValidate(c, &refreshDTO); err != nil {
		slf.logger.Debug().Err(err).Msg("Error parsing and validating refresh token DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.userService.RefreshToken(refreshDTO.RefreshToken)
	if err != nil {
		slf.logger.Debug().Err(err).Msg("Error refreshing token")
		c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, authResponse)
}

func (slf *authHandler) logout(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.APIError{Message: "User not authenticated"})
		return
	}
	if err := slf.userService.Logout(userID); err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to log out"})
		return
	}
	c.Status(http.StatusNoContent)
}
