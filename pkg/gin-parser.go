package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ParseAndValidate(c *gin.Context, dto interface{}) error {
	if err := c.ShouldBindJSON(dto); err != nil {
		return err
	}
	return validate.Struct(dto)
}

// Validate runs the struct tags of v outside of a request, e.g. on websocket payloads.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// ParseUintParam reads a positive numeric path parameter.
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GetUserID returns the user id stored by the auth middleware.
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
