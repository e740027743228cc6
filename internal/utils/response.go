package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with. User is the
// sanitized view: secret fields carry `json:"-"` on the model and never
// serialize.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    interface{} `json:"user,omitempty"`
}

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func RespondError(c *gin.Context, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: "internal server error",
		})
		return
	}

	c.JSON(appErr.Status, Response{Success: false, Message: appErr.Message})
}

func RespondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

func RespondOK(c *gin.Context, message string, user interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, User: user})
}

func RespondCreated(c *gin.Context, message string, user interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, User: user})
}
