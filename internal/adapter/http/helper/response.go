package helper

import (
	"net/http"

	. "todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

// SendSuccess writes {success: true, data, message}.
func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}

	if len(message) > 0 && message[0] != "" {
		body["message"] = message[0]
	}

	c.JSON(statusCode, body)
}

// SendUser writes the auth service shape {success, user, message}.
func SendUser(c *gin.Context, user domain.User, message string) {
	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: message,
		User:    &user,
	})
}

func SendSessionStatus(c *gin.Context, user *domain.User) {
	loggedIn := user != nil

	c.JSON(http.StatusOK, response.Envelope{
		Success:    true,
		IsLoggedIn: &loggedIn,
		User:       user,
	})
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.Envelope{
		Success: true,
		Message: message,
	})
}

func SendError(c *gin.Context, statusCode int, message string, errors []response.ValidationError) {
	c.JSON(statusCode, response.ErrorEnvelope{
		Success: false,
		Message: message,
		Errors:  errors,
	})
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)

	message := "Validation failed"
	if len(validationErrors) > 0 {
		message = validationErrors[0].Message
	}

	SendError(c, http.StatusBadRequest, message, validationErrors)
}

func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message, nil)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	SendError(c, http.StatusUnauthorized, message, nil)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, message, errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message, nil)
}
