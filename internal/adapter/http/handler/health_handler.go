package handler

import (
	"net/http"

	"todoclient/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.HealthResponse{
			Success: true,
			Status:  "ok",
			Service: service,
		})
	}
}
