package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck обработчик проверки работоспособности сервиса
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "METRIX API is running",
	})
}
