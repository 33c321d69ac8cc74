package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metrix-hardline/subscription-service/internal/api/rest/handlers"
	"github.com/metrix-hardline/subscription-service/internal/api/rest/middleware"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// RouterConfig зависимости маршрутизатора
type RouterConfig struct {
	Webhook  *handlers.WebhookHandler
	Reset    *handlers.PasswordResetHandler
	Push     *handlers.PushHandler
	Verifier middleware.TokenVerifier
	Registry *prometheus.Registry
	Log      *logger.Logger

	// StaticDir каталог браузерных ассетов; пустая строка отключает раздачу
	StaticDir string
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(rc RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware(rc.Log))
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rc.Registry, promhttp.HandlerOpts{})))

	if rc.StaticDir != "" {
		router.Static("/static", rc.StaticDir)
	}

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", rc.Webhook.HandleBillingWebhook)
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/password/resend", rc.Reset.ResendSetupLink)

		push := v1.Group("/push")
		push.Use(middleware.AuthMiddleware(rc.Verifier, rc.Log))
		{
			push.POST("/send", rc.Push.SendPush)
		}
	}

	return router
}
