package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter sets up the Gin router
func SetupRouter(handlers *Handlers, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	// Host app routes
	venmo := router.Group("/venmo")
	{
		venmo.GET("/availability", handlers.Availability)
		venmo.POST("/tokenize", handlers.Tokenize)
		venmo.GET("/return", handlers.Return)
		venmo.POST("/foreground", handlers.Foreground)
		venmo.GET("/result", handlers.Latest)
	}

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}
