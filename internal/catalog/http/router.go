package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "product-catalog"

type HealthChecker interface {
	Health() error
}

// RouterConfig carries the handler-layer knobs: the rate limit applied to
// the /api group and the directory holding the frontend bundle, if any.
type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	StaticDir         string
}

func RegisterRoutes(router *gin.Engine, handler *Handler, checker HealthChecker, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   serviceName,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(NewFixedWindowLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)))

	api.GET("/health/db", func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "ERROR",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "database": "connected"})
	})

	api.GET("/products", handler.ListProducts)
	api.GET("/products/:id", handler.GetProduct)
	api.POST("/products", handler.CreateProduct)
	api.PUT("/products/:id", handler.UpdateProduct)
	api.DELETE("/products/:id", handler.DeleteProduct)

	router.NoRoute(staticFallback(cfg.StaticDir))
}

// staticFallback serves the frontend bundle for non-API paths. Unknown
// paths under the bundle fall back to index.html so client-side routing
// works; a missing bundle produces a JSON 404 explaining what to build.
func staticFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
			return
		}

		if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Frontend not found",
				"message": "Build the frontend bundle first",
				"path":    staticDir,
			})
			return
		}

		// Clean the request path against the bundle root so traversal
		// cannot escape it.
		rel := filepath.Clean("/" + c.Request.URL.Path)
		file := filepath.Join(staticDir, rel)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		c.File(filepath.Join(staticDir, "index.html"))
	}
}
