package api

import (
	"errors"
	"net/http"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/payment"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	authService    *service.AuthService
	orderService   *service.OrderService
	catalogService *service.CatalogService
	contactService *service.ContactService
	payments       *payment.Builder
	jwtService     *auth.JWTService
	requestTimeout time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	orderService *service.OrderService,
	catalogService *service.CatalogService,
	contactService *service.ContactService,
	payments *payment.Builder,
	jwtService *auth.JWTService,
	requestTimeout time.Duration,
) *Handler {
	return &Handler{
		authService:    authService,
		orderService:   orderService,
		catalogService: catalogService,
		contactService: contactService,
		payments:       payments,
		jwtService:     jwtService,
		requestTimeout: requestTimeout,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(requestDeadline(h.requestTimeout))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	products := api.Group("/products")
	{
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)

		adminProducts := products.Group("", RequireAuth(h.jwtService), RequireRole(models.RoleAdmin))
		adminProducts.POST("", h.createProduct)
		adminProducts.PUT("/:id", h.updateProduct)
		adminProducts.DELETE("/:id", h.deleteProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.listCategories)

		adminCategories := categories.Group("", RequireAuth(h.jwtService), RequireRole(models.RoleAdmin))
		adminCategories.POST("", h.createCategory)
		adminCategories.PUT("/:id", h.updateCategory)
		adminCategories.DELETE("/:id", h.deleteCategory)
	}

	orders := api.Group("/orders")
	{
		orders.GET("/qr/:trackingCode", h.trackingQR)
		orders.POST("/payhere-webhook", h.paymentWebhook)

		userOrders := orders.Group("", RequireAuth(h.jwtService))
		userOrders.POST("", h.createOrder)
		userOrders.GET("/myorders", h.myOrders)

		adminOrders := orders.Group("", RequireAuth(h.jwtService), RequireRole(models.RoleAdmin))
		adminOrders.GET("/admin/all", h.listAllOrders)
		adminOrders.PUT("/admin/:id/status", h.transitionOrder)
		adminOrders.DELETE("/admin/:id", h.deleteOrder)
		adminOrders.GET("/sticker/:id", h.orderSticker)
	}

	contacts := api.Group("/contact")
	{
		contacts.POST("", h.createContact)

		adminContacts := contacts.Group("", RequireAuth(h.jwtService), RequireRole(models.RoleAdmin))
		adminContacts.GET("", h.listContacts)
		adminContacts.PUT("/:id/read", h.markContactRead)
		adminContacts.DELETE("/:id", h.deleteContact)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondServiceError maps service sentinel errors to HTTP statuses. The
// body carries only a generic message; details stay in the logs.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
