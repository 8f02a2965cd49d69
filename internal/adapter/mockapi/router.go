package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const ctxUserID = "userID"

// API is the mock storefront backend. It serves the same contract the
// real backend would, with deterministic seed data, so the client stack
// can be exercised without any external service.
type API struct {
	store   *dataStore
	tokens  *tokenIssuer
	latency time.Duration
}

type Option func(*API)

// WithLatency delays every response, useful for exercising the slow-call
// warning and loading indicator paths.
func WithLatency(d time.Duration) Option {
	return func(a *API) { a.latency = d }
}

func New(jwtSecret string, opts ...Option) *API {
	a := &API{
		store:  newDataStore(),
		tokens: newTokenIssuer(jwtSecret),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler builds the gin engine with every route mounted.
func (a *API) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	if a.latency > 0 {
		r.Use(func(c *gin.Context) {
			time.Sleep(a.latency)
			c.Next()
		})
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", a.login)
	auth.POST("/register", a.register)
	auth.POST("/logout", a.logout)
	auth.POST("/refresh", a.requireAuth, a.refresh)

	api.GET("/products", a.listProducts)
	api.GET("/products/search", a.searchProducts)
	api.GET("/products/:id", a.getProduct)
	api.GET("/categories", a.listCategories)

	user := api.Group("/user", a.requireAuth)
	user.GET("/profile", a.getProfile)
	user.PUT("/profile", a.updateProfile)
	user.POST("/avatar", a.uploadAvatar)
	user.GET("/orders", a.listOrders)
	user.GET("/orders/stats", a.orderStats)

	api.POST("/cart", a.requireAuth, a.addCartItem)
	api.GET("/cart", a.requireAuth, a.getCart)
	api.DELETE("/cart", a.requireAuth, a.clearCart)
	api.PUT("/cart/:key", a.requireAuth, a.updateCartItem)
	api.DELETE("/cart/:key", a.requireAuth, a.removeCartItem)

	orders := api.Group("/orders", a.requireAuth)
	orders.POST("", a.placeOrder)
	orders.GET("/:id", a.getOrder)
	orders.POST("/:id/cancel", a.cancelOrder)
	orders.POST("/:id/confirm-delivery", a.confirmDelivery)
	orders.POST("/:id/reorder", a.reorder)
	orders.GET("/:id/invoice", a.invoice)

	notifs := api.Group("/notifications", a.requireAuth)
	notifs.GET("", a.listNotifications)
	notifs.PUT("/read-all", a.readAllNotifications)
	notifs.PUT("/:id/read", a.readNotification)
	notifs.DELETE("/:id", a.deleteNotification)

	// Failure taps for exercising the pipeline's error branches.
	api.GET("/error/500", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, "simulated server error")
	})
	api.GET("/error/unauthorized", func(c *gin.Context) {
		fail(c, http.StatusUnauthorized, "simulated expired session")
	})

	return r
}

// requireAuth resolves the bearer token to a user id or rejects with 401.
func (a *API) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		fail(c, http.StatusUnauthorized, "missing bearer token")
		c.Abort()
		return
	}

	userID, err := a.tokens.Verify(raw)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid or expired token")
		c.Abort()
		return
	}

	c.Set(ctxUserID, userID)
	c.Next()
}

func currentUserID(c *gin.Context) int {
	return c.GetInt(ctxUserID)
}

// fail writes the error envelope the client pipeline knows how to read.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
