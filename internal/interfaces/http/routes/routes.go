// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
)

// Handlers groups the handlers mounted under /api/v1
type Handlers struct {
	Auth    *handlers.AuthHandler
	Cart    *handlers.CartHandler
	Product *handlers.ProductHandler
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
	}
}

// SetupUserRoutes sets up user related routes
func SetupUserRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, jwtManager *auth.JWTManager) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(jwtManager)) // All user routes require authentication
	{
		users.GET("/me", h.Me)
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("/:id", h.GetProduct)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, jwtManager *auth.JWTManager) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(jwtManager)) // Guest carts live on the client
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCartCount)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items", h.UpdateCartItem)
		cart.DELETE("/items/:productId", h.RemoveFromCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/merge", h.MergeCart)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler, jwtManager *auth.JWTManager) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		products.POST("/variants/preview", h.PreviewVariants)
		products.POST("/:id/variants", h.SaveVariants)
		products.PUT("/:id/variants", h.SaveVariants)
	}
}

// SetupRoutes mounts every route group
func SetupRoutes(rg *gin.RouterGroup, h Handlers, jwtManager *auth.JWTManager) {
	SetupAuthRoutes(rg, h.Auth)
	SetupUserRoutes(rg, h.Auth, jwtManager)
	SetupProductRoutes(rg, h.Product)
	SetupCartRoutes(rg, h.Cart, jwtManager)
	SetupAdminRoutes(rg, h.Product, jwtManager)
}
