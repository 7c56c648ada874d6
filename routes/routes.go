package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/controllers"
	"github.com/awsomeshop/rewards-be/middleware"
	"github.com/awsomeshop/rewards-be/websocket"
)

func SetupRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Initialize controllers
	authController := controllers.NewAuthController()
	productController := controllers.NewProductController()
	orderController := controllers.NewOrderController()
	pointsController := controllers.NewPointsController()
	adminController := controllers.NewAdminController()
	statsController := controllers.NewStatsController()

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authController.Login)
		public.POST("/auth/refresh", authController.Refresh)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/me", authController.Me)
		protected.POST("/auth/logout", authController.Logout)

		protected.GET("/products", productController.GetProducts)
		protected.GET("/products/categories", productController.GetCategories)
		protected.GET("/products/:id", productController.GetProduct)

		protected.POST("/orders/redeem", orderController.Redeem)
		protected.GET("/orders/history", orderController.GetOrderHistory)
		protected.GET("/orders/:id", orderController.GetOrder)

		protected.GET("/points/balance", pointsController.GetBalance)
		protected.GET("/points/history", pointsController.GetHistory)

		protected.GET("/ws", websocket.HandleWebSocket(config.WSHub))
	}

	// Admin only routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminOnly())
	{
		// User management
		admin.POST("/users", adminController.CreateUser)
		admin.GET("/users", adminController.GetUsers)

		// Points management
		admin.GET("/points/overview", adminController.GetPointsOverview)
		admin.GET("/points/users", adminController.GetUsers)
		admin.GET("/points/history", adminController.GetPointsHistory)
		admin.POST("/points/adjust", adminController.AdjustPoints)
		admin.POST("/points/allocate", adminController.BulkAllocatePoints)

		// Product management
		admin.GET("/products", adminController.GetProducts)
		admin.POST("/products", adminController.CreateProduct)
		admin.PUT("/products/:id", adminController.UpdateProduct)
		admin.DELETE("/products/:id", adminController.DeleteProduct)
		admin.DELETE("/products/:id/permanent", adminController.PermanentlyDeleteProduct)
		admin.POST("/products/:id/activate", adminController.ActivateProduct)
		admin.POST("/products/:id/deactivate", adminController.DeactivateProduct)
		admin.POST("/products/:id/restock", adminController.RestockProduct)

		// Order management
		admin.GET("/orders", adminController.GetOrders)

		// Statistics
		admin.GET("/stats/system", statsController.GetSystemStats)
		admin.GET("/stats/redemption", statsController.GetRedemptionStats)
		admin.GET("/stats/user-activity", statsController.GetUserActivityStats)
	}

	return r
}
