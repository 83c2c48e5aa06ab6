package routes

import (
	"storefront/config"
	"storefront/controllers"
	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"storefront/store"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(router *gin.Engine) {
	var cartStore store.Store
	if models.RedisClient != nil {
		cartStore = store.NewRedis(models.RedisClient)
	} else {
		cartStore = store.NewMemory()
	}

	cartSvc := services.NewCartService(cartStore)
	checkoutSvc := services.NewCheckoutService(cartSvc)
	shippingSvc := services.NewShippingService(config.AppConfig.CEPLookupURL)

	authCtrl := &controllers.AuthController{}
	userCtrl := controllers.NewUserController()
	productCtrl := &controllers.ProductController{}
	orderCtrl := &controllers.OrderController{}
	cartCtrl := controllers.NewCartController(cartSvc)
	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc, shippingSvc)
	shippingCtrl := controllers.NewShippingController(shippingSvc)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)
	router.GET("/products", productCtrl.GetAllProducts)
	router.GET("/products/:id", productCtrl.GetProductByID)
	router.GET("/shipping/:cep", shippingCtrl.LookupCEP)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/auth/profile", authCtrl.GetProfile)

		auth.GET("/cart", cartCtrl.GetCart)
		auth.DELETE("/cart", cartCtrl.ClearCart)
		auth.POST("/cart/items", cartCtrl.AddItem)
		auth.DELETE("/cart/items/:id", cartCtrl.RemoveItem)
		auth.POST("/cart/items/:id/increment", cartCtrl.IncrementItem)
		auth.POST("/cart/items/:id/decrement", cartCtrl.DecrementItem)

		auth.POST("/checkout", checkoutCtrl.Begin)
		auth.GET("/checkout", checkoutCtrl.GetDraft)
		auth.DELETE("/checkout", checkoutCtrl.Abandon)
		auth.PUT("/checkout/address", checkoutCtrl.SetAddress)
		auth.PUT("/checkout/payment", checkoutCtrl.SetPayment)
		auth.POST("/checkout/next", checkoutCtrl.Next)
		auth.POST("/checkout/back", checkoutCtrl.Back)

		auth.POST("/orders", checkoutCtrl.Confirm)
		auth.GET("/orders", orderCtrl.GetMyOrders)
		auth.GET("/orders/:id", orderCtrl.GetOrderByID)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.GET("/users/:id", userCtrl.GetUserByID)
		admin.POST("/users", userCtrl.CreateUser)
		admin.PATCH("/users/:id", userCtrl.UpdateUser)
		admin.PATCH("/users/:id/status", userCtrl.ToggleUserStatus)

		admin.POST("/products", productCtrl.CreateProduct)
		admin.PATCH("/products/:id", productCtrl.UpdateProduct)
		admin.PATCH("/products/:id/status", productCtrl.ToggleProductStatus)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	}

	router.Static("/uploads", "./uploads")
}
