package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hazelmart/internal/app/store/entity"
	"hazelmart/pkg/logger"
	"hazelmart/pkg/metrics"
)

// SetupRoutes собирает все маршруты API под префиксом /api/<version>
// Каталог читается без сессии; мутации требуют cookie, админские
// маршруты - роль admin поверх нее
func SetupRoutes(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	productHandler *ProductHandler,
	reviewHandler *ReviewHandler,
	authMiddleware *AuthMiddleware,
	apiVersion string,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("hazelmart"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "hazelmart",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/" + apiVersion)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/logout", authHandler.Logout)
	}

	users := api.Group("/users")
	users.Use(authMiddleware.Authenticate())
	{
		users.GET("", authMiddleware.RequireRoles(entity.RoleAdmin), userHandler.GetUsers)
		users.GET("/showMe", userHandler.ShowMe)
		users.GET("/:user_id", userHandler.GetUser)
		users.PATCH("/edit/:user_id", userHandler.UpdateUser)
		users.PATCH("/update/password/:user_id", userHandler.UpdatePassword)
		users.DELETE("/delete/:user_id", userHandler.DeleteUser)
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:product_id", productHandler.GetProduct)
	}

	productsAuth := api.Group("/products")
	productsAuth.Use(authMiddleware.Authenticate(), authMiddleware.RequireRoles(entity.RoleAdmin))
	{
		productsAuth.POST("/new", productHandler.CreateProduct)
		productsAuth.PATCH("/edit/:product_id", productHandler.UpdateProduct)
		productsAuth.DELETE("/delete/:product_id", productHandler.DeleteProduct)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("/byProduct/:product_id", reviewHandler.GetProductReviews)
		reviews.GET("/:review_id", reviewHandler.GetReview)
	}

	reviewsAuth := api.Group("/reviews")
	reviewsAuth.Use(authMiddleware.Authenticate())
	{
		reviewsAuth.POST("/new/:product_id", reviewHandler.CreateReview)
		reviewsAuth.PATCH("/edit/:review_id", reviewHandler.UpdateReview)
		reviewsAuth.DELETE("/delete/:review_id", reviewHandler.DeleteReview)
	}

	return router
}
