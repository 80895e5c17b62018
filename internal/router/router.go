package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/config"
	"github.com/lumiskin/skincare-backend/internal/app/controller"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

// Controllers groups every HTTP handler set the API exposes
type Controllers struct {
	Auth      *controller.AuthController
	User      *controller.UserController
	Brand     *controller.BrandController
	Category  *controller.CategoryController
	SkinType  *controller.SkinTypeController
	Product   *controller.ProductController
	Promotion *controller.PromotionController
	Cart      *controller.CartController
	Order     *controller.OrderController
	Quiz      *controller.QuizController
	Routine   *controller.RoutineController
	Rating    *controller.RatingController
	Payment   *controller.PaymentController
	Upload    *controller.UploadController
	Feed      *controller.FeedController
	Dashboard *controller.DashboardController
	WebSocket *controller.WebSocketController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Skincare API is running",
		})
	})

	ctl := r.controllers
	auth := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()
	backoffice := r.authMiddleware.RequireBackoffice()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	if ctl.WebSocket != nil {
		router.GET("/ws", auth, ctl.WebSocket.Connect)
	}

	api := router.Group("/api")

	authRoutes := api.Group("/Auth")
	{
		authRoutes.POST("/Register", ctl.Auth.Register)
		authRoutes.POST("/Login", ctl.Auth.Login)
		authRoutes.POST("/google-login", ctl.Auth.GoogleLogin)
		authRoutes.POST("/facebook-login", ctl.Auth.FacebookLogin)
		authRoutes.POST("/refresh-token", ctl.Auth.RefreshToken)
		authRoutes.POST("/forgot-password", ctl.Auth.ForgotPassword)
		authRoutes.POST("/reset-password", ctl.Auth.ResetPassword)
		authRoutes.POST("/Logout", auth, ctl.Auth.Logout)
		authRoutes.GET("/Me", auth, ctl.Auth.GetMe)
		authRoutes.PUT("/Me", auth, ctl.Auth.UpdateMe)
		authRoutes.PUT("/change-password", auth, ctl.Auth.ChangePassword)
	}

	users := api.Group("/User", auth, adminOnly)
	{
		users.GET("", ctl.User.ListUsers)
		users.GET("/:id", ctl.User.GetUser)
		users.PUT("/:id/role", ctl.User.UpdateRole)
		users.PUT("/:id/active", ctl.User.SetActive)
	}

	brands := api.Group("/Brand")
	{
		brands.GET("", ctl.Brand.GetBrands)
		brands.GET("/:id", ctl.Brand.GetBrand)
		brands.POST("", auth, backoffice, ctl.Brand.CreateBrand)
		brands.PUT("/:id", auth, backoffice, ctl.Brand.UpdateBrand)
		brands.DELETE("/:id", auth, backoffice, ctl.Brand.DeleteBrand)
	}

	categories := api.Group("/Category")
	{
		categories.GET("", ctl.Category.GetCategories)
		categories.GET("/:id", ctl.Category.GetCategory)
		categories.POST("", auth, backoffice, ctl.Category.CreateCategory)
		categories.PUT("/:id", auth, backoffice, ctl.Category.UpdateCategory)
		categories.DELETE("/:id", auth, backoffice, ctl.Category.DeleteCategory)
	}

	skinTypes := api.Group("/SkinType")
	{
		skinTypes.GET("", ctl.SkinType.GetSkinTypes)
		skinTypes.GET("/:id", ctl.SkinType.GetSkinType)
		skinTypes.GET("/:id/products", ctl.SkinType.GetSkinTypeProducts)
		skinTypes.POST("", auth, backoffice, ctl.SkinType.CreateSkinType)
		skinTypes.PUT("/:id", auth, backoffice, ctl.SkinType.UpdateSkinType)
		skinTypes.DELETE("/:id", auth, backoffice, ctl.SkinType.DeleteSkinType)
	}

	products := api.Group("/Product")
	{
		products.GET("", optional, ctl.Product.GetProducts)
		products.GET("/slug/:slug", ctl.Product.GetProductBySlug)
		products.GET("/:id", ctl.Product.GetProduct)
		products.GET("/:id/variations", ctl.Product.GetVariations)
		products.GET("/:id/ratings", optional, ctl.Rating.GetProductRatings)
		products.POST("/:id/ratings", auth, ctl.Rating.CreateRating)

		manage := products.Group("", auth, backoffice)
		manage.POST("", ctl.Product.CreateProduct)
		manage.PUT("/:id", ctl.Product.UpdateProduct)
		manage.DELETE("/:id", ctl.Product.DeleteProduct)
		manage.POST("/:id/variations", ctl.Product.AddVariation)
		manage.PUT("/:id/variations/:variationId", ctl.Product.UpdateVariation)
		manage.DELETE("/:id/variations/:variationId", ctl.Product.DeleteVariation)
		manage.PUT("/:id/pictures", ctl.Product.ReplacePictures)
		manage.PUT("/:id/usages", ctl.Product.ReplaceUsages)
		manage.PUT("/:id/ingredients", ctl.Product.ReplaceIngredients)
		manage.PUT("/:id/skin-types", ctl.Product.SetSkinTypes)
	}

	promotions := api.Group("/Promotion")
	{
		promotions.GET("/active", ctl.Promotion.GetActivePromotions)
		promotions.GET("/code/:code", ctl.Promotion.GetPromotionByCode)
		promotions.POST("/validate", auth, ctl.Promotion.ValidatePromotion)

		manage := promotions.Group("", auth, backoffice)
		manage.GET("", ctl.Promotion.GetPromotions)
		manage.GET("/:id", ctl.Promotion.GetPromotion)
		manage.POST("", ctl.Promotion.CreatePromotion)
		manage.PUT("/:id", ctl.Promotion.UpdatePromotion)
		manage.DELETE("/:id", ctl.Promotion.DeletePromotion)
		manage.PUT("/:id/products", ctl.Promotion.AssignProducts)
		manage.PUT("/:id/customers", ctl.Promotion.AssignCustomers)
	}

	cart := api.Group("/Cart", auth)
	{
		cart.GET("", ctl.Cart.GetCart)
		cart.POST("", ctl.Cart.AddToCart)
		cart.PUT("/select", ctl.Cart.SelectItems)
		cart.PUT("/:id", ctl.Cart.UpdateCartItem)
		cart.DELETE("/:id", ctl.Cart.RemoveFromCart)
		cart.DELETE("", ctl.Cart.ClearCart)
	}

	orders := api.Group("/Order", auth)
	{
		orders.POST("", ctl.Order.CreateOrder)
		orders.GET("", ctl.Order.GetOrders)
		orders.GET("/admin", backoffice, ctl.Order.GetAllOrders)
		orders.GET("/:id", ctl.Order.GetOrder)
		orders.PUT("/:id/cancel", ctl.Order.CancelOrder)
		orders.PUT("/:id/status", backoffice, ctl.Order.UpdateOrderStatus)
	}

	quizzes := api.Group("/Quiz")
	{
		quizzes.GET("", optional, ctl.Quiz.GetQuizzes)
		quizzes.GET("/:id", ctl.Quiz.GetQuiz)
		quizzes.POST("/:id/attempts", auth, ctl.Quiz.SubmitAttempt)

		manage := quizzes.Group("", auth, backoffice)
		manage.POST("", ctl.Quiz.CreateQuiz)
		manage.PUT("/:id", ctl.Quiz.UpdateQuiz)
		manage.DELETE("/:id", ctl.Quiz.DeleteQuiz)
		manage.POST("/:id/questions", ctl.Quiz.AddQuestion)
	}

	questions := api.Group("/Question", auth, backoffice)
	{
		questions.PUT("/:id", ctl.Quiz.UpdateQuestion)
		questions.DELETE("/:id", ctl.Quiz.DeleteQuestion)
		questions.POST("/:id/answers", ctl.Quiz.AddAnswer)
	}

	answers := api.Group("/Answer", auth, backoffice)
	{
		answers.PUT("/:id", ctl.Quiz.UpdateAnswer)
		answers.DELETE("/:id", ctl.Quiz.DeleteAnswer)
	}

	attempts := api.Group("/QuizAttempt", auth)
	{
		attempts.GET("", ctl.Quiz.GetMyAttempts)
		attempts.GET("/:id", ctl.Quiz.GetAttempt)
	}

	routines := api.Group("/Routine")
	{
		routines.GET("", ctl.Routine.GetRoutines)
		routines.GET("/:id", ctl.Routine.GetRoutine)

		manage := routines.Group("", auth, backoffice)
		manage.POST("", ctl.Routine.CreateRoutine)
		manage.PUT("/:id", ctl.Routine.UpdateRoutine)
		manage.DELETE("/:id", ctl.Routine.DeleteRoutine)
		manage.POST("/:id/steps", ctl.Routine.AddStep)
	}

	steps := api.Group("/RoutineStep", auth, backoffice)
	{
		steps.PUT("/:id", ctl.Routine.UpdateStep)
		steps.DELETE("/:id", ctl.Routine.DeleteStep)
		steps.PUT("/:id/products", ctl.Routine.SetStepProducts)
	}

	ratings := api.Group("/Rating")
	{
		ratings.GET("/:id", optional, ctl.Rating.GetRating)
		ratings.PUT("/:id", auth, ctl.Rating.UpdateRating)
		ratings.DELETE("/:id", auth, ctl.Rating.DeleteRating)
		ratings.PUT("/:id/visibility", auth, backoffice, ctl.Rating.SetVisibility)
	}

	// gateway callbacks are signed, not authenticated
	momo := api.Group("/Momo")
	{
		momo.POST("/create", auth, ctl.Payment.CreateMomoPayment)
		momo.POST("/ipn", ctl.Payment.MomoIPN)
		momo.GET("/return", ctl.Payment.MomoReturn)
	}

	vnpay := api.Group("/Vnpay")
	{
		vnpay.POST("/create", auth, ctl.Payment.CreateVnpayPayment)
		vnpay.GET("/return", ctl.Payment.VnpayReturn)
		vnpay.GET("/ipn", ctl.Payment.VnpayIPN)
	}

	zalopay := api.Group("/ZaloPay")
	{
		zalopay.POST("/create", auth, ctl.Payment.CreateZaloPayOrder)
		zalopay.POST("/callback", ctl.Payment.ZaloPayCallback)
		zalopay.GET("/redirect", ctl.Payment.ZaloPayRedirect)
	}

	if ctl.Upload != nil {
		api.POST("/Upload/presigned-url", auth, ctl.Upload.GeneratePresignedURL)
	}

	if ctl.Feed != nil {
		api.GET("/Feed", ctl.Feed.GetFeed)
	}

	dashboard := api.Group("/Dashboard", auth, backoffice)
	{
		dashboard.GET("/summary", ctl.Dashboard.GetSummary)
		dashboard.GET("/orders/export", ctl.Dashboard.ExportOrders)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
