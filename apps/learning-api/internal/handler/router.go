package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health        *HealthHandler
	Auth          *AuthHandler
	OAuth         *OAuthHandler
	User          *UserHandler
	Data          *DataHandler
	Payment       *PaymentHandler
	Blogs         *ContentHandler
	LearningPaths *ContentHandler
	Resources     *ContentHandler
}

// RouterConfig holds the middleware the routes depend on
type RouterConfig struct {
	Authenticator IdentityAuthenticator
	// Idempotency guards the purchase endpoint; nil disables it
	Idempotency gin.HandlerFunc
}

// RegisterRoutes mounts all API routes on router
func RegisterRoutes(router *gin.Engine, h *Handlers, cfg *RouterConfig) {
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)

	authn := Authenticate(cfg.Authenticator)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		if h.OAuth != nil {
			auth.GET("/:provider", h.OAuth.Start)
			auth.GET("/:provider/callback", h.OAuth.Callback)
		}
	}

	tutors := api.Group("/tutors")
	{
		tutors.POST("/register", h.Auth.RegisterTutor)
		tutors.POST("/login", h.Auth.LoginTutor)

		tutors.GET("/me", authn, Me)

		protected := tutors.Group("", authn, RequireTutor())
		mountContent(protected.Group("/blogs"), h.Blogs)
		mountContent(protected.Group("/learning-paths"), h.LearningPaths)
		mountContent(protected.Group("/resources"), h.Resources)
	}

	user := api.Group("/user", authn, RequireUser())
	{
		user.GET("/profile", h.User.Profile)
		user.PUT("/update-plan", h.User.UpdatePlan)
		user.POST("/use-ai", h.User.UseAI)
		user.POST("/profile-picture", h.User.UploadProfilePicture)
		user.DELETE("/profile-picture", h.User.DeleteProfilePicture)

		data := user.Group("/data")
		data.POST("", h.Data.Create)
		data.GET("", h.Data.List)
		data.POST("/upload", h.Data.Upload)
		data.POST("/upload-package", h.Data.UploadPackage)
		data.PUT("/:id", h.Data.Update)
		data.DELETE("/:id", h.Data.Delete)
	}

	payment := api.Group("/payment")
	{
		payment.POST("/webhook", h.Payment.Webhook)

		subscribe := []gin.HandlerFunc{authn, RequireUser()}
		if cfg.Idempotency != nil {
			subscribe = append(subscribe, cfg.Idempotency)
		}
		subscribe = append(subscribe, h.Payment.Subscribe)
		payment.POST("/subscribe", subscribe...)
	}
}

func mountContent(g *gin.RouterGroup, h *ContentHandler) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
