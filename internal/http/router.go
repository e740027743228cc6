package http

import (
	"log/slog"

	"qissa-server/internal/auth"
	"qissa-server/internal/config"
	"qissa-server/internal/http/handlers"
	"qissa-server/internal/http/middleware"
	"qissa-server/internal/services"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Config          *config.Config
	TokenIssuer     *auth.TokenIssuer
	AuthService     *services.AuthService
	PasswordService *services.PasswordService
	ProfileService  *services.ProfileService
	Logger          *slog.Logger
	RateLimiter     *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	passwordHandler := handlers.NewPasswordHandler(deps.PasswordService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)

	router.GET("/healthz", handlers.Health)

	credentials := router.Group("")
	credentials.Use(deps.RateLimiter.Middleware())
	{
		credentials.POST("/register", authHandler.Register)
		credentials.POST("/login", authHandler.Login)
		credentials.POST("/password/forgot", passwordHandler.Forgot)
		credentials.POST("/password/reset/:token", passwordHandler.Reset)
	}

	router.POST("/logout", authHandler.Logout)

	protected := router.Group("")
	protected.Use(middleware.SessionAuth(deps.TokenIssuer))
	{
		protected.GET("/profile", profileHandler.Get)
		protected.PUT("/profile", profileHandler.Update)
		protected.POST("/password/change", passwordHandler.Change)
	}

	return router
}
