package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/logging"
)

// Handlers groups every HTTP handler mounted by the router
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Tournament *TournamentHandler
	Wallet     *WalletHandler
	Webhook    *WebhookHandler
	Alert      *AlertHandler
	Admin      *AdminHandler
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(h Handlers, verifier auth.Verifier, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	requireAuth := auth.AuthMiddleware(verifier)

	authRoutes := router.Group("/auth")
	authRoutes.Use(requireAuth)
	{
		authRoutes.POST("/sync", h.Auth.Sync)
		authRoutes.GET("/me", h.Auth.GetMe)
	}

	// Public routes
	router.GET("/api/tournaments", h.Tournament.GetTournaments)
	router.GET("/api/tournaments/:id", h.Tournament.GetTournament)
	router.GET("/api/tournaments/:id/players", h.Tournament.GetPlayers)
	router.GET("/api/alerts", h.Alert.GetActiveAlerts)
	router.POST("/api/payments/webhook", h.Webhook.Handle)

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", h.User.GetProfile)
			userRoutes.GET("/transactions", h.User.GetTransactions)
			userRoutes.GET("/tournaments", h.User.GetTournaments)
		}

		api.POST("/tournaments/:id/join", h.Tournament.JoinTournament)

		api.POST("/wallet/deposit", h.Wallet.Deposit)
		api.POST("/wallet/withdraw", h.Wallet.Withdraw)
	}

	admin := router.Group("/api/admin")
	admin.Use(requireAuth)
	admin.Use(h.Admin.AdminMiddleware())
	{
		admin.GET("/dashboard", h.Admin.GetDashboard)
		admin.GET("/logs", h.Admin.GetAdminLogs)
		admin.GET("/transactions", h.Admin.GetTransactions)

		// User management
		admin.GET("/users", h.Admin.GetUsers)
		admin.PUT("/users/:uid/role", h.Admin.SetUserRole)
		admin.POST("/users/:uid/balance", h.Admin.AdjustBalance)

		// Tournament management
		admin.POST("/tournaments", h.Admin.CreateTournament)
		admin.PUT("/tournaments/:id", h.Admin.UpdateTournament)
		admin.PUT("/tournaments/:id/status", h.Admin.UpdateTournamentStatus)
		admin.DELETE("/tournaments/:id", h.Admin.DeleteTournament)
		admin.POST("/tournaments/:id/prize", h.Admin.AwardPrize)

		// Alerts
		admin.GET("/alerts", h.Admin.GetAlerts)
		admin.POST("/alerts", h.Admin.CreateAlert)
		admin.PUT("/alerts/:id", h.Admin.UpdateAlert)
		admin.DELETE("/alerts/:id", h.Admin.DeleteAlert)
	}

	return router
}
