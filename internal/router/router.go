package router

import (
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/handler"
	"github.com/eventhub/eventhub-backend/internal/middleware"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// imageMaxAge is how long clients may cache event images.
const imageMaxAge = 3600

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Admin  *handler.AdminHandler
	User   *handler.UserHandler
	Event  *handler.EventHandler
	WS     *handler.WSHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.Authenticator,
	limiter middleware.Limiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	gate := middleware.Authenticate(auth, log)

	// ─── 1. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	{
		adminAPI.POST("/signup", middleware.RateLimit(limiter, "admin_signup", log), handlers.Admin.Signup)
		adminAPI.POST("/signin", middleware.RateLimit(limiter, "admin_signin", log), handlers.Admin.Signin)

		me := adminAPI.Group("", gate, middleware.RequireKind(model.PrincipalAdmin))
		me.GET("/profile", handlers.Admin.Profile)
		me.POST("/signout", handlers.Admin.Signout)
	}

	// ─── 2. User Group ─────────────────────────────────────────────────
	userAPI := router.Group("/api/v1/user")
	{
		userAPI.POST("/signup", middleware.RateLimit(limiter, "user_signup", log), handlers.User.Signup)
		userAPI.POST("/signin", middleware.RateLimit(limiter, "user_signin", log), handlers.User.Signin)

		me := userAPI.Group("", gate, middleware.RequireKind(model.PrincipalUser))
		me.GET("/profile", handlers.User.Profile)
		me.POST("/signout", handlers.User.Signout)
	}

	// ─── 3. Event Group (any authenticated principal) ──────────────────
	eventAPI := router.Group("/api/v1/event")
	eventAPI.Use(gate)
	{
		eventAPI.POST("/addEvent",
			middleware.RequirePermission(model.PermissionEventsCreate),
			handlers.Event.AddEvent,
		)
		eventAPI.PUT("/editEvent/:id",
			middleware.RequirePermission(model.PermissionEventsWriteOwn),
			handlers.Event.EditEvent,
		)
		eventAPI.DELETE("/deleteEvent/:id",
			middleware.RequirePermission(model.PermissionEventsWriteOwn),
			handlers.Event.DeleteEvent,
		)
		eventAPI.GET("/adminEvents",
			middleware.RequirePermission(model.PermissionEventsReadOwn),
			handlers.Event.AdminEvents,
		)
		eventAPI.POST("/enroll",
			middleware.RequirePermission(model.PermissionEventsEnroll),
			handlers.Event.Enroll,
		)
		eventAPI.POST("/unroll",
			middleware.RequirePermission(model.PermissionEventsEnroll),
			handlers.Event.Unroll,
		)

		eventAPI.GET("/allEvents", handlers.Event.AllEvents)
		eventAPI.GET("/trendingEvents", handlers.Event.TrendingEvents)
		eventAPI.GET("/:eventId", handlers.Event.GetEvent)
		eventAPI.GET("/:eventId/image", middleware.CacheControl(imageMaxAge), handlers.Event.GetEventImage)
	}

	// ─── 4. Live Group (WebSocket) ─────────────────────────────────────
	wsAPI := router.Group("/ws/v1")
	wsAPI.Use(middleware.TokenFromQuery("token"), gate)
	{
		wsAPI.GET("/event/:eventId/live", handlers.WS.EventAttendanceStream)
	}

	return router
}
