package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fire-alert-service/docs"
	"fire-alert-service/internal/app/controllers"
	"fire-alert-service/internal/app/middleware"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/infrastructure/metrics"
)

// SetupRouter builds the gin engine on top of an initialised service container
func SetupRouter(container *container.ServiceContainer) *gin.Engine {
	cfg := container.GetConfig()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	middleware.InitAuthMiddleware(container.GetService("access").(services.InterfaceAccessPolicy))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", controllers.HandleRealtime(container))

	registerRoutes(r, container)
	return r
}

// registerRoutes wires every /api route
func registerRoutes(r *gin.Engine, container *container.ServiceContainer) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes wires routes that accept anonymous callers
func registerPublicRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	cfg := container.GetConfig()

	public := api.Group("")
	// 10 requests per second per IP, bursts of 20
	public.Use(middleware.IPRateLimiter(10, 20))

	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "ping"))
	healthGroup := public.Group("/health")
	healthGroup.GET("/status", controllers.HandleHealthFunc(container, "status"))
	healthGroup.GET("/cache-stats", controllers.HandleHealthFunc(container, "cacheStats"))

	authGroup := public.Group("/auth")
	authGroup.Use(middleware.CombinedRateLimiter(1, 5))
	authGroup.POST("/register", controllers.HandleJWTFunc(container, "register"))
	authGroup.POST("/login", controllers.HandleJWTFunc(container, "login"))

	sensorGroup := api.Group("/sensor")
	sensorGroup.POST("/update",
		middleware.IPRateLimiter(cfg.SensorRateLimit, cfg.SensorRateBurst),
		controllers.HandleSensorFunc(container, "updateStatus"))
	sensorGroup.POST("/location",
		middleware.IPRateLimiter(10, 20),
		middleware.OptionalAuthentication(),
		controllers.HandleSensorFunc(container, "updateLocation"))
	sensorGroup.GET("/status", controllers.HandleSensorFunc(container, "getStatus"))
}

// registerAuthenticatedRoutes wires routes that need a token
func registerAuthenticatedRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	auth := api.Group("")
	// 30 requests per second per IP, bursts of 50; applied before the token check
	auth.Use(middleware.IPRateLimiter(30, 50))
	auth.Use(middleware.Authentication())

	auth.GET("/auth/me", controllers.HandleJWTFunc(container, "me"))
	auth.GET("/sensor/fire-locations", controllers.HandleSensorFunc(container, "getFireLocations"))
	auth.GET("/logs/my", controllers.HandleLogFunc(container, "getMyLogs"))
	auth.GET("/logs/:id", controllers.HandleLogFunc(container, "getLog"))

	admin := auth.Group("")
	admin.Use(middleware.AuthenticateSystemAdmin())

	admin.GET("/logs", controllers.HandleLogFunc(container, "getAllLogs"))

	userGroup := admin.Group("/users")
	userGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleUserFunc(container, "getUsers"))
	userGroup.GET("/:id", controllers.HandleUserFunc(container, "getUser"))
	userGroup.PUT("/:id", controllers.HandleUserFunc(container, "updateUser"))
	userGroup.DELETE("/:id", controllers.HandleUserFunc(container, "deleteUser"))
}
