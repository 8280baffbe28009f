package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fleet-dispatch-api-server/config"
	"fleet-dispatch-api-server/internal/api/handlers"
	"fleet-dispatch-api-server/internal/api/middleware"
	"fleet-dispatch-api-server/internal/dispatch"
	"fleet-dispatch-api-server/internal/identity"
	"fleet-dispatch-api-server/internal/models"
	"fleet-dispatch-api-server/internal/s3"
	"fleet-dispatch-api-server/internal/socket"
	"fleet-dispatch-api-server/internal/store"
)

// SetupRouter wires the handlers onto the HTTP surface. The identity
// provider decides the shape of the surface: direct mode guards the
// business routes with JWT + module checks and exposes the admin user
// API; session mode trusts the upstream session and mounts no admin
// routes.
func SetupRouter(
	cfg config.Config,
	st *store.Store,
	dsp *dispatch.Service,
	provider identity.Provider,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	authHandler := &handlers.AuthHandler{Provider: provider}
	orderHandler := &handlers.OrderHandler{Dispatch: dsp, Store: st}
	driverHandler := &handlers.DriverHandler{Store: st}
	userHandler := &handlers.UserHandler{Store: st}
	reportHandler := &handlers.ReportHandler{Store: st, Uploader: s3Uploader}
	dashboardHandler := &handlers.DashboardHandler{Map: cfg.Map, AuthMode: provider.Mode()}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, AuthMode: provider.Mode()}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "clients": wsHub.ClientCount()})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)
		apiV1.GET("/dashboard/config", dashboardHandler.GetConfig)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		businessRoutes := apiV1.Group("/")
		if provider.Mode() == identity.ModeDirect {
			businessRoutes.Use(middleware.Authenticate())
		}
		{
			realtime := businessRoutes.Group("/")
			if provider.Mode() == identity.ModeDirect {
				realtime.Use(middleware.RequireModule(models.ModuleRealtime))
			}
			{
				orders := realtime.Group("/orders")
				{
					orders.GET("/", orderHandler.ListOrders)
					orders.POST("/", orderHandler.CreateOrder)
					orders.POST("/:id/assign", orderHandler.AssignOrder)
				}

				drivers := realtime.Group("/drivers")
				{
					drivers.GET("/", driverHandler.ListDrivers)
					drivers.PUT("/:id/location", driverHandler.UpdateLocation)
				}
			}

			reportRoutes := businessRoutes.Group("/reports")
			if provider.Mode() == identity.ModeDirect {
				reportRoutes.Use(middleware.RequireModule(models.ModuleReports))
			}
			{
				reportRoutes.GET("/kpis", reportHandler.DownloadKPIs)
				reportRoutes.POST("/kpis/archive", reportHandler.ArchiveKPIs)
			}
		}

		// User administration only makes sense when this server owns the
		// accounts.
		if provider.Mode() == identity.ModeDirect {
			admin := apiV1.Group("/admin")
			admin.Use(middleware.Authenticate())
			admin.Use(middleware.Authorize(models.RoleAdmin))
			{
				admin.POST("/users", userHandler.CreateUser)
				admin.GET("/users", userHandler.ListUsers)
				admin.PUT("/users/:username/password", userHandler.SetPassword)
				admin.PUT("/users/:username/modules", userHandler.SetModules)
				admin.DELETE("/users/:username", userHandler.DeleteUser)
			}
		}
	}

	return router
}
