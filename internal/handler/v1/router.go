package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	Collector  *metrics.Collector
	JWTManager *auth.JWTManager

	Auth      *AuthHandler
	Users     *UserHandler
	Claims    *ClaimHandler
	Dashboard *DashboardHandler
}

// NewRouter assembles the gin engine. Authentication covers everything under
// /api/v1 except login and refresh; finer role gating lives in the services.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(CORS(deps.Config.CORS))
	r.Use(Metrics(deps.Collector))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(AuthRateLimit(deps.Config.RateLimit))
		{
			authGroup.POST("/login", deps.Auth.Login)
			authGroup.POST("/refresh", deps.Auth.Refresh)
		}

		authorized := api.Group("")
		authorized.Use(Authenticate(deps.JWTManager))
		{
			authorized.GET("/auth/me", deps.Auth.Me)

			users := authorized.Group("/users")
			{
				users.GET("", deps.Users.List)
				users.POST("", deps.Users.Create)
				users.GET("/:id", deps.Users.Get)
				users.PUT("/:id", deps.Users.Update)
				users.DELETE("/:id", deps.Users.Delete)
			}

			claims := authorized.Group("/claims")
			{
				claims.GET("", deps.Claims.List)
				claims.POST("", deps.Claims.Create)
				claims.GET("/:id", deps.Claims.Get)
				claims.PUT("/:id", deps.Claims.Update)
				claims.DELETE("/:id", deps.Claims.Delete)
				claims.DELETE("/:id/files/:field", deps.Claims.DeleteFile)
				claims.PATCH("/:id/files/:field/status", deps.Claims.SetFileStatus)
			}

			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/summary", deps.Dashboard.Summary)
				dashboard.GET("/monthwise", deps.Dashboard.MonthWise)
				dashboard.GET("/companywise", deps.Dashboard.CompanyWise)
			}
		}
	}

	return r
}
