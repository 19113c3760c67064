package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/handler"
	"github.com/studentgov/election-api/internal/middleware"
	"github.com/studentgov/election-api/internal/models"
	"github.com/studentgov/election-api/internal/repository"
	"github.com/studentgov/election-api/internal/service"
	"github.com/studentgov/election-api/pkg/config"
	"github.com/studentgov/election-api/pkg/logger"
	corsmiddleware "github.com/studentgov/election-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studentgov/election-api/pkg/middleware/requestid"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Activity *repository.ActivityRepository

	Auth      *service.AuthService
	Reviewer  *service.ReviewerService
	Metrics   *service.MetricsService
	AuthH     *handler.AuthHandler
	Nominate  *handler.NominationHandler
	Support   *handler.SupporterHandler
	Manifesto *handler.ManifestoHandler
	Review    *handler.ReviewerHandler
	Admin     *handler.AdminHandler
}

// New assembles the gin engine with all routes and middleware mounted.
func New(d Deps) *gin.Engine {
	if d.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	if d.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.Config.APIPrefix)

	// Public endpoints.
	api.POST("/auth/register", d.AuthH.Register)
	api.POST("/auth/verify-otp", d.AuthH.VerifyOTP)
	api.POST("/auth/login", d.AuthH.Login)
	api.POST("/review/login", d.Review.Login)
	api.GET("/candidates", d.Nominate.ListAccepted)
	api.GET("/manifestos/download", d.Manifesto.Download)
	api.GET("/manifestos/:id/comments", d.Review.PublicComments)

	// Authenticated student and candidate endpoints.
	auth := api.Group("", middleware.JWT(d.Auth))
	{
		auth.GET("/auth/me", d.AuthH.Profile)

		auth.POST("/nominations", d.Nominate.Create)
		auth.GET("/nominations/me", d.Nominate.Mine)
		auth.PUT("/nominations/me", d.Nominate.Update)
		auth.GET("/nominations/:id", d.Nominate.Get)

		auth.POST("/supporters", d.Support.Create)
		auth.POST("/supporters/:id/decision", d.Support.Decide)
		auth.GET("/supporters/incoming", d.Support.Incoming)
		auth.GET("/supporters/me", d.Support.Mine)

		auth.POST("/manifestos/:phase", d.Manifesto.Upload)
		auth.DELETE("/manifestos/:phase", d.Manifesto.Delete)
		auth.GET("/manifestos/me", d.Manifesto.Mine)
		auth.GET("/manifestos/nomination/:id", d.Manifesto.ListForNomination)
		auth.GET("/manifestos/:id/signed-url", d.Manifesto.SignedURL)
		auth.GET("/manifestos/:id/view", d.Manifesto.Inline)
	}

	// Phase-scoped reviewer endpoints.
	review := api.Group("/review", middleware.Reviewer(d.Reviewer))
	{
		review.GET("/manifestos", d.Review.ListManifestos)
		review.POST("/manifestos/:id/comments", d.Review.Comment)
		review.GET("/manifestos/:id/comments", d.Review.ListComments)
	}

	// Election commission endpoints.
	admin := api.Group("/admin",
		middleware.JWT(d.Auth),
		middleware.RBAC(models.RoleAdmin, models.RoleSuperAdmin),
	)
	{
		admin.GET("/nominations", d.Nominate.List)
		admin.POST("/nominations/:id/decision", d.Nominate.Decide)
		admin.GET("/supporters", d.Support.ListAll)
		admin.GET("/manifestos/:phase", d.Manifesto.ListByPhase)
		admin.POST("/manifestos/:id/lock", d.Manifesto.SetLocked)
	}

	// Superadmin console.
	super := api.Group("/superadmin",
		middleware.JWT(d.Auth),
		middleware.RBAC(models.RoleSuperAdmin),
		middleware.Audit(d.Activity, "superadmin_request"),
	)
	{
		super.GET("/config", d.Admin.GetConfig)
		super.PUT("/config", d.Admin.UpdateConfig)
		super.GET("/statistics", d.Admin.Statistics)
		super.POST("/admins", d.Admin.PromoteAdmin)
		super.GET("/users", d.Admin.ListUsers)
		super.GET("/activity", d.Admin.ListActivity)
		super.GET("/export/:type", d.Admin.Export)
	}

	return r
}
