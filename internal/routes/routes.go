package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meal_reservations/internal/controllers"
	"meal_reservations/internal/mailer"
	"meal_reservations/internal/middleware"
	"meal_reservations/internal/models"
	"meal_reservations/internal/services"
)

// Options carries what the router needs to build its controllers.
type Options struct {
	DB             *gorm.DB
	Clock          services.Clock
	Mailer         mailer.Mailer
	Hub            *controllers.ReportHub
	FrontendURL    string
	AllowedOrigins []string
	// AccessLog, when set, is installed ahead of every other middleware.
	AccessLog gin.HandlerFunc
}

// Handlers bundles the controllers and middleware chains shared by the route files.
type Handlers struct {
	auth         *controllers.AuthController
	menu         *controllers.MenuController
	reservations *controllers.ReservationController
	stats        *controllers.StatsController
	settings     *controllers.SettingsController
	admin        *controllers.AdminController
	reports      *controllers.ReportSocketController

	requireAuth  []gin.HandlerFunc
	requireAdmin []gin.HandlerFunc
	requireSuper []gin.HandlerFunc
	authLimiter  gin.HandlerFunc
	clock        services.Clock
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	if opts.AccessLog != nil {
		r.Use(opts.AccessLog)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.Hub == nil {
		opts.Hub = controllers.NewReportHub()
	}

	settings := services.NewSettingsService(opts.DB)
	users := services.NewUserService(opts.DB, opts.Mailer, opts.FrontendURL)
	menus := services.NewMenuService(opts.DB, opts.Clock)
	reservations := services.NewReservationService(opts.DB, opts.Clock, settings, opts.Hub)
	stats := services.NewStatsService(opts.DB, opts.Clock)

	authed := []gin.HandlerFunc{middleware.RequireAuth(), middleware.Maintenance(settings)}
	h := Handlers{
		auth:         controllers.NewAuthController(users, opts.Clock),
		menu:         controllers.NewMenuController(menus, opts.Clock),
		reservations: controllers.NewReservationController(reservations),
		stats:        controllers.NewStatsController(stats),
		settings:     controllers.NewSettingsController(settings),
		admin:        controllers.NewAdminController(users),
		reports:      controllers.NewReportSocketController(opts.Hub, stats),

		requireAuth:  authed,
		requireAdmin: append(append([]gin.HandlerFunc{}, authed...), middleware.RequireRole("Solo administradores", models.RoleAdmin, models.RoleSuperAdmin)),
		requireSuper: append(append([]gin.HandlerFunc{}, authed...), middleware.RequireRole("Requiere privilegios de Super Admin", models.RoleSuperAdmin)),
		authLimiter:  middleware.NewRateLimiter(100, 15*time.Minute).Middleware(),
		clock:        opts.Clock,
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "nextMonday": h.clock.NextWeek()})
	})

	AuthRoutes(api, h)
	MenuRoutes(api, h)
	ReservationRoutes(api, h)
	StatsRoutes(api, h)
	SettingsRoutes(api, h)
	AdminRoutes(api, h)
	WebSocketRoutes(r, h)

	return r
}
