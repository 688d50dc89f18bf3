package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gymstackhq/gymstack-backend/api/controllers"
	"github.com/gymstackhq/gymstack-backend/api/middleware"
	"github.com/gymstackhq/gymstack-backend/internal/admin"
	"github.com/gymstackhq/gymstack-backend/internal/auth"
	"github.com/gymstackhq/gymstack-backend/internal/clientportal"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/internal/plans"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
	"github.com/gymstackhq/gymstack-backend/pkg/metrics"
	"github.com/gymstackhq/gymstack-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics

	AccessResolver *subscriptions.AccessResolver
	AuthService    auth.Service
	SignupService  auth.SignupService
	AdminService   admin.Service
	PortalService  clientportal.Service
	MemberService  members.Service
	PlanService    plans.Service
}

// NewRouter assembles the full route tree: public auth and pricing,
// the super-admin console, and the tenant-scoped client surface.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.HTTPMetrics(p.Metrics),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	signupPolicy := middleware.SignupRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.Login(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, p.Redis, logg)).Post("/signup", controllers.Signup(p.SignupService, logg))
		r.Post("/verify-email", controllers.VerifyEmail(p.AuthService, logg))
		r.Get("/plans", controllers.PlansPublicActive(p.PlanService, logg))
	})

	// Pricing page data needs no token.
	r.Get("/api/plans/public/active", controllers.PlansPublicActive(p.PlanService, logg))

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireSuperAdmin(logg))

		r.Get("/dashboard", controllers.AdminDashboard(p.AdminService, logg))
		r.Get("/export/clients", controllers.AdminClientsExport(p.AdminService, logg))
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.AdminClientsList(p.AdminService, logg))
			r.Post("/", controllers.AdminClientCreate(p.AdminService, logg))
			r.Get("/{clientId}", controllers.AdminClientGet(p.AdminService, logg))
			r.Put("/{clientId}/status", controllers.AdminClientUpdateStatus(p.AdminService, logg))
			r.Delete("/{clientId}", controllers.AdminClientDelete(p.AdminService, logg))
		})
	})

	r.Route("/api/plans", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireSuperAdmin(logg))

		r.Get("/", controllers.PlansList(p.PlanService, logg))
		r.Post("/", controllers.PlanCreate(p.PlanService, logg))
		r.Get("/{planId}", controllers.PlanGet(p.PlanService, logg))
		r.Put("/{planId}", controllers.PlanUpdate(p.PlanService, logg))
		r.Delete("/{planId}", controllers.PlanDelete(p.PlanService, logg))
		r.Put("/{planId}/status", controllers.PlanSetStatus(p.PlanService, logg))
		r.Get("/{planId}/stats", controllers.PlanStats(p.PlanService, logg))
	})

	r.Route("/api/client", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireClient(p.AccessResolver, logg))

		r.Get("/profile", controllers.ClientProfile(p.PortalService, logg))
		r.Put("/profile", controllers.ClientProfileUpdate(p.PortalService, logg))
		r.Get("/dashboard", controllers.ClientDashboard(p.PortalService, logg))
		r.Get("/subscriptions", controllers.ClientSubscriptions(p.PortalService, logg))
		r.Get("/members/expiring", controllers.ClientMembersExpiring(p.PortalService, logg))
		r.Get("/revenue", controllers.ClientRevenue(p.PortalService, logg))
		r.Get("/subscription/status", controllers.ClientSubscriptionStatus(p.PortalService, logg))
		r.Get("/export/dashboard", controllers.ClientDashboardExport(p.MemberService, logg))
	})

	r.Route("/api/members", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireClient(p.AccessResolver, logg))

		r.Get("/", controllers.MembersList(p.MemberService, logg))
		r.Post("/", controllers.MemberCreate(p.MemberService, logg))
		r.Get("/export/csv", controllers.MembersExport(p.MemberService, logg))
		r.Get("/stats/overview", controllers.MembersStats(p.MemberService, logg))
		r.Route("/{memberId}", func(r chi.Router) {
			r.Get("/", controllers.MemberGet(p.MemberService, logg))
			r.Put("/", controllers.MemberUpdate(p.MemberService, logg))
			r.Delete("/", controllers.MemberDelete(p.MemberService, logg))
			r.Post("/payments", controllers.MemberAddPayment(p.MemberService, logg))
			r.Post("/extend", controllers.MemberExtend(p.MemberService, logg))
			r.Post("/attendance", controllers.MemberAttendance(p.MemberService, logg))
			r.Get("/qr", controllers.MemberQRCode(p.MemberService, logg))
		})
	})

	return r
}
