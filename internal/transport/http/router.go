package http

import (
	"net/http"

	"github.com/campus-market-auth/internal/application/auth"
	"github.com/campus-market-auth/internal/application/otp"
	"github.com/campus-market-auth/internal/application/session"
	"github.com/campus-market-auth/internal/application/user"
	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/gate"
	"github.com/campus-market-auth/internal/transport/http/handler"
	appmiddleware "github.com/campus-market-auth/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Router is the application handler plus the resources it owns.
type Router struct {
	http.Handler
	limiter *appmiddleware.RateLimiter
}

// Close stops background work started by NewRouter.
func (r *Router) Close() { r.limiter.Stop() }

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) *Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	codeSvc := otp.NewService(otp.ServiceDeps{
		Store:  deps.CodeRepo,
		Sender: deps.CodeSender,
		Config: otp.Config{
			TTL:                  cfg.OTP.TTL,
			MaxAttempts:          cfg.OTP.MaxAttempts,
			InstitutionalDomains: cfg.OTP.InstitutionalDomains,
			HashCost:             cfg.OTP.HashCost,
		},
	})
	userSvc := user.NewService(deps.UserRepo)
	sessionSvc := session.NewService(deps.SessionRepo, deps.Tokens)
	authDeps := auth.ServiceDeps{
		Codes:                codeSvc,
		Accounts:             userSvc,
		Sessions:             sessionSvc,
		InstitutionalDomains: cfg.OTP.InstitutionalDomains,
	}
	if deps.Google != nil {
		authDeps.Google = deps.Google
	}
	authSvc := auth.NewService(authDeps)

	authMw := appmiddleware.Auth(deps.Tokens, cfg.Cookie.Name)
	gateMw := appmiddleware.Gate(gate.New(gate.Config{
		PublicPaths:         cfg.Gate.PublicPaths,
		ExemptPrefixes:      cfg.Gate.ExemptPrefixes,
		RestrictedPaths:     cfg.Gate.RestrictedPaths,
		VerifyPath:          cfg.Gate.VerifyPath,
		CompleteProfilePath: cfg.Gate.CompleteProfilePath,
		LandingPath:         cfg.Gate.LandingPath,
	}), deps.Tokens, cfg.Cookie.Name)

	// Applied to the unauthenticated code and sign-in endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst, cfg.RateTrustProxy)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, cfg.Cookie)
	sessionH := handler.NewSessionHandler(sessionSvc, userSvc, cfg.Cookie)
	profileH := handler.NewProfileHandler(authSvc, cfg.Cookie)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/auth/otp/request", authH.RequestCode)
			r.Post("/auth/otp/verify", authH.VerifyCode)
			r.Post("/auth/google", authH.GoogleCallback)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Get("/session", sessionH.GetCurrent)
			r.Post("/session/logout", sessionH.Logout)
			r.Post("/profile", profileH.Complete)
		})
	})

	// ── Pages (gated) ────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(gateMw)
		r.Get("/", handler.Page)
		r.Get("/*", handler.Page)
	})

	return &Router{Handler: r, limiter: sensitiveRL}
}
