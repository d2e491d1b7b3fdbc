package api

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"passvault/internal/storage"
)

func (s *Server) trustedProxies() []netip.Prefix {
	prefixes, err := s.config.HTTP.TrustedProxyPrefixes()
	if err != nil {
		s.logger.Warn("ignoring http.trusted_proxies", "error", err)
		return nil
	}
	return prefixes
}

// NewRouter mounts every route. limiter guards the unauthenticated auth endpoints.
func NewRouter(s *Server, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(TrustedRealIP(s.trustedProxies()))
	r.Use(s.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(s.config.AppHost+"/swagger/doc.json"),
	))
	r.Get("/ws", s.ServeWsHandler)

	if _, ok := s.storage.(*storage.LocalStorage); ok {
		r.Get("/files/*", s.FilesHandler)
	}

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/request-otp", s.RequestOTPHandler)
		r.Post("/forgot-password/request-otp", s.RequestPasswordResetOTPHandler)
		r.Post("/verify-otp-and-register", s.RegisterHandler)
		r.Post("/forgot-password/verify-otp", s.VerifyResetOTPHandler)
		r.Post("/forgot-password/reset", s.ResetPasswordHandler)
		r.Post("/login", s.LoginHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/logout", s.LogoutHandler)

		r.Get("/user-info", s.GetUserInfoHandler)
		r.Put("/users/{id}", s.UpdateUserHandler)
		r.Post("/upload-profile-picture", s.UploadProfilePictureHandler)
		r.Get("/profile-picture", s.GetProfilePictureHandler)
		r.Post("/verify-current-password", s.VerifyCurrentPasswordHandler)
		r.Post("/change-password", s.ChangePasswordHandler)

		r.Post("/accounts", s.CreateAccountHandler)
		r.Get("/accounts", s.ListAccountsHandler)
		r.Put("/accounts/{id}", s.UpdateAccountHandler)
		r.Delete("/accounts/{id}", s.DeleteAccountHandler)

		r.Post("/create", s.CreateItemHandler)
		r.Get("/read", s.ReadItemsHandler)
		r.Put("/update", s.UpdateItemHandler)
		r.Delete("/delete", s.DeleteItemHandler)
	})

	return r
}
