package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/inotebook/inotebook-go/internal/middleware"
)

// RouterConfig carries the settings the router needs from the process config.
type RouterConfig struct {
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy derives the client IP from X-Forwarded-For, X-Real-IP and
	// True-Client-IP. Those headers are client controlled unless a proxy
	// rewrites them, so the rate limiter keys on RemoteAddr by default.
	TrustProxy bool
}

// NewRouter wires every API route. ctx bounds background work started by
// middleware such as the rate limiter sweeper.
func NewRouter(ctx context.Context, cfg RouterConfig, auth *AuthHandler, notes *NoteHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Post("/createuser", auth.HandleRegister)
			r.Post("/login", auth.HandleLogin)
			r.Post("/forgot-password", auth.HandleForgotPassword)
			r.Post("/verify-otp", auth.HandleVerifyOTP)
			r.Put("/forgot-update-password", auth.HandleResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTSecret))
			r.Post("/getuser", auth.HandleGetUser)
			r.Put("/update-user-data/{id}", auth.HandleUpdateName)
			r.Post("/authenticate/{id}", auth.HandleAuthenticate)
			r.Put("/update-user-email/{id}", auth.HandleUpdateEmail)
			r.Post("/update-user-email/{id}", auth.HandleUpdateEmail)
			r.Put("/update-user-password/{id}", auth.HandleUpdatePassword)
			r.Delete("/delete-user/{id}", auth.HandleDeleteUser)
		})
	})

	r.Route("/api/notes", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))
		r.Get("/fetchnotes", notes.HandleListNotes)
		r.Post("/addnote", notes.HandleCreateNote)
		r.Put("/updatenote/{id}", notes.HandleUpdateNote)
		r.Delete("/deletenote/{id}", notes.HandleDeleteNote)
	})

	return r
}
