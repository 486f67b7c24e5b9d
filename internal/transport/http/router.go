package http

import (
	"net/http"

	"github.com/go-blog-nosql/internal/application/auth"
	"github.com/go-blog-nosql/internal/application/blog"
	"github.com/go-blog-nosql/internal/application/otp"
	"github.com/go-blog-nosql/internal/application/user"
	"github.com/go-blog-nosql/internal/config"
	"github.com/go-blog-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-blog-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	ProfileRepo ProfileRepository
	OTPRepo     OTPRepository
	BlogRepo    BlogRepository
	Images      ImageStore
	EmailIndex  EmailIndex
	Mail        MailQueue
	// Limiter is optional; nil disables OTP attempt throttling.
	Limiter AttemptLimiter
	Tokens  TokenProvider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 on the credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		UserRepo: deps.UserRepo,
		OTPRepo:  deps.OTPRepo,
		Mailer:   deps.Mail,
		Limiter:  deps.Limiter,
		TTL:      cfg.OTPTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		ProfileRepo: deps.ProfileRepo,
		EmailIndex:  deps.EmailIndex,
		OTP:         otpSvc,
		Tokens:      deps.Tokens,
	})
	userSvc := user.NewService(user.ServiceDeps{ProfileRepo: deps.ProfileRepo, Images: deps.Images})
	blogSvc := blog.NewService(deps.BlogRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, otpSvc)
	userH := handler.NewUserHandler(authSvc, userSvc, cfg.CookieSecure)
	blogH := handler.NewBlogHandler(blogSvc)

	identify := appmiddleware.Identify(deps.Tokens)
	anonymous := func(h http.HandlerFunc) http.Handler {
		return appmiddleware.AllowAnonymous(identify(h))
	}

	r.Method(http.MethodGet, "/", anonymous(healthH.Root))

	r.Route("/v1", func(r chi.Router) {
		// ── Anonymous routes ─────────────────────────────────────────────────
		r.Method(http.MethodGet, "/health-check/{action}", anonymous(healthH.Ping))
		r.Method(http.MethodGet, "/blog/get-blog/{id}", anonymous(blogH.Get))
		r.Method(http.MethodGet, "/blog/get-blogs", anonymous(blogH.List))

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Method(http.MethodPost, "/auth/signup", anonymous(authH.Signup))
			r.Method(http.MethodPost, "/auth/verify-user", anonymous(authH.VerifyUser))
			r.Method(http.MethodPut, "/auth/resend-otp", anonymous(authH.ResendOTP))
			r.Method(http.MethodPost, "/user/login", anonymous(userH.Login))
		})

		// ── Identified routes ────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(identify)
			r.Use(appmiddleware.RequireIdentity)

			r.Get("/user/get-profile", userH.GetProfile)
			r.With(appmiddleware.RequireVerified).Put("/user/update-profile", userH.UpdateProfile)

			r.Post("/blog/create-blog", blogH.Create)
			r.Get("/blog/user-blogs", blogH.UserBlogs)
			r.Put("/blog/update-blog/{id}", blogH.Update)
			r.Delete("/blog/delete-blog/{id}", blogH.Delete)
		})
	})

	return r
}
