// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authgooglefeature "github.com/coursehub/coursehub/internal/app/features/authgoogle"
	coursesfeature "github.com/coursehub/coursehub/internal/app/features/courses"
	healthfeature "github.com/coursehub/coursehub/internal/app/features/health"
	loginfeature "github.com/coursehub/coursehub/internal/app/features/login"
	passwordresetfeature "github.com/coursehub/coursehub/internal/app/features/passwordreset"
	paymentsfeature "github.com/coursehub/coursehub/internal/app/features/payments"
	profilefeature "github.com/coursehub/coursehub/internal/app/features/profile"
	reviewsfeature "github.com/coursehub/coursehub/internal/app/features/reviews"
	coursestore "github.com/coursehub/coursehub/internal/app/store/courses"
	lecturestore "github.com/coursehub/coursehub/internal/app/store/lectures"
	"github.com/coursehub/coursehub/internal/app/store/oauthstate"
	reviewstore "github.com/coursehub/coursehub/internal/app/store/reviews"
	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/mailer"
	"github.com/coursehub/coursehub/internal/app/system/media"
	"github.com/coursehub/coursehub/internal/app/system/payments"
	"github.com/coursehub/coursehub/internal/app/system/ratelimit"
)

// sessionMaxAge matches the cookie lifetime issued at login.
const sessionMaxAge = 7 * 24 * time.Hour

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the Mongo client and database bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// CourseHub is a JSON API for a single-page frontend, so every feature
// mounts under /api except the health check. Auth sub-features
// (password login, OTP reset, Google OAuth) share the /api/auth prefix.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, sessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores share the single database handle.
	users := userstore.New(deps.MongoDatabase)
	courses := coursestore.New(deps.MongoDatabase)
	lectures := lecturestore.New(deps.MongoDatabase)
	reviews := reviewstore.New(deps.MongoDatabase)
	states := oauthstate.New(deps.MongoDatabase)

	// External integrations. Missing credentials disable the feature
	// rather than the whole app; ValidateConfig already warned.
	var uploader media.Uploader = media.Disabled{}
	if appCfg.CloudinaryCloudName != "" {
		cld, err := media.NewCloudinary(appCfg.CloudinaryCloudName, appCfg.CloudinaryAPIKey, appCfg.CloudinaryAPISecret, logger)
		if err != nil {
			logger.Error("cloudinary init failed", zap.Error(err))
			return nil, err
		}
		uploader = cld
	}

	var gateway payments.Gateway = payments.Disabled{}
	if appCfg.RazorpayKeyID != "" {
		rzp, err := payments.NewRazorpay(appCfg.RazorpayKeyID, appCfg.RazorpayKeySecret, logger)
		if err != nil {
			logger.Error("razorpay init failed", zap.Error(err))
			return nil, err
		}
		gateway = rzp
	}

	mail, err := mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, appCfg.MailFromName, logger)
	if err != nil {
		logger.Error("mailer init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: password signup/login/logout, OTP password reset,
	// and the Google OAuth flow all live under /api/auth.
	loginHandler := loginfeature.NewHandler(users, sessionMgr, ratelimit.NewLoginLimiter(), logger)
	resetHandler := passwordresetfeature.NewHandler(users, mail, ratelimit.NewOtpLimiter(), appCfg.SiteName, logger)
	googleHandler := authgooglefeature.NewHandler(users, states, sessionMgr, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.FrontendURL, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(sessionMgr.LoadSessionUser)
		loginfeature.Register(r, loginHandler)
		passwordresetfeature.Register(r, resetHandler)
		authgooglefeature.Register(r, googleHandler)
	})

	// Profile
	profileHandler := profilefeature.NewHandler(users, uploader, logger)
	r.Mount("/api/user", profilefeature.Routes(profileHandler, sessionMgr))

	// Courses and lectures
	coursesHandler := coursesfeature.NewHandler(courses, lectures, uploader, logger)
	r.Mount("/api/course", coursesfeature.Routes(coursesHandler, sessionMgr))

	// Reviews
	reviewsHandler := reviewsfeature.NewHandler(reviews, courses, logger)
	r.Mount("/api/review", reviewsfeature.Routes(reviewsHandler, sessionMgr))

	// Payments and enrollment
	paymentsHandler := paymentsfeature.NewHandler(courses, users, gateway, logger)
	r.Mount("/api/payment", paymentsfeature.Routes(paymentsHandler, sessionMgr))

	return r, nil
}
