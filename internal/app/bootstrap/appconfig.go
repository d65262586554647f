// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds application-specific configuration for CourseHub.
//
// Values are loaded through WAFFLE's config system, which merges (in
// precedence order) command-line flags, COURSEHUB_* environment
// variables, config files, and the defaults declared in config.go.
//
// Fields fall into a few groups:
//   - MongoDB connection settings
//   - Session cookie settings
//   - SMTP settings for the password-reset OTP mail
//   - Google OAuth credentials
//   - Cloudinary credentials for thumbnail/video/avatar uploads
//   - Razorpay credentials for course purchases
//   - Site identity and URLs used in redirects and outgoing mail
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Sessions
	SessionKey    string
	SessionName   string
	SessionDomain string

	// Email/SMTP
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Site identity and URLs
	SiteName    string
	BaseURL     string
	FrontendURL string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Cloudinary media storage
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Razorpay payments
	RazorpayKeyID     string
	RazorpayKeySecret string
}
