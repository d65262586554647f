package bootstrap

import (
	"testing"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "coursehub",
		SessionKey:    "a-strong-enough-session-key-for-tests",
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(core, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("expected config to validate, got %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.MongoURI = "not-a-mongo-uri"
	if err := ValidateConfig(core, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected invalid URI to be rejected")
	}
}

func TestValidateConfig_DefaultSessionKeyInProd(t *testing.T) {
	core := &config.CoreConfig{Env: "prod"}
	cfg := validAppConfig()
	cfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	if err := ValidateConfig(core, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected default session key to be rejected in prod")
	}
}

func TestValidateConfig_PartialIntegrations(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}

	cfg := validAppConfig()
	cfg.CloudinaryCloudName = "demo"
	if err := ValidateConfig(core, cfg, zap.NewNop()); err == nil {
		t.Error("expected half-configured cloudinary to be rejected")
	}

	cfg = validAppConfig()
	cfg.RazorpayKeyID = "rzp_test_key"
	if err := ValidateConfig(core, cfg, zap.NewNop()); err == nil {
		t.Error("expected half-configured razorpay to be rejected")
	}

	cfg = validAppConfig()
	cfg.GoogleClientSecret = "secret-only"
	if err := ValidateConfig(core, cfg, zap.NewNop()); err == nil {
		t.Error("expected half-configured google oauth to be rejected")
	}
}

func TestValidateConfig_CompleteIntegrations(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.CloudinaryCloudName = "demo"
	cfg.CloudinaryAPIKey = "key"
	cfg.CloudinaryAPISecret = "secret"
	cfg.RazorpayKeyID = "rzp_test_key"
	cfg.RazorpayKeySecret = "rzp_test_secret"
	cfg.GoogleClientID = "client-id"
	cfg.GoogleClientSecret = "client-secret"
	if err := ValidateConfig(core, cfg, zap.NewNop()); err != nil {
		t.Fatalf("expected complete integrations to validate, got %v", err)
	}
}
