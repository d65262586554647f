package mailer

import (
	"strings"
	"testing"
)

func TestBuildResetOtpEmail(t *testing.T) {
	email := BuildResetOtpEmail(ResetOtpData{
		SiteName:  "CourseHub",
		Code:      "4821",
		ExpiresIn: "5 minutes",
	})

	if !strings.Contains(email.Subject, "CourseHub") {
		t.Errorf("subject missing site name: %q", email.Subject)
	}
	if !strings.Contains(email.TextBody, "4821") {
		t.Error("text body missing the code")
	}
	if !strings.Contains(email.HTMLBody, "4821") {
		t.Error("HTML body missing the code")
	}
	if !strings.Contains(email.TextBody, "5 minutes") {
		t.Error("text body missing the expiry")
	}
	if email.To != "" {
		t.Error("To should be left for the caller to set")
	}
}
