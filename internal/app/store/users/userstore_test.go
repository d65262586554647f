package userstore_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/domain/models"
	"github.com/coursehub/coursehub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:  "Ada Lovelace",
		Email: "  Ada@Example.COM ",
		Role:  "educator",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DefaultsToStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "No Role", Email: "norole@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Role != "student" {
		t.Errorf("expected default role student, got %q", created.Role)
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "admin"})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "First", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "Second", Email: "DUP@example.com"})
	if err != userstore.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// No second document may exist.
	n, err := db.Collection("users").CountDocuments(ctx, map[string]any{"email": "dup@example.com"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly 1 document, got %d", n)
	}
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "Case", Email: "case@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, "CASE@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Error("expected same user regardless of email case")
	}
}

func TestStore_OtpFlow_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Name: "Otp", Email: "otp@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetResetOtp(ctx, u.Email, "4821", time.Now().Add(5*time.Minute)); err != nil {
		t.Fatalf("SetResetOtp failed: %v", err)
	}

	// Stored hash must not be the plain code.
	stored, _ := store.GetByEmail(ctx, u.Email)
	if stored.ResetOtpHash == "4821" || stored.ResetOtpHash == "" {
		t.Error("expected a bcrypt hash of the code to be stored")
	}

	if err := store.VerifyOtp(ctx, u.Email, "4821"); err != nil {
		t.Fatalf("VerifyOtp failed: %v", err)
	}

	// Code is single-use: the hash is gone, verified flag set.
	stored, _ = store.GetByEmail(ctx, u.Email)
	if stored.ResetOtpHash != "" {
		t.Error("expected OTP hash cleared after verification")
	}
	if !stored.OtpVerified {
		t.Error("expected otp_verified set")
	}

	// Second verify with the same code must fail.
	if err := store.VerifyOtp(ctx, u.Email, "4821"); err != userstore.ErrInvalidOtp {
		t.Errorf("expected ErrInvalidOtp on reuse, got %v", err)
	}

	if err := store.ResetPassword(ctx, u.Email, "new-password-123"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	stored, _ = store.GetByEmail(ctx, u.Email)
	if stored.OtpVerified {
		t.Error("expected otp_verified cleared after reset")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password-123")) != nil {
		t.Error("expected new password hash to match")
	}
}

func TestStore_VerifyOtp_WrongCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := store.Create(ctx, models.User{Name: "Wrong", Email: "wrong@example.com"})
	if err := store.SetResetOtp(ctx, u.Email, "1111", time.Now().Add(5*time.Minute)); err != nil {
		t.Fatalf("SetResetOtp failed: %v", err)
	}

	if err := store.VerifyOtp(ctx, u.Email, "2222"); err != userstore.ErrInvalidOtp {
		t.Fatalf("expected ErrInvalidOtp, got %v", err)
	}

	// State unchanged: still unverified, hash still present.
	stored, _ := store.GetByEmail(ctx, u.Email)
	if stored.OtpVerified {
		t.Error("wrong code must not verify")
	}
	if stored.ResetOtpHash == "" {
		t.Error("wrong code must not clear the stored OTP")
	}
}

func TestStore_VerifyOtp_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := store.Create(ctx, models.User{Name: "Expired", Email: "expired@example.com"})
	if err := store.SetResetOtp(ctx, u.Email, "3333", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("SetResetOtp failed: %v", err)
	}

	if err := store.VerifyOtp(ctx, u.Email, "3333"); err != userstore.ErrInvalidOtp {
		t.Fatalf("expected ErrInvalidOtp for expired code, got %v", err)
	}
}

func TestStore_ResetPassword_RequiresVerified(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := store.Create(ctx, models.User{Name: "NoVerify", Email: "noverify@example.com"})

	if err := store.ResetPassword(ctx, u.Email, "whatever-password"); err != userstore.ErrOtpNotVerified {
		t.Fatalf("expected ErrOtpNotVerified, got %v", err)
	}
}

func TestStore_SetResetOtp_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.SetResetOtp(ctx, "ghost@example.com", "9999", time.Now().Add(5*time.Minute))
	if err != mongo.ErrNoDocuments {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_AddEnrolledCourse_Dedupes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := store.Create(ctx, models.User{Name: "Student", Email: "student@example.com"})
	courseID := primitive.NewObjectID()

	added, err := store.AddEnrolledCourse(ctx, u.ID, courseID)
	if err != nil {
		t.Fatalf("AddEnrolledCourse failed: %v", err)
	}
	if !added {
		t.Error("expected first enrollment to add")
	}

	added, err = store.AddEnrolledCourse(ctx, u.ID, courseID)
	if err != nil {
		t.Fatalf("second AddEnrolledCourse failed: %v", err)
	}
	if added {
		t.Error("expected re-enrollment to be a no-op")
	}

	got, _ := store.GetByID(ctx, u.ID)
	if len(got.EnrolledCourses) != 1 {
		t.Errorf("expected 1 enrolled course, got %d", len(got.EnrolledCourses))
	}
}

func TestStore_UpdateProfile_KeepsPhotoWhenEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := store.Create(ctx, models.User{Name: "Photo", Email: "photo@example.com", PhotoURL: "https://cdn.example.com/p.png"})

	got, err := store.UpdateProfile(ctx, u.ID, userstore.ProfileUpdate{Name: "Renamed", Description: "bio"})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if got.Name != "Renamed" || got.Description != "bio" {
		t.Errorf("profile fields not updated: %+v", got)
	}
	if got.PhotoURL != "https://cdn.example.com/p.png" {
		t.Errorf("expected photo kept, got %q", got.PhotoURL)
	}
}
