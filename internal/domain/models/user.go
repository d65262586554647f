// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents students and educators.
//
// PasswordHash is absent for accounts created through Google sign-in;
// those users must reset a password via the OTP flow before password
// login works.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // lowercase, unique index
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"` // student | educator
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	PhotoURL     string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`

	// Courses the user has paid for. Deduplicated before every push.
	EnrolledCourses []primitive.ObjectID `bson:"enrolled_courses,omitempty" json:"enrolled_courses,omitempty"`

	// Password-reset OTP state. The code itself is never stored, only
	// its bcrypt hash. OtpVerified gates resetPassword and is cleared
	// once the reset completes.
	ResetOtpHash string     `bson:"reset_otp_hash,omitempty" json:"-"`
	OtpExpiresAt *time.Time `bson:"otp_expires_at,omitempty" json:"-"`
	OtpVerified  bool       `bson:"otp_verified,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPassword reports whether password login is possible for this user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsEnrolledIn reports whether courseID is already in EnrolledCourses.
func (u *User) IsEnrolledIn(courseID primitive.ObjectID) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
