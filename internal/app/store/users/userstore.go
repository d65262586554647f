package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursehub/coursehub/internal/app/system/normalize"
	"github.com/coursehub/coursehub/internal/domain/models"
)

// BcryptCost for password and OTP-code hashes.
const BcryptCost = 10

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidOtp is returned when the submitted code is wrong or expired.
	// The two cases are deliberately not distinguished.
	ErrInvalidOtp = errors.New("invalid OTP")
	// ErrOtpNotVerified is returned when resetPassword is attempted without a verified OTP.
	ErrOtpNotVerified = errors.New("OTP verification required")

	errBadRole = errors.New(`role must be "student"|"educator"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// PasswordHash may be empty (Google-only accounts).
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = "student"
	}

	switch u.Role {
	case "student", "educator":
		// ok
	default:
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields a user may change about themselves.
// Empty PhotoURL means "keep the current photo".
type ProfileUpdate struct {
	Name        string
	Description string
	PhotoURL    string
}

// UpdateProfile applies a profile update and returns the fresh document.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{
		"name":        normalize.Name(upd.Name),
		"description": upd.Description,
		"updated_at":  time.Now().UTC(),
	}
	if upd.PhotoURL != "" {
		set["photo_url"] = upd.PhotoURL
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| OTP password-reset state machine: NoOtp → OtpSent → Verified → NoOtp        |
*─────────────────────────────────────────────────────────────────────────────*/

// SetResetOtp stores the bcrypt hash of a freshly generated code with
// its expiry, overwriting any prior code and clearing the verified
// flag. Returns mongo.ErrNoDocuments for unknown emails.
func (s *Store) SetResetOtp(ctx context.Context, email, code string, expiresAt time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{
			"reset_otp_hash": string(hash),
			"otp_expires_at": expiresAt.UTC(),
			"otp_verified":   false,
			"updated_at":     time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// VerifyOtp transitions to Verified only when the submitted code
// matches the stored hash and the expiry has not elapsed. The code is
// cleared on success (single use). Any other combination returns
// ErrInvalidOtp and leaves the state unchanged.
func (s *Store) VerifyOtp(ctx context.Context, email, code string) error {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrInvalidOtp
		}
		return err
	}

	if u.ResetOtpHash == "" || u.OtpExpiresAt == nil || time.Now().After(*u.OtpExpiresAt) {
		return ErrInvalidOtp
	}
	if bcrypt.CompareHashAndPassword([]byte(u.ResetOtpHash), []byte(code)) != nil {
		return ErrInvalidOtp
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{
			"$set":   bson.M{"otp_verified": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"reset_otp_hash": "", "otp_expires_at": ""},
		},
	)
	return err
}

// ResetPassword stores a new password hash. Only permitted from the
// Verified state; clears the flag so the next reset needs a new OTP.
func (s *Store) ResetPassword(ctx context.Context, email, password string) error {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrOtpNotVerified
		}
		return err
	}
	if !u.OtpVerified {
		return ErrOtpNotVerified
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return err
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{
			"password_hash": string(hash),
			"otp_verified":  false,
			"updated_at":    time.Now().UTC(),
		}},
	)
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*
| Enrollment                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// AddEnrolledCourse pushes courseID onto the user's enrolled list.
// $addToSet keeps the no-duplicates invariant even when two verify
// calls race. Returns true when the list actually grew.
func (s *Store) AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) (bool, error) {
	// No updated_at bump here: ModifiedCount must reflect the
	// $addToSet alone so callers can tell a fresh enrollment from an
	// idempotent re-verify.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"enrolled_courses": courseID}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, mongo.ErrNoDocuments
	}
	return res.ModifiedCount > 0, nil
}
