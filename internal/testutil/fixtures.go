package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursehub/coursehub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that read chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
	n  int
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent inserts a student account with the given password and
// returns the stored document.
func (f *Fixtures) CreateStudent(ctx context.Context, name, password string) models.User {
	return f.createUser(ctx, name, "student", password)
}

// CreateEducator inserts an educator account with the given password.
func (f *Fixtures) CreateEducator(ctx context.Context, name, password string) models.User {
	return f.createUser(ctx, name, "educator", password)
}

func (f *Fixtures) createUser(ctx context.Context, name, role, password string) models.User {
	f.t.Helper()

	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			f.t.Fatalf("hash fixture password: %v", err)
		}
		hash = string(h)
	}

	f.n++
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        fmt.Sprintf("user%d@test.com", f.n),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert fixture user: %v", err)
	}
	return u
}

// CreateCourse inserts a course owned by creatorID.
func (f *Fixtures) CreateCourse(ctx context.Context, creatorID primitive.ObjectID, title string, published bool) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Course{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Category:    "programming",
		Level:       models.LevelBeginner,
		Price:       499,
		CreatorID:   creatorID,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("insert fixture course: %v", err)
	}
	return c
}

// CreateLecture inserts a lecture for courseID and links it on the
// course document, the same shape the handlers maintain.
func (f *Fixtures) CreateLecture(ctx context.Context, courseID primitive.ObjectID, title string) models.Lecture {
	f.t.Helper()

	now := time.Now().UTC()
	l := models.Lecture{
		ID:        primitive.NewObjectID(),
		Title:     title,
		VideoURL:  "https://media.test/v/" + primitive.NewObjectID().Hex(),
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("lectures").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("insert fixture lecture: %v", err)
	}
	if _, err := f.db.Collection("courses").UpdateOne(ctx,
		map[string]any{"_id": courseID},
		map[string]any{"$push": map[string]any{"lectures": l.ID}},
	); err != nil {
		f.t.Fatalf("link fixture lecture: %v", err)
	}
	return l
}

// Enroll marks userID as enrolled in courseID on both documents.
func (f *Fixtures) Enroll(ctx context.Context, userID, courseID primitive.ObjectID) {
	f.t.Helper()

	if _, err := f.db.Collection("users").UpdateOne(ctx,
		map[string]any{"_id": userID},
		map[string]any{"$addToSet": map[string]any{"enrolled_courses": courseID}},
	); err != nil {
		f.t.Fatalf("enroll fixture user: %v", err)
	}
	if _, err := f.db.Collection("courses").UpdateOne(ctx,
		map[string]any{"_id": courseID},
		map[string]any{"$addToSet": map[string]any{"enrolled_students": userID}},
	); err != nil {
		f.t.Fatalf("enroll fixture course: %v", err)
	}
}
