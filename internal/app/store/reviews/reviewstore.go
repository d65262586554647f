package reviewstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursehub/coursehub/internal/domain/models"
)

// ErrAlreadyReviewed is returned when a user submits a second review
// for the same course. Enforced by the unique (course_id, user_id) index.
var ErrAlreadyReviewed = errors.New("you have already reviewed this course")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

// Create inserts a review. One review per user per course.
func (s *Store) Create(ctx context.Context, r models.Review) (models.Review, error) {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Review{}, ErrAlreadyReviewed
		}
		return models.Review{}, err
	}
	return r, nil
}

// ListAll returns every review, newest first. The storefront shows a
// site-wide testimonial feed rather than per-course pages.
func (s *Store) ListAll(ctx context.Context) ([]models.Review, error) {
	cur, err := s.c.Find(ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByCourse returns a course's reviews, newest first.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Review, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
