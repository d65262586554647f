// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rating plus comment left by a student on a course.
// At most one review per (course, user) pair.
type Review struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rating   int                `bson:"rating" json:"rating"` // 1..5
	Comment  string             `bson:"comment,omitempty" json:"comment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
