// internal/domain/models/lecture.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lecture is a single video unit inside a course. IsPreviewFree marks
// lectures that are viewable without enrollment.
type Lecture struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	VideoURL      string             `bson:"video_url,omitempty" json:"video_url,omitempty"`
	IsPreviewFree bool               `bson:"is_preview_free" json:"is_preview_free"`
	CourseID      primitive.ObjectID `bson:"course_id" json:"course_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
