// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course levels. A course may also have no level at all; an empty
// string from a form is normalized to absent before it reaches the
// store and is never persisted as "".
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a sellable unit of content created by one educator.
//
// Lectures and Reviews are owned by exactly one course via the
// reference arrays here; EnrolledStudents mirrors the students'
// enrolled_courses arrays (mutual references, see payment verify).
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Subtitle    string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"` // sanitized HTML
	Category    string             `bson:"category" json:"category"`
	Level       string             `bson:"level,omitempty" json:"level,omitempty"` // Beginner|Intermediate|Advanced or absent
	Price       float64            `bson:"price,omitempty" json:"price,omitempty"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`

	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	IsPublished bool               `bson:"is_published" json:"is_published"`

	EnrolledStudents []primitive.ObjectID `bson:"enrolled_students,omitempty" json:"enrolled_students,omitempty"`
	Lectures         []primitive.ObjectID `bson:"lectures,omitempty" json:"lectures,omitempty"`
	Reviews          []primitive.ObjectID `bson:"reviews,omitempty" json:"reviews,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsValidLevel reports whether level is one of the allowed values.
// The empty string is not valid here; normalize it to absent first.
func IsValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// HasStudent reports whether userID is already in EnrolledStudents.
func (c *Course) HasStudent(userID primitive.ObjectID) bool {
	for _, id := range c.EnrolledStudents {
		if id == userID {
			return true
		}
	}
	return false
}
