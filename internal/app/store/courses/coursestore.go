package coursestore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursehub/coursehub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// Create inserts a new course owned by creatorID. Callers are expected
// to have normalized the level and sanitized the description already.
func (s *Store) Create(ctx context.Context, course models.Course) (models.Course, error) {
	course.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, course); err != nil {
		return models.Course{}, err
	}
	return course, nil
}

// GetByID loads a single course. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListPublished returns all published courses, newest first.
func (s *Store) ListPublished(ctx context.Context) ([]models.Course, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"is_published": true},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := []models.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListByCreator returns every course an educator owns, published or not,
// newest first.
func (s *Store) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Course, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"creator_id": creatorID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := []models.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Update holds the editable course fields. Nil pointers mean
// "leave unchanged", so a partial edit never clobbers other fields.
type Update struct {
	Title        *string
	Subtitle     *string
	Description  *string
	Category     *string
	Level        *string
	Price        *float64
	Thumbnail    *string
	IsPublished  *bool
}

// Update applies a partial edit and returns the fresh document.
// Returns mongo.ErrNoDocuments when the course does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Course, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Subtitle != nil {
		set["subtitle"] = *upd.Subtitle
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Level != nil {
		// Blank level means "no level": stored as absent, never "".
		if *upd.Level == "" {
			unset["level"] = ""
		} else {
			set["level"] = *upd.Level
		}
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Thumbnail != nil {
		set["thumbnail"] = *upd.Thumbnail
	}
	if upd.IsPublished != nil {
		set["is_published"] = *upd.IsPublished
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var c models.Course
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a course document. Lecture cleanup is the caller's
// job so a failed lecture sweep doesn't leave the course half-deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddLectureRef appends a lecture ID to the course's ordered lecture list.
func (s *Store) AddLectureRef(ctx context.Context, courseID, lectureID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{
			"$push": bson.M{"lectures": lectureID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveLectureRef drops a lecture ID from the course's lecture list.
func (s *Store) RemoveLectureRef(ctx context.Context, courseID, lectureID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{
			"$pull": bson.M{"lectures": lectureID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddReviewRef appends a review ID to the course's review list.
func (s *Store) AddReviewRef(ctx context.Context, courseID, reviewID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{
			"$push": bson.M{"reviews": reviewID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddEnrolledStudent records userID on the course roster. $addToSet
// keeps the roster duplicate-free when payment verification retries.
func (s *Store) AddEnrolledStudent(ctx context.Context, courseID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$addToSet": bson.M{"enrolled_students": userID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
