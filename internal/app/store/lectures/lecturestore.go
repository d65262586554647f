package lecturestore

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
	return &Store{c: db.Collection("lectures")}
}

// Create inserts a lecture belonging to courseID.
func (s *Store) Create(ctx context.Context, l models.Lecture) (models.Lecture, error) {
	l.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lecture{}, err
	}
	return l, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lecture, error) {
	var l models.Lecture
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByCourse returns a course's lectures in creation order.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Lecture, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	lectures := []models.Lecture{}
	if err := cur.All(ctx, &lectures); err != nil {
		return nil, err
	}
	return lectures, nil
}

// Update holds the editable lecture fields; nil means unchanged.
type Update struct {
	Title         *string
	VideoURL      *string
	IsPreviewFree *bool
}

// Update applies a partial edit and returns the fresh document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Lecture, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.VideoURL != nil {
		set["video_url"] = *upd.VideoURL
	}
	if upd.IsPreviewFree != nil {
		set["is_preview_free"] = *upd.IsPreviewFree
	}

	var l models.Lecture
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&l)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

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

// DeleteByCourse removes every lecture of a course. Used when the
// course itself is deleted; returns how many documents went away.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
