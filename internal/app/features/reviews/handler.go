// Package reviews implements the course review endpoints: one review
// per student per course, and a site-wide testimonial feed.
package reviews

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	coursestore "github.com/coursehub/coursehub/internal/app/store/courses"
	reviewstore "github.com/coursehub/coursehub/internal/app/store/reviews"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/htmlsanitize"
	"github.com/coursehub/coursehub/internal/app/system/inputval"
	"github.com/coursehub/coursehub/internal/app/system/jsonutil"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
	"github.com/coursehub/coursehub/internal/domain/models"
)

type Handler struct {
	Reviews *reviewstore.Store
	Courses *coursestore.Store
	Log     *zap.Logger
}

func NewHandler(reviews *reviewstore.Store, courses *coursestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Reviews: reviews, Courses: courses, Log: logger}
}

type createRequest struct {
	CourseID string `json:"courseId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// ServeCreate handles POST /api/review/createreview (signed-in).
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if !inputval.IsValidRating(req.Rating) {
		jsonutil.Error(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create review")
	defer cancel()

	if _, err := h.Courses.GetByID(ctx, courseID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		h.Log.Error("create review: load course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not create review")
		return
	}

	review, err := h.Reviews.Create(ctx, models.Review{
		CourseID: courseID,
		UserID:   userID,
		Rating:   req.Rating,
		Comment:  htmlsanitize.Sanitize(req.Comment),
	})
	if err != nil {
		if err == reviewstore.ErrAlreadyReviewed {
			jsonutil.Error(w, http.StatusBadRequest, "you have already reviewed this course")
			return
		}
		h.Log.Error("create review", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not create review")
		return
	}

	if err := h.Courses.AddReviewRef(ctx, courseID, review.ID); err != nil {
		h.Log.Error("link review to course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not create review")
		return
	}

	h.Log.Info("review created",
		zap.String("review_id", review.ID.Hex()),
		zap.String("course_id", courseID.Hex()),
		zap.String("user_id", su.ID))
	jsonutil.Respond(w, http.StatusCreated, review)
}

// ServeList handles GET /api/review/getreview: every review, newest
// first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list reviews")
	defer cancel()

	reviews, err := h.Reviews.ListAll(ctx)
	if err != nil {
		h.Log.Error("list reviews", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load reviews")
		return
	}
	jsonutil.Respond(w, http.StatusOK, reviews)
}
