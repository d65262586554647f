// Package courses implements the course and lecture management
// endpoints: educator CRUD with media uploads, plus the public
// storefront reads.
package courses

import (
	"net/http"
	"os"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	coursestore "github.com/coursehub/coursehub/internal/app/store/courses"
	lecturestore "github.com/coursehub/coursehub/internal/app/store/lectures"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/htmlsanitize"
	"github.com/coursehub/coursehub/internal/app/system/jsonutil"
	"github.com/coursehub/coursehub/internal/app/system/media"
	"github.com/coursehub/coursehub/internal/app/system/normalize"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
	"github.com/coursehub/coursehub/internal/domain/models"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps multipart form memory. Lecture videos stream to
// a temp file beyond this, so it stays modest.
const maxUploadBytes = 32 << 20 // 32 MiB

type Handler struct {
	Courses  *coursestore.Store
	Lectures *lecturestore.Store
	Media    media.Uploader
	Log      *zap.Logger
}

func NewHandler(courses *coursestore.Store, lectures *lecturestore.Store, uploader media.Uploader, logger *zap.Logger) *Handler {
	return &Handler{
		Courses:  courses,
		Lectures: lectures,
		Media:    uploader,
		Log:      logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Course CRUD                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeCreate handles POST /api/course/create (educator only).
// Multipart form: title, category required; subtitle, description,
// level, price, thumbnail optional.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	creatorID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := r.FormValue("title")
	category := r.FormValue("category")
	if title == "" || category == "" {
		jsonutil.Error(w, http.StatusBadRequest, "title and category is required")
		return
	}

	level := normalize.CourseLevel(r.FormValue("level"))
	if level != "" && !models.IsValidLevel(level) {
		jsonutil.Error(w, http.StatusBadRequest, "invalid level")
		return
	}

	price := 0.0
	if p := r.FormValue("price"); p != "" {
		price, err = strconv.ParseFloat(p, 64)
		if err != nil || price < 0 {
			jsonutil.Error(w, http.StatusBadRequest, "invalid price")
			return
		}
	}

	course := models.Course{
		Title:       title,
		Subtitle:    r.FormValue("subtitle"),
		Description: htmlsanitize.Sanitize(r.FormValue("description")),
		Category:    category,
		Level:       level,
		Price:       price,
		CreatorID:   creatorID,
	}

	if url, ok2, failed := h.uploadFormFile(w, r, "thumbnail"); failed {
		return
	} else if ok2 {
		course.Thumbnail = url
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create course")
	defer cancel()

	created, err := h.Courses.Create(ctx, course)
	if err != nil {
		h.Log.Error("create course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not create course")
		return
	}

	h.Log.Info("course created",
		zap.String("course_id", created.ID.Hex()),
		zap.String("creator_id", su.ID))
	jsonutil.Respond(w, http.StatusCreated, created)
}

// ServePublished handles GET /api/course/getpublished.
func (h *Handler) ServePublished(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list published courses")
	defer cancel()

	courses, err := h.Courses.ListPublished(ctx)
	if err != nil {
		h.Log.Error("list published courses", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load courses")
		return
	}
	jsonutil.Respond(w, http.StatusOK, courses)
}

// ServeCreatorCourses handles GET /api/course/getcreator (signed-in).
func (h *Handler) ServeCreatorCourses(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	creatorID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list creator courses")
	defer cancel()

	courses, err := h.Courses.ListByCreator(ctx, creatorID)
	if err != nil {
		h.Log.Error("list creator courses", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load courses")
		return
	}
	jsonutil.Respond(w, http.StatusOK, courses)
}

// ServeEdit handles POST /api/course/editcourse/{courseId}
// (educator, owner only). Multipart form, partial update.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	course, su, ok := h.loadOwnedCourse(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var upd coursestore.Update
	if _, set := r.MultipartForm.Value["title"]; set {
		v := r.FormValue("title")
		upd.Title = &v
	}
	if _, set := r.MultipartForm.Value["subtitle"]; set {
		v := r.FormValue("subtitle")
		upd.Subtitle = &v
	}
	if _, set := r.MultipartForm.Value["description"]; set {
		v := htmlsanitize.Sanitize(r.FormValue("description"))
		upd.Description = &v
	}
	if _, set := r.MultipartForm.Value["category"]; set {
		v := r.FormValue("category")
		upd.Category = &v
	}
	if _, set := r.MultipartForm.Value["level"]; set {
		v := normalize.CourseLevel(r.FormValue("level"))
		if v != "" && !models.IsValidLevel(v) {
			jsonutil.Error(w, http.StatusBadRequest, "invalid level")
			return
		}
		upd.Level = &v
	}
	if _, set := r.MultipartForm.Value["price"]; set {
		v, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil || v < 0 {
			jsonutil.Error(w, http.StatusBadRequest, "invalid price")
			return
		}
		upd.Price = &v
	}
	if _, set := r.MultipartForm.Value["isPublished"]; set {
		v, err := strconv.ParseBool(r.FormValue("isPublished"))
		if err != nil {
			jsonutil.Error(w, http.StatusBadRequest, "invalid isPublished")
			return
		}
		upd.IsPublished = &v
	}

	if url, ok2, failed := h.uploadFormFile(w, r, "thumbnail"); failed {
		return
	} else if ok2 {
		upd.Thumbnail = &url
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit course")
	defer cancel()

	updated, err := h.Courses.Update(ctx, course.ID, upd)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		h.Log.Error("edit course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not update course")
		return
	}

	h.Log.Info("course updated",
		zap.String("course_id", updated.ID.Hex()),
		zap.String("creator_id", su.ID))
	jsonutil.Respond(w, http.StatusOK, updated)
}

// ServeGetByID handles GET /api/course/getcoursebyid/{courseId}.
func (h *Handler) ServeGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseId"))
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get course")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		h.Log.Error("get course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load course")
		return
	}
	jsonutil.Respond(w, http.StatusOK, course)
}

// ServeRemove handles DELETE /api/course/remove/{courseId}
// (educator, owner only). Removes the course and all its lectures.
func (h *Handler) ServeRemove(w http.ResponseWriter, r *http.Request) {
	course, su, ok := h.loadOwnedCourse(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "remove course")
	defer cancel()

	removed, err := h.Lectures.DeleteByCourse(ctx, course.ID)
	if err != nil {
		h.Log.Error("remove course lectures", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not remove course")
		return
	}

	if err := h.Courses.Delete(ctx, course.ID); err != nil && err != mongo.ErrNoDocuments {
		h.Log.Error("remove course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not remove course")
		return
	}

	h.Log.Info("course removed",
		zap.String("course_id", course.ID.Hex()),
		zap.String("creator_id", su.ID),
		zap.Int64("lectures_removed", removed))
	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "Course removed"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Lectures                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type createLectureRequest struct {
	Title string `json:"lectureTitle"`
}

// ServeCreateLecture handles POST /api/course/createlecture/{courseId}
// (educator, owner only).
func (h *Handler) ServeCreateLecture(w http.ResponseWriter, r *http.Request) {
	course, su, ok := h.loadOwnedCourse(w, r)
	if !ok {
		return
	}

	var req createLectureRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		jsonutil.Error(w, http.StatusBadRequest, "lecture title is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create lecture")
	defer cancel()

	lecture, err := h.Lectures.Create(ctx, models.Lecture{
		Title:    req.Title,
		CourseID: course.ID,
	})
	if err != nil {
		h.Log.Error("create lecture", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not create lecture")
		return
	}

	if err := h.Courses.AddLectureRef(ctx, course.ID, lecture.ID); err != nil {
		h.Log.Error("link lecture to course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not create lecture")
		return
	}

	h.Log.Info("lecture created",
		zap.String("lecture_id", lecture.ID.Hex()),
		zap.String("course_id", course.ID.Hex()),
		zap.String("creator_id", su.ID))
	jsonutil.Respond(w, http.StatusCreated, lecture)
}

// courseWithLectures is the GET /getcourselecture/{courseId} response.
type courseWithLectures struct {
	Course   *models.Course   `json:"course"`
	Lectures []models.Lecture `json:"lectures"`
}

// ServeCourseLectures handles GET /api/course/getcourselecture/{courseId}.
func (h *Handler) ServeCourseLectures(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseId"))
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get course lectures")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		h.Log.Error("get course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load course")
		return
	}

	lectures, err := h.Lectures.ListByCourse(ctx, id)
	if err != nil {
		h.Log.Error("list lectures", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load lectures")
		return
	}

	jsonutil.Respond(w, http.StatusOK, courseWithLectures{Course: course, Lectures: lectures})
}

// ServeEditLecture handles POST /api/course/editlecture/{lectureId}
// (educator, owner of the containing course). Multipart form: title,
// isPreviewFree, optional video file.
func (h *Handler) ServeEditLecture(w http.ResponseWriter, r *http.Request) {
	lecture, su, ok := h.loadOwnedLecture(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var upd lecturestore.Update
	if _, set := r.MultipartForm.Value["title"]; set {
		v := r.FormValue("title")
		upd.Title = &v
	}
	if _, set := r.MultipartForm.Value["isPreviewFree"]; set {
		v, err := strconv.ParseBool(r.FormValue("isPreviewFree"))
		if err != nil {
			jsonutil.Error(w, http.StatusBadRequest, "invalid isPreviewFree")
			return
		}
		upd.IsPreviewFree = &v
	}

	if url, ok2, failed := h.uploadFormFile(w, r, "videoUrl"); failed {
		return
	} else if ok2 {
		upd.VideoURL = &url
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit lecture")
	defer cancel()

	updated, err := h.Lectures.Update(ctx, lecture.ID, upd)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Lecture not found")
			return
		}
		h.Log.Error("edit lecture", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not update lecture")
		return
	}

	h.Log.Info("lecture updated",
		zap.String("lecture_id", updated.ID.Hex()),
		zap.String("creator_id", su.ID))
	jsonutil.Respond(w, http.StatusOK, updated)
}

// ServeRemoveLecture handles DELETE /api/course/removelecture/{lectureId}
// (educator, owner of the containing course).
func (h *Handler) ServeRemoveLecture(w http.ResponseWriter, r *http.Request) {
	lecture, su, ok := h.loadOwnedLecture(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "remove lecture")
	defer cancel()

	if err := h.Lectures.Delete(ctx, lecture.ID); err != nil && err != mongo.ErrNoDocuments {
		h.Log.Error("remove lecture", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not remove lecture")
		return
	}
	if err := h.Courses.RemoveLectureRef(ctx, lecture.CourseID, lecture.ID); err != nil && err != mongo.ErrNoDocuments {
		h.Log.Error("unlink lecture", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not remove lecture")
		return
	}

	h.Log.Info("lecture removed",
		zap.String("lecture_id", lecture.ID.Hex()),
		zap.String("creator_id", su.ID))
	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "Lecture removed"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// loadOwnedCourse resolves {courseId} and enforces that the signed-in
// educator owns it. Writes the error response itself on failure.
func (h *Handler) loadOwnedCourse(w http.ResponseWriter, r *http.Request) (*models.Course, *auth.SessionUser, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return nil, nil, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseId"))
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid course id")
		return nil, nil, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load course")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return nil, nil, false
		}
		h.Log.Error("load course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load course")
		return nil, nil, false
	}

	if course.CreatorID.Hex() != su.ID {
		jsonutil.Error(w, http.StatusForbidden, "forbidden")
		return nil, nil, false
	}
	return course, su, true
}

// loadOwnedLecture resolves {lectureId} and checks the signed-in
// educator owns the containing course.
func (h *Handler) loadOwnedLecture(w http.ResponseWriter, r *http.Request) (*models.Lecture, *auth.SessionUser, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return nil, nil, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "lectureId"))
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid lecture id")
		return nil, nil, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load lecture")
	defer cancel()

	lecture, err := h.Lectures.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Lecture not found")
			return nil, nil, false
		}
		h.Log.Error("load lecture", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load lecture")
		return nil, nil, false
	}

	course, err := h.Courses.GetByID(ctx, lecture.CourseID)
	if err != nil {
		h.Log.Error("load lecture course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load lecture")
		return nil, nil, false
	}
	if course.CreatorID.Hex() != su.ID {
		jsonutil.Error(w, http.StatusForbidden, "forbidden")
		return nil, nil, false
	}
	return lecture, su, true
}

// uploadFormFile pushes an optional multipart file to the media host.
// Returns (url, hadFile, failed); on failure the response is written.
func (h *Handler) uploadFormFile(w http.ResponseWriter, r *http.Request, field string) (string, bool, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", false, false // no file in the form
	}
	defer file.Close()

	path, err := media.SaveTemp(file, header, os.TempDir())
	if err != nil {
		h.Log.Error("save upload temp file", zap.String("field", field), zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "upload failed")
		return "", false, true
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "media upload")
	defer cancel()

	url, err := h.Media.Upload(ctx, path)
	if err != nil {
		h.Log.Error("media upload", zap.String("field", field), zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "upload failed")
		return "", false, true
	}
	return url, true, false
}
