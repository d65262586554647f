// Package profile serves the signed-in user's account data and
// profile edits, including photo upload to the media host.
package profile

import (
	"net/http"
	"os"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/jsonutil"
	"github.com/coursehub/coursehub/internal/app/system/media"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
)

// maxPhotoBytes caps the multipart form memory for profile photos.
const maxPhotoBytes = 10 << 20 // 10 MiB

type Handler struct {
	Users *userstore.Store
	Media media.Uploader
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, uploader media.Uploader, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Media: uploader, Log: logger}
}

// ServeCurrentUser handles GET /api/user/getcurrentuser.
func (h *Handler) ServeCurrentUser(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get current user")
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("get current user", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	jsonutil.Respond(w, http.StatusOK, user)
}

// ServeUpdateProfile handles POST /api/user/profile: multipart form
// with name, description, and an optional photo file.
func (h *Handler) ServeUpdateProfile(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		jsonutil.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	upd := userstore.ProfileUpdate{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	if file, header, err := r.FormFile("photoUrl"); err == nil {
		defer file.Close()

		path, err := media.SaveTemp(file, header, os.TempDir())
		if err != nil {
			h.Log.Error("profile photo: save temp", zap.Error(err))
			jsonutil.Error(w, http.StatusInternalServerError, "photo upload failed")
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "profile photo upload")
		defer cancel()

		url, err := h.Media.Upload(ctx, path)
		if err != nil {
			h.Log.Error("profile photo: upload", zap.Error(err))
			jsonutil.Error(w, http.StatusInternalServerError, "photo upload failed")
			return
		}
		upd.PhotoURL = url
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile")
	defer cancel()

	user, err := h.Users.UpdateProfile(ctx, id, upd)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("update profile", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	h.Log.Info("profile updated", zap.String("user_id", user.ID.Hex()))
	jsonutil.Respond(w, http.StatusOK, user)
}
