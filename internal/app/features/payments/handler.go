// Package payments implements checkout against the payment gateway:
// order creation and post-payment verification, which performs the
// mutual enrollment writes.
package payments

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	coursestore "github.com/coursehub/coursehub/internal/app/store/courses"
	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/jsonutil"
	"github.com/coursehub/coursehub/internal/app/system/payments"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
)

type Handler struct {
	Courses *coursestore.Store
	Users   *userstore.Store
	Gateway payments.Gateway
	Log     *zap.Logger
}

func NewHandler(courses *coursestore.Store, users *userstore.Store, gateway payments.Gateway, logger *zap.Logger) *Handler {
	return &Handler{Courses: courses, Users: users, Gateway: gateway, Log: logger}
}

type createOrderRequest struct {
	CourseID string `json:"courseId"`
}

// ServeCreateOrder handles POST /api/payment/createorder. The amount
// is the course price converted to paise; the receipt carries the
// course ID so the order can be traced back.
func (h *Handler) ServeCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create payment order")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		h.Log.Error("create order: load course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Order creation failed")
		return
	}
	if course.Price <= 0 {
		jsonutil.Error(w, http.StatusBadRequest, "Invalid course price")
		return
	}

	order, err := h.Gateway.CreateOrder(ctx, int64(course.Price*100), "INR", courseID.Hex())
	if err != nil {
		h.Log.Error("create order: gateway", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Order creation failed")
		return
	}

	h.Log.Info("payment order created",
		zap.String("order_id", order.ID),
		zap.String("course_id", courseID.Hex()),
		zap.Int64("amount", order.Amount))
	jsonutil.Respond(w, http.StatusOK, order)
}

type verifyRequest struct {
	OrderID  string `json:"razorpay_order_id"`
	CourseID string `json:"courseId"`
}

// ServeVerify handles POST /api/payment/verify. The order is
// re-fetched from the gateway rather than trusted from the client;
// only status "paid" enrolls. Both enrollment writes are $addToSet,
// so a re-verify is a harmless no-op.
func (h *Handler) ServeVerify(w http.ResponseWriter, r *http.Request) {
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

	var req verifyRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrderID == "" || req.CourseID == "" {
		jsonutil.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "verify payment")
	defer cancel()

	order, err := h.Gateway.FetchOrder(ctx, req.OrderID)
	if err != nil {
		h.Log.Error("verify payment: fetch order", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal server error during payment verification")
		return
	}
	if order.Status != payments.StatusPaid {
		h.Log.Warn("payment not paid",
			zap.String("order_id", req.OrderID),
			zap.String("status", order.Status))
		jsonutil.Error(w, http.StatusBadRequest, "Payment verification failed (invalid signature)")
		return
	}

	// Two documents, no transaction: a crash between the writes leaves
	// one side enrolled, fixed by the client retrying verify.
	added, err := h.Users.AddEnrolledCourse(ctx, userID, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("verify payment: enroll user", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal server error during payment verification")
		return
	}

	if err := h.Courses.AddEnrolledStudent(ctx, courseID, userID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "Course not found")
			return
		}
		h.Log.Error("verify payment: enroll course", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal server error during payment verification")
		return
	}

	h.Log.Info("payment verified",
		zap.String("order_id", req.OrderID),
		zap.String("course_id", courseID.Hex()),
		zap.String("user_id", su.ID),
		zap.Bool("newly_enrolled", added))
	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "Payment verified and enrollment successful"})
}
