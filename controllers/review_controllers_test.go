package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"gorm.io/gorm"
)

const (
	customerID = uint(10)
	strangerID = uint(11)
)

func setupReviewRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	storage := services.NewObjectStorage(t.TempDir(), "http://localhost")
	rc := NewReviewController(services.NewReviewService(db, storage), storage, kds.NewHub())
	r := gin.New()
	r.GET("/reviews", rc.GetPublicReviews)
	r.GET("/reviews/stats", rc.GetStats)

	customer := r.Group("/customer", asUser(customerID))
	customer.GET("/reviews", rc.GetMyReviews)
	customer.POST("/reviews", rc.SubmitReview)
	customer.POST("/reviews/photos", rc.UploadPhoto)
	customer.DELETE("/reviews/:id", rc.DeleteReview)

	stranger := r.Group("/stranger", asUser(strangerID))
	stranger.POST("/reviews", rc.SubmitReview)
	stranger.DELETE("/reviews/:id", rc.DeleteReview)

	r.GET("/admin/reviews", rc.GetAllReviews)
	r.PATCH("/admin/reviews/:id/approve", rc.ApproveReview)
	r.PATCH("/admin/reviews/:id/response", rc.RespondToReview)
	return r
}

func seedCustomer(t *testing.T, db *gorm.DB) models.Order {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: customerID, Email: "c@example.com", PasswordHash: "x"}).Error)
	require.NoError(t, db.Create(&models.Profile{ID: customerID, FullName: "Kavya"}).Error)
	id := customerID
	order := models.Order{UserID: &id, CustomerName: "Kavya", CustomerPhone: "1", OrderType: models.OrderTypePickup,
		Status: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusPaid}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestSubmitAndModerateReview(t *testing.T) {
	db := setupTestDB(t)
	order := seedCustomer(t, db)
	dal, _ := seedMenu(t, db)
	r := setupReviewRouter(t, db)

	w, _ := doJSON(t, r, "POST", "/stranger/reviews", gin.H{"rating": 5, "comment": "Great"})
	assert.Equal(t, http.StatusForbidden, w.Code, "no orders")

	w, _ = doJSON(t, r, "POST", "/customer/reviews", gin.H{"rating": 0, "comment": "Great"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doJSON(t, r, "POST", "/customer/reviews", gin.H{
		"rating": 4, "comment": " Rich and creamy ", "order_id": order.ID, "menu_item_id": dal.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Thank you! Your review will appear once approved", env.Message)
	var review models.Review
	decode(t, env, &review)
	assert.False(t, review.IsApproved)
	assert.Equal(t, "Rich and creamy", review.Comment)

	_, env = doJSON(t, r, "GET", "/reviews", nil)
	var public []models.Review
	decode(t, env, &public)
	assert.Empty(t, public, "pending reviews stay hidden")

	_, env = doJSON(t, r, "GET", "/admin/reviews?approved=false", nil)
	var pending []models.Review
	decode(t, env, &pending)
	assert.Len(t, pending, 1)

	w, _ = doJSON(t, r, "PATCH", fmt.Sprintf("/admin/reviews/%d/approve", review.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = doJSON(t, r, "PATCH", fmt.Sprintf("/admin/reviews/%d/response", review.ID), gin.H{"response": "Thank you!"})
	require.Equal(t, http.StatusOK, w.Code)

	_, env = doJSON(t, r, "GET", fmt.Sprintf("/reviews?menu_item_id=%d", dal.ID), nil)
	decode(t, env, &public)
	require.Len(t, public, 1)
	assert.Equal(t, "Thank you!", public[0].AdminResponse)
	assert.Equal(t, "Kavya", public[0].AuthorName)
	assert.Equal(t, "Dal Makhani", public[0].MenuItemName)

	_, env = doJSON(t, r, "GET", "/reviews/stats", nil)
	var stats services.ReviewStats
	decode(t, env, &stats)
	assert.Equal(t, int64(1), stats.Count)
	assert.Equal(t, 4.0, stats.AverageRating)

	w, _ = doJSON(t, r, "GET", "/reviews?menu_item_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, r, "GET", "/admin/reviews?approved=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReviewOnlyByAuthor(t *testing.T) {
	db := setupTestDB(t)
	seedCustomer(t, db)
	r := setupReviewRouter(t, db)

	_, env := doJSON(t, r, "POST", "/customer/reviews", gin.H{"rating": 3, "comment": "Okay"})
	var review models.Review
	decode(t, env, &review)

	w, _ := doJSON(t, r, "DELETE", fmt.Sprintf("/stranger/reviews/%d", review.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/customer/reviews/%d", review.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, env = doJSON(t, r, "GET", "/customer/reviews", nil)
	var mine []models.Review
	decode(t, env, &mine)
	assert.Empty(t, mine)

	w, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/customer/reviews/%d", review.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadReviewPhoto(t *testing.T) {
	db := setupTestDB(t)
	r := setupReviewRouter(t, db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/customer/reviews/photos", "photo", "plate.png", "image/png", pngBytes))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "/storage/"+services.BucketReviewPhotos+"/10/")
}

func TestSubmitReviewWithUploadedPhoto(t *testing.T) {
	db := setupTestDB(t)
	seedCustomer(t, db)
	r := setupReviewRouter(t, db)

	w, _ := doJSON(t, r, "POST", "/customer/reviews", gin.H{
		"rating": 5, "comment": "Lovely", "photos": []string{"javascript:alert(1)"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/customer/reviews/photos", "photo", "plate.png", "image/png", pngBytes))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var uploaded envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	var photo struct {
		URL string `json:"url"`
	}
	decode(t, uploaded, &photo)

	w, _ = doJSON(t, r, "POST", "/customer/reviews", gin.H{
		"rating": 5, "comment": "Lovely", "photos": []string{photo.URL},
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
