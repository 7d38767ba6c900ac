package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
)

type ReviewController struct {
	Reviews *services.ReviewService
	Storage *services.ObjectStorage
	Hub     *kds.Hub
}

func NewReviewController(reviews *services.ReviewService, storage *services.ObjectStorage, hub *kds.Hub) *ReviewController {
	return &ReviewController{Reviews: reviews, Storage: storage, Hub: hub}
}

// GetPublicReviews -> approved reviews, optional ?menu_item_id= and ?limit=
func (rc *ReviewController) GetPublicReviews(c *gin.Context) {
	var menuItemID *uint
	if raw := c.Query("menu_item_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu_item_id"))
			return
		}
		v := uint(id)
		menuItemID = &v
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	reviews, err := rc.Reviews.ListPublic(c.Request.Context(), menuItemID, limit)
	if err != nil {
		respondServiceError(c, "listing reviews", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reviews", reviews)
}

func (rc *ReviewController) GetStats(c *gin.Context) {
	stats, err := rc.Reviews.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, "computing review stats", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review stats", stats)
}

func (rc *ReviewController) GetMyReviews(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	reviews, err := rc.Reviews.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "listing reviews", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reviews", reviews)
}

// SubmitReview -> stored unapproved until an admin moderates it
func (rc *ReviewController) SubmitReview(c *gin.Context) {
	var in services.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := services.ValidateReview(in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	review, err := rc.Reviews.Submit(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, "submitting review", err)
		return
	}

	rc.Hub.Publish(kds.EventReviewSubmitted, review)
	utils.RespondJSON(c, http.StatusCreated, "Thank you! Your review will appear once approved", review)
}

// UploadPhoto -> form file "photo" into the review-photos bucket
func (rc *ReviewController) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("photo file is required"))
		return
	}
	userID, _ := middlewares.CurrentUserID(c)
	url, err := rc.Storage.UploadPublic(c.Request.Context(), services.BucketReviewPhotos, strconv.FormatUint(uint64(userID), 10), file)
	if err != nil {
		respondServiceError(c, "uploading review photo", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Photo uploaded", gin.H{"url": url})
}

func (rc *ReviewController) DeleteReview(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	userID, _ := middlewares.CurrentUserID(c)
	if err := rc.Reviews.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, "deleting review", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review deleted", gin.H{"id": id})
}

// GetAllReviews -> moderation queue, ?approved=true|false
func (rc *ReviewController) GetAllReviews(c *gin.Context) {
	var approved *bool
	if raw := c.Query("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("approved must be true or false"))
			return
		}
		approved = &v
	}
	reviews, err := rc.Reviews.ListAll(c.Request.Context(), approved)
	if err != nil {
		respondServiceError(c, "listing reviews", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reviews", reviews)
}

func (rc *ReviewController) ApproveReview(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req := struct {
		IsApproved *bool `json:"is_approved"`
	}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	approved := true
	if req.IsApproved != nil {
		approved = *req.IsApproved
	}

	review, err := rc.Reviews.SetApproved(c.Request.Context(), id, approved)
	if err != nil {
		respondServiceError(c, "moderating review", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review updated", review)
}

func (rc *ReviewController) RespondToReview(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Response string `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	review, err := rc.Reviews.Respond(c.Request.Context(), id, req.Response)
	if err != nil {
		respondServiceError(c, "responding to review", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Response saved", review)
}
