package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

type UserController struct {
	DB   *gorm.DB
	Auth *services.AuthService
}

func NewUserController(db *gorm.DB, auth *services.AuthService) *UserController {
	return &UserController{DB: db, Auth: auth}
}

// SignUp -> creates the account and its profile, returns a session
func (uc *UserController) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := uc.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondServiceError(c, "signing up", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Account created", session)
}

// SignIn -> returns a JWT session
func (uc *UserController) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := uc.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, "signing in", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Signed in", session)
}

func (uc *UserController) SignOut(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	if err := uc.Auth.SignOut(c.Request.Context(), token); err != nil {
		respondServiceError(c, "signing out", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Signed out", nil)
}

func (uc *UserController) ResetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := uc.Auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, "requesting password reset", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

func (uc *UserController) UpdatePassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := uc.Auth.UpdatePassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondServiceError(c, "updating password", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password updated", nil)
}

// Session -> current user, profile and admin flag
func (uc *UserController) Session(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	state := services.NewSessionState(uc.Auth)
	snap := state.Load(c.Request.Context(), userID)
	if snap.User == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("session is no longer valid"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current session", snap)
}

// UpdateProfile -> the signed-in user edits their own name and phone
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	var req struct {
		FullName *string `json:"full_name"`
		Phone    *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update"))
		return
	}

	if err := uc.DB.Model(&models.Profile{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		respondServiceError(c, "updating profile", err)
		return
	}
	profile, err := uc.Auth.FetchProfile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "loading profile", err)
		return
	}
	uc.Auth.NotifyUserUpdated(userID)
	utils.RespondJSON(c, http.StatusOK, "Profile updated", profile)
}

// ListUsers -> admin view of every profile
func (uc *UserController) ListUsers(c *gin.Context) {
	type row struct {
		ID         uint   `json:"id"`
		Email      string `json:"email"`
		FullName   string `json:"full_name"`
		Phone      string `json:"phone"`
		IsAdmin    bool   `json:"is_admin"`
		IsVerified bool   `json:"is_verified"`
	}
	var users []row
	if err := uc.DB.Table("users").
		Select("users.id, users.email, profiles.full_name, profiles.phone, profiles.is_admin, profiles.is_verified").
		Joins("LEFT JOIN profiles ON profiles.id = users.id").
		Order("users.id asc").
		Scan(&users).Error; err != nil {
		respondServiceError(c, "listing users", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}

// UpdateUserRole -> grants or revokes admin and verified flags
func (uc *UserController) UpdateUserRole(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		IsAdmin    *bool `json:"is_admin"`
		IsVerified *bool `json:"is_verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if current, _ := middlewares.CurrentUserID(c); current == id && req.IsAdmin != nil && !*req.IsAdmin {
		utils.RespondError(c, http.StatusBadRequest, errors.New("you cannot remove your own admin access"))
		return
	}

	updates := map[string]interface{}{}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}
	if req.IsVerified != nil {
		updates["is_verified"] = *req.IsVerified
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update"))
		return
	}

	res := uc.DB.Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		respondServiceError(c, "updating user role", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	uc.Auth.NotifyUserUpdated(id)
	utils.InfoLogger.Printf("Profile %d updated: %v", id, updates)
	utils.RespondJSON(c, http.StatusOK, "User updated", nil)
}
