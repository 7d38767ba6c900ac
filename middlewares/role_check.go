package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
)

type ProfileLoader interface {
	FetchProfile(ctx context.Context, userID uint) (*models.Profile, error)
}

// RequireAdmin allows only users whose profile has is_admin set. It must run
// after RequireAuth.
func RequireAdmin(profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}

		profile, err := profiles.FetchProfile(c.Request.Context(), userID)
		if err != nil {
			utils.ErrorLogger.Errorf("Error loading profile for user %d: %v", userID, err)
			utils.AbortWithError(c, http.StatusForbidden, errors.New("admin access required"))
			return
		}
		if !profile.IsAdmin {
			utils.AbortWithError(c, http.StatusForbidden, errors.New("admin access required"))
			return
		}

		c.Set(ContextAdmin, true)
		c.Next()
	}
}
