package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type FeedController struct {
	feedService service.FeedService
}

func NewFeedController(feedService service.FeedService) *FeedController {
	return &FeedController{feedService: feedService}
}

// GetFeed returns the latest posts of the shop's Facebook page
// GET /api/Feed?limit=
func (ctrl *FeedController) GetFeed(c *gin.Context) {
	limit := queryInt(c, "limit", 0)

	posts, err := ctrl.feedService.GetPagePosts(c.Request.Context(), limit)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch page feed", err, map[string]interface{}{
			"limit": limit,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "Failed to load the page feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"Posts": posts, "Count": len(posts)})
}
