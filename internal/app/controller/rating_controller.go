package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

type RatingRequest struct {
	Rating    int      `json:"Rating" binding:"required"`
	Comment   string   `json:"Comment"`
	ImageURLs []string `json:"ImageUrls"`
}

type RatingVisibilityRequest struct {
	IsVisible *bool `json:"IsVisible" binding:"required"`
}

// GetProductRatings lists visible ratings of a product. Backoffice users also see hidden ones.
// GET /api/Product/:id/ratings
func (ctrl *RatingController) GetProductRatings(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, err := ctrl.ratingService.GetProductRatings(
		productID,
		currentRole(c).IsBackoffice(),
		queryInt(c, "page", 1),
		queryInt(c, "pageSize", service.DefaultPageSize),
	)
	if err != nil {
		respondError(c, err, "list ratings", map[string]interface{}{"product_id": productID})
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateRating rates a product the caller received
// POST /api/Product/:id/ratings
func (ctrl *RatingController) CreateRating(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	rating, err := ctrl.ratingService.CreateRating(userID, productID, service.RatingInput(req))
	if err != nil {
		respondError(c, err, "create rating", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Rating created", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating.Rating,
	})

	c.JSON(http.StatusCreated, gin.H{"Rating": rating})
}

// GetRating GET /api/Rating/:id
func (ctrl *RatingController) GetRating(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rating, err := ctrl.ratingService.GetRatingByID(id)
	if err != nil {
		respondError(c, err, "get rating", map[string]interface{}{"rating_id": id})
		return
	}
	if !rating.IsVisible && !currentRole(c).IsBackoffice() {
		respondError(c, service.ErrRatingNotFound, "get rating", map[string]interface{}{"rating_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Rating": rating})
}

// UpdateRating PUT /api/Rating/:id
func (ctrl *RatingController) UpdateRating(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	rating, err := ctrl.ratingService.UpdateRating(userID, id, service.RatingInput(req))
	if err != nil {
		respondError(c, err, "update rating", map[string]interface{}{
			"user_id":   userID,
			"rating_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Rating": rating})
}

// DeleteRating is allowed for the author and admins
// DELETE /api/Rating/:id
func (ctrl *RatingController) DeleteRating(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.ratingService.DeleteRating(userID, currentRole(c), id); err != nil {
		respondError(c, err, "delete rating", map[string]interface{}{
			"user_id":   userID,
			"rating_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Message": "Rating deleted"})
}

// SetVisibility hides or shows a rating
// PUT /api/Rating/:id/visibility
func (ctrl *RatingController) SetVisibility(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RatingVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	rating, err := ctrl.ratingService.SetVisibility(id, *req.IsVisible)
	if err != nil {
		respondError(c, err, "update rating visibility", map[string]interface{}{"rating_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Rating": rating})
}
