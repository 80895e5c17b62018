package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type PromotionController struct {
	promotionService service.PromotionService
}

func NewPromotionController(promotionService service.PromotionService) *PromotionController {
	return &PromotionController{promotionService: promotionService}
}

type PromotionRequest struct {
	Code              string              `json:"Code" binding:"required"`
	Name              string              `json:"Name" binding:"required"`
	Description       string              `json:"Description"`
	Type              model.PromotionType `json:"Type" binding:"required"`
	DiscountPercent   float64             `json:"DiscountPercent"`
	MaxDiscountAmount float64             `json:"MaxDiscountAmount"`
	MinOrderAmount    float64             `json:"MinOrderAmount"`
	StartDate         time.Time           `json:"StartDate" binding:"required"`
	EndDate           time.Time           `json:"EndDate" binding:"required"`
	IsActive          *bool               `json:"IsActive"`
	UsageLimit        int                 `json:"UsageLimit"`
	ProductIDs        []uint              `json:"ProductIds"`
	CustomerIDs       []uint              `json:"CustomerIds"`
}

type AssignIDsRequest struct {
	IDs []uint `json:"Ids"`
}

type DiscountLineRequest struct {
	ProductID uint    `json:"ProductId"`
	Amount    float64 `json:"Amount"`
}

type ValidatePromotionRequest struct {
	Code     string                `json:"Code" binding:"required"`
	Subtotal float64               `json:"Subtotal"`
	Lines    []DiscountLineRequest `json:"Lines"`
}

// GetPromotions GET /api/Promotion
func (ctrl *PromotionController) GetPromotions(c *gin.Context) {
	promotions, err := ctrl.promotionService.GetAllPromotions()
	if err != nil {
		respondError(c, err, "list promotions", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotions": promotions, "Count": len(promotions)})
}

// GetActivePromotions lists running promotions of one type
// GET /api/Promotion/active?type=Product|Order
func (ctrl *PromotionController) GetActivePromotions(c *gin.Context) {
	promotionType := model.PromotionType(c.DefaultQuery("type", string(model.PromotionTypeOrder)))
	if promotionType != model.PromotionTypeProduct && promotionType != model.PromotionTypeOrder {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Type must be Product or Order")
		return
	}

	promotions, err := ctrl.promotionService.GetActivePromotionsByType(promotionType, time.Now())
	if err != nil {
		respondError(c, err, "list active promotions", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotions": promotions, "Count": len(promotions)})
}

// GetPromotion GET /api/Promotion/:id
func (ctrl *PromotionController) GetPromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	promotion, err := ctrl.promotionService.GetPromotionByID(id)
	if err != nil {
		respondError(c, err, "get promotion", map[string]interface{}{"promotion_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotion": promotion})
}

// GetPromotionByCode GET /api/Promotion/code/:code
func (ctrl *PromotionController) GetPromotionByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	promotion, err := ctrl.promotionService.GetPromotionByCode(code)
	if err != nil {
		respondError(c, err, "get promotion", map[string]interface{}{"code": code})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotion": promotion})
}

// ValidatePromotion previews the discount a code gives the caller
// POST /api/Promotion/validate
func (ctrl *PromotionController) ValidatePromotion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	lines := make([]service.DiscountLine, 0, len(req.Lines))
	productIDs := make([]uint, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.DiscountLine(l))
		productIDs = append(productIDs, l.ProductID)
	}

	promotion, err := ctrl.promotionService.ValidateForOrder(req.Code, userID, req.Subtotal, productIDs, time.Now())
	if err != nil {
		respondError(c, err, "validate promotion", map[string]interface{}{
			"user_id": userID,
			"code":    req.Code,
		})
		return
	}

	discount := ctrl.promotionService.CalculateDiscount(promotion, lines, req.Subtotal)
	c.JSON(http.StatusOK, gin.H{
		"Promotion":      promotion,
		"DiscountAmount": discount,
	})
}

func (req PromotionRequest) toInput() service.PromotionInput {
	return service.PromotionInput{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		Type:              req.Type,
		DiscountPercent:   req.DiscountPercent,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinOrderAmount:    req.MinOrderAmount,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsActive:          req.IsActive,
		UsageLimit:        req.UsageLimit,
		ProductIDs:        req.ProductIDs,
		CustomerIDs:       req.CustomerIDs,
	}
}

// CreatePromotion POST /api/Promotion
func (ctrl *PromotionController) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	promotion, err := ctrl.promotionService.CreatePromotion(req.toInput())
	if err != nil {
		respondError(c, err, "create promotion", map[string]interface{}{"code": req.Code})
		return
	}
	middleware.GetLoggerFromContext(c).Info("Promotion created", map[string]interface{}{
		"promotion_id": promotion.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"Promotion": promotion})
}

// UpdatePromotion PUT /api/Promotion/:id
func (ctrl *PromotionController) UpdatePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	promotion, err := ctrl.promotionService.UpdatePromotion(id, req.toInput())
	if err != nil {
		respondError(c, err, "update promotion", map[string]interface{}{"promotion_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotion": promotion})
}

// DeletePromotion removes the promotion. Orders that used it are kept.
// DELETE /api/Promotion/:id
func (ctrl *PromotionController) DeletePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.promotionService.DeletePromotion(id); err != nil {
		respondError(c, err, "delete promotion", map[string]interface{}{"promotion_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Promotion deleted"})
}

// AssignProducts PUT /api/Promotion/:id/products
func (ctrl *PromotionController) AssignProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	promotion, err := ctrl.promotionService.AssignProducts(id, req.IDs)
	if err != nil {
		respondError(c, err, "assign promotion products", map[string]interface{}{"promotion_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotion": promotion})
}

// AssignCustomers PUT /api/Promotion/:id/customers
func (ctrl *PromotionController) AssignCustomers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	promotion, err := ctrl.promotionService.AssignCustomers(id, req.IDs)
	if err != nil {
		respondError(c, err, "assign promotion customers", map[string]interface{}{"promotion_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Promotion": promotion})
}
