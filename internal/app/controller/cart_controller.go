package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID          uint  `json:"ProductId" binding:"required"`
	ProductVariationID *uint `json:"ProductVariationId"`
	Quantity           int   `json:"Quantity" binding:"required,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"Quantity" binding:"required,gt=0"`
}

type SelectCartItemsRequest struct {
	ItemIDs  []uint `json:"ItemIds" binding:"required"`
	Selected *bool  `json:"Selected" binding:"required"`
}

// GetCart returns the user's cart with totals over the selected lines
// GET /api/Cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err, "fetch cart", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Debug("Cart fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(cart.Items),
		"total":   cart.Totals.TotalPriceSale,
	})

	c.JSON(http.StatusOK, cart)
}

// AddToCart adds an item, merging with an existing line for the same product and variation
// POST /api/Cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	item, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.ProductVariationID, req.Quantity)
	if err != nil {
		respondError(c, err, "add item to cart", map[string]interface{}{
			"user_id":      userID,
			"product_id":   req.ProductID,
			"variation_id": req.ProductVariationID,
			"quantity":     req.Quantity,
		})
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   item.Quantity,
	})

	c.JSON(http.StatusCreated, gin.H{"Item": item})
}

// UpdateCartItem sets a line's quantity
// PUT /api/Cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	item, err := ctrl.cartService.UpdateCartItem(userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err, "update cart item", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Item": item})
}

// SelectItems marks lines as included in or excluded from checkout
// PUT /api/Cart/select
func (ctrl *CartController) SelectItems(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SelectCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	cart, err := ctrl.cartService.SetSelected(userID, req.ItemIDs, *req.Selected)
	if err != nil {
		respondError(c, err, "select cart items", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveFromCart DELETE /api/Cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveFromCart(userID, itemID); err != nil {
		respondError(c, err, "remove cart item", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Message": "Item removed from cart"})
}

// ClearCart DELETE /api/Cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		respondError(c, err, "clear cart", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Message": "Cart cleared"})
}
