package controllers

import (
	"context"
	"strconv"

	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

func (ctrl *CartController) respondWithCart(c *gin.Context, message string, items []models.CartLineItem) {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	c.JSON(200, gin.H{
		"success": true, "message": message,
		"data": gin.H{
			"items":      items,
			"subtotal":   services.SubtotalOf(items),
			"item_count": count,
		},
	})
}

// GetCart godoc
// @Summary Get cart
// @Description Get the current cart with subtotal and item count
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID := c.GetInt("user_id")

	items, err := ctrl.cart.Items(c.Request.Context(), userID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to read cart"})
		return
	}

	ctrl.respondWithCart(c, "Cart retrieved", items)
}

// AddItem godoc
// @Summary Add item to cart
// @Description Add a product, or increment its quantity if already present
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Add Item Request"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	product, err := scanProduct(models.DB.QueryRow(context.Background(),
		"SELECT "+productColumns+" FROM products WHERE id=$1 AND is_active=true", req.ProductID))
	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "Product not found"})
		return
	}

	items, err := ctrl.cart.Add(c.Request.Context(), userID, product)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to update cart"})
		return
	}

	ctrl.respondWithCart(c, "Item added to cart", items)
}

// RemoveItem godoc
// @Summary Remove item from cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	productID, _ := strconv.Atoi(c.Param("id"))

	items, err := ctrl.cart.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to update cart"})
		return
	}

	ctrl.respondWithCart(c, "Item removed from cart", items)
}

// IncrementItem godoc
// @Summary Increment item quantity
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id}/increment [post]
func (ctrl *CartController) IncrementItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	productID, _ := strconv.Atoi(c.Param("id"))

	items, err := ctrl.cart.Increment(c.Request.Context(), userID, productID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to update cart"})
		return
	}

	ctrl.respondWithCart(c, "Quantity updated", items)
}

// DecrementItem godoc
// @Summary Decrement item quantity
// @Description Lower quantity by one; the item is removed when it reaches zero
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id}/decrement [post]
func (ctrl *CartController) DecrementItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	productID, _ := strconv.Atoi(c.Param("id"))

	items, err := ctrl.cart.Decrement(c.Request.Context(), userID, productID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to update cart"})
		return
	}

	ctrl.respondWithCart(c, "Quantity updated", items)
}

// ClearCart godoc
// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := ctrl.cart.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to clear cart"})
		return
	}

	ctrl.respondWithCart(c, "Cart cleared", []models.CartLineItem{})
}
