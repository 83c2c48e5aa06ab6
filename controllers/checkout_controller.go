package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/libs"
	"storefront/models"
	"storefront/services"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

type CheckoutController struct {
	checkout *services.CheckoutService
	shipping *services.ShippingService
	mailer   *libs.Mailer
}

func NewCheckoutController(checkout *services.CheckoutService, shipping *services.ShippingService) *CheckoutController {
	mailer, err := libs.NewMailer()
	if err != nil {
		log.Println("Mailer disabled:", err)
		mailer = nil
	}

	return &CheckoutController{
		checkout: checkout,
		shipping: shipping,
		mailer:   mailer,
	}
}

func draftPayload(draft *services.OrderDraft) gin.H {
	payload := gin.H{
		"state":       draft.State,
		"items":       draft.Items,
		"subtotal":    draft.Subtotal(),
		"can_confirm": draft.CanConfirm(),
	}

	if draft.Address != nil {
		payload["address"] = draft.Address
	}
	if draft.Payment != nil {
		payment := gin.H{"method": draft.Payment.Method}
		if draft.Payment.Card != nil {
			payment["card_last4"] = utils.CardLast4(draft.Payment.Card.Number)
		}
		payload["payment"] = payment
	}
	if draft.Shipping != nil {
		payload["shipping"] = draft.Shipping
	}
	if total, ok := draft.Total(); ok {
		payload["total"] = total
	}

	return payload
}

// Begin godoc
// @Summary Start checkout
// @Description Copy the current cart into a fresh order draft
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.Response
// @Router /checkout [post]
func (ctrl *CheckoutController) Begin(c *gin.Context) {
	userID := c.GetInt("user_id")

	draft, err := ctrl.checkout.Begin(c.Request.Context(), userID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to start checkout"})
		return
	}

	c.JSON(201, gin.H{"success": true, "message": "Checkout started", "data": draftPayload(draft)})
}

// GetDraft godoc
// @Summary Get order draft
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /checkout [get]
func (ctrl *CheckoutController) GetDraft(c *gin.Context) {
	userID := c.GetInt("user_id")

	draft, err := ctrl.checkout.Draft(userID)
	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Draft retrieved", "data": draftPayload(draft)})
}

// SetAddress godoc
// @Summary Set delivery address
// @Description Merge the address step into the draft and quote shipping for its postal code
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.Address true "Delivery address"
// @Success 200 {object} models.Response
// @Router /checkout/address [put]
func (ctrl *CheckoutController) SetAddress(c *gin.Context) {
	userID := c.GetInt("user_id")

	var address models.Address
	if err := c.ShouldBindJSON(&address); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid address", "error": err.Error()})
		return
	}

	quote, err := ctrl.shipping.Quote(address.PostalCode)
	if err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid postal code"})
		return
	}

	if _, err := ctrl.checkout.SetAddress(userID, address); err != nil {
		c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
		return
	}

	draft, err := ctrl.checkout.SetShipping(userID, quote)
	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Address saved", "data": draftPayload(draft)})
}

// SetPayment godoc
// @Summary Set payment method
// @Description Merge the payment step into the draft; card details must pass format checks
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.PaymentRequest true "Payment selection"
// @Success 200 {object} models.Response
// @Router /checkout/payment [put]
func (ctrl *CheckoutController) SetPayment(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid payment", "error": err.Error()})
		return
	}

	draft, err := ctrl.checkout.SetPayment(userID, models.Payment{Method: req.Method, Card: req.Card})
	if err != nil {
		if errors.Is(err, services.ErrNoDraft) {
			c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
			return
		}
		c.JSON(400, gin.H{"success": false, "message": "Invalid payment", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Payment saved", "data": draftPayload(draft)})
}

// Next godoc
// @Summary Advance checkout
// @Description Move the draft to the next step; the step's guard must pass
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /checkout/next [post]
func (ctrl *CheckoutController) Next(c *gin.Context) {
	userID := c.GetInt("user_id")

	draft, err := ctrl.checkout.Next(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoDraft) {
			c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
			return
		}
		c.JSON(400, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Moved to " + string(draft.State), "data": draftPayload(draft)})
}

// Back godoc
// @Summary Go back one checkout step
// @Description Re-enter the previous step without losing entered data
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /checkout/back [post]
func (ctrl *CheckoutController) Back(c *gin.Context) {
	userID := c.GetInt("user_id")

	draft, err := ctrl.checkout.Back(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoDraft) {
			c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
			return
		}
		c.JSON(400, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Moved to " + string(draft.State), "data": draftPayload(draft)})
}

// Abandon godoc
// @Summary Abandon checkout
// @Description Discard the order draft without submitting
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /checkout [delete]
func (ctrl *CheckoutController) Abandon(c *gin.Context) {
	userID := c.GetInt("user_id")
	ctrl.checkout.Abandon(userID)
	c.JSON(200, gin.H{"success": true, "message": "Checkout abandoned"})
}

// Confirm godoc
// @Summary Submit order
// @Description Submit the draft: requires items, address and payment. Success clears the draft and the cart.
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *CheckoutController) Confirm(c *gin.Context) {
	userID := c.GetInt("user_id")

	var order *models.Order
	err := ctrl.checkout.Confirm(c.Request.Context(), userID, func(ctx context.Context, draft *services.OrderDraft) error {
		created, submitErr := submitOrder(ctx, userID, draft)
		if submitErr != nil {
			return submitErr
		}
		order = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoDraft):
			c.JSON(404, gin.H{"success": false, "message": "No checkout in progress"})
		case errors.Is(err, services.ErrNotAtSummary):
			c.JSON(400, gin.H{"success": false, "message": "Order can only be submitted from the summary step"})
		case errors.Is(err, services.ErrDraftIncomplete):
			c.JSON(400, gin.H{"success": false, "message": "Items, address and payment are required"})
		default:
			c.JSON(500, gin.H{"success": false, "message": "Failed to submit order", "error": err.Error()})
		}
		return
	}

	if ctrl.mailer != nil {
		email := c.GetString("user_email")
		if mailErr := ctrl.mailer.SendOrderConfirmation(email, order); mailErr != nil {
			log.Println("Failed to send order confirmation:", mailErr)
		}
	}

	c.JSON(201, gin.H{"success": true, "message": "Order created successfully", "data": order})
}

func submitOrder(ctx context.Context, userID int, draft *services.OrderDraft) (*models.Order, error) {
	tx, err := models.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range draft.Items {
		var stock int
		if err := tx.QueryRow(ctx, "SELECT stock FROM products WHERE id=$1 FOR UPDATE", item.ProductID).Scan(&stock); err != nil {
			return nil, fmt.Errorf("product %d no longer available", item.ProductID)
		}
		if stock < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s", item.Name)
		}
	}

	subtotal := draft.Subtotal()
	shipping := decimalOrZero(draft.Shipping)
	total := subtotal.Add(shipping)

	cardLast4 := ""
	if draft.Payment.Card != nil {
		cardLast4 = utils.CardLast4(draft.Payment.Card.Number)
	}

	orderNumber := "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	now := time.Now()
	addr := draft.Address

	var orderID int
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (order_number, user_id, status, street, number, complement, neighborhood, city, state, postal_code,
			payment_method, card_last4, subtotal, shipping, total, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::numeric,$14::numeric,$15::numeric,$16,$17) RETURNING id`,
		orderNumber, userID, models.OrderStatusPending,
		addr.Street, addr.Number, addr.Complement, addr.Neighborhood, addr.City, addr.State, addr.PostalCode,
		draft.Payment.Method, cardLast4,
		subtotal.String(), shipping.String(), total.String(), now, now).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]models.OrderItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		var itemID int
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, image_url)
			 VALUES ($1,$2,$3,$4::numeric,$5,$6) RETURNING id`,
			orderID, item.ProductID, item.Name, item.Price.String(), item.Quantity, item.ImageURL).Scan(&itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order items: %w", err)
		}

		_, err = tx.Exec(ctx, "UPDATE products SET stock=stock-$1, updated_at=$2 WHERE id=$3", item.Quantity, now, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}

		orderItems = append(orderItems, models.OrderItem{
			ID:          itemID,
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.Name,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
			ImageURL:    item.ImageURL,
		})
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &models.Order{
		ID:            orderID,
		OrderNumber:   orderNumber,
		UserID:        userID,
		Status:        models.OrderStatusPending,
		Address:       *addr,
		PaymentMethod: draft.Payment.Method,
		CardLast4:     cardLast4,
		Subtotal:      subtotal,
		Shipping:      shipping,
		Total:         total,
		Items:         orderItems,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
