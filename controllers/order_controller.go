package controllers

import (
	"context"
	"math"
	"strconv"
	"strings"

	"storefront/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderController struct{}

func (ctrl *OrderController) getPaginationParams(c *gin.Context) (page, size, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	offset = (page - 1) * size
	return page, size, offset
}

const orderColumns = `id, order_number, user_id, status, street, number, COALESCE(complement,''), neighborhood, city, state, postal_code,
	payment_method, COALESCE(card_last4,''), subtotal::text, shipping::text, total::text, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (models.Order, error) {
	var o models.Order
	var subtotal, shipping, total string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.Address.Street, &o.Address.Number, &o.Address.Complement, &o.Address.Neighborhood,
		&o.Address.City, &o.Address.State, &o.Address.PostalCode,
		&o.PaymentMethod, &o.CardLast4, &subtotal, &shipping, &total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return o, err
	}
	if o.Shipping, err = decimal.NewFromString(shipping); err != nil {
		return o, err
	}
	o.Total, err = decimal.NewFromString(total)
	return o, err
}

func loadOrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	rows, err := models.DB.Query(ctx,
		`SELECT id, order_id, product_id, product_name, unit_price::text, quantity, COALESCE(image_url,'')
		 FROM order_items WHERE order_id=$1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &price, &item.Quantity, &item.ImageURL); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (ctrl *OrderController) listOrders(c *gin.Context, where string, args ...interface{}) {
	page, size, offset := ctrl.getPaginationParams(c)
	ctx := context.Background()

	var total int
	if err := models.DB.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to count orders"})
		return
	}

	limitArgs := append(append([]interface{}{}, args...), size, offset)
	query := "SELECT " + orderColumns + " FROM orders" + where +
		" ORDER BY id DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)

	rows, err := models.DB.Query(ctx, query, limitArgs...)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to retrieve orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(500, gin.H{"success": false, "message": "Failed to read orders"})
			return
		}
		orders = append(orders, o)
	}

	c.JSON(200, gin.H{
		"success": true, "message": "Orders retrieved successfully",
		"data": models.PageResponse{
			Content:       orders,
			Page:          page,
			Size:          size,
			TotalElements: total,
			TotalPages:    int(math.Ceil(float64(total) / float64(size))),
		},
	})
}

// GetMyOrders godoc
// @Summary List own orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Items per page"
// @Success 200 {object} models.Response
// @Router /orders [get]
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID := c.GetInt("user_id")
	ctrl.listOrders(c, " WHERE user_id=$1", userID)
}

// GetAllOrders godoc
// @Summary List all orders
// @Description Get one page of orders, optionally filtered by status (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.Response
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && status != "All" {
		ctrl.listOrders(c, " WHERE status=$1", status)
		return
	}
	ctrl.listOrders(c, "")
}

// GetOrderByID godoc
// @Summary Get order by ID
// @Description Get order details with its line items
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	userID := c.GetInt("user_id")
	role := c.GetString("user_role")

	ctx := context.Background()
	order, err := scanOrder(models.DB.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id=$1", id))
	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "Order not found"})
		return
	}

	if role != "admin" && order.UserID != userID {
		c.JSON(404, gin.H{"success": false, "message": "Order not found"})
		return
	}

	order.Items, err = loadOrderItems(ctx, order.ID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to read order items"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Order retrieved successfully", "data": order})
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Status is required"})
		return
	}

	if !models.ValidOrderStatus(req.Status) {
		c.JSON(400, gin.H{"success": false, "message": "Invalid status"})
		return
	}

	tag, err := models.DB.Exec(context.Background(),
		"UPDATE orders SET status=$1, updated_at=now() WHERE id=$2", req.Status, id)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to update order status"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(404, gin.H{"success": false, "message": "Order not found"})
		return
	}

	c.JSON(200, gin.H{
		"success": true, "message": "Order status updated successfully",
		"data": gin.H{"id": id, "status": req.Status},
	})
}
