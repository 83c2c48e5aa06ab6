package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storefront/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductController struct{}

func getProductCacheKey(page, size int) string {
	return fmt.Sprintf("products_page_p%d_s%d", page, size)
}

func invalidateProductCache() {
	if models.RedisClient == nil {
		return
	}
	ctx := context.Background()
	iter := models.RedisClient.Scan(ctx, 0, "products_page_*", 0).Iterator()
	for iter.Next(ctx) {
		models.RedisClient.Del(ctx, iter.Val())
	}
}

func scanProduct(row interface{ Scan(dest ...any) error }) (models.Product, error) {
	var p models.Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Price, err = decimal.NewFromString(price)
	return p, err
}

const productColumns = "id, name, description, price::text, stock, COALESCE(image_url, ''), is_active, created_at, updated_at"

// GetAllProducts godoc
// @Summary List products
// @Description Get one page of active products, newest first
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Items per page" default(10)
// @Success 200 {object} models.Response
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	cacheKey := getProductCacheKey(page, size)
	ctx := context.Background()

	if models.RedisClient != nil {
		cached, err := models.RedisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			c.Data(200, "application/json", []byte(cached))
			return
		}
	}

	offset := (page - 1) * size

	var total int
	models.DB.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE is_active=true").Scan(&total)

	rows, err := models.DB.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_active=true ORDER BY id DESC LIMIT $1 OFFSET $2",
		size, offset)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to retrieve products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			c.JSON(500, gin.H{"success": false, "message": "Failed to read products"})
			return
		}
		products = append(products, p)
	}

	response := gin.H{
		"success": true, "message": "Products retrieved",
		"data": models.PageResponse{
			Content:       products,
			Page:          page,
			Size:          size,
			TotalElements: total,
			TotalPages:    int(math.Ceil(float64(total) / float64(size))),
		},
	}

	if models.RedisClient != nil {
		jsonData, _ := json.Marshal(response)
		models.RedisClient.Set(ctx, cacheKey, string(jsonData), 5*time.Minute)
	}

	c.JSON(200, response)
}

// GetProductByID godoc
// @Summary Get product by ID
// @Description Get product details
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	p, err := scanProduct(models.DB.QueryRow(context.Background(),
		"SELECT "+productColumns+" FROM products WHERE id=$1", id))
	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "Product not found"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Product retrieved", "data": p})
}

func saveProductImage(c *gin.Context) (string, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", true
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	if !allowedExts[ext] {
		c.JSON(400, gin.H{"success": false, "message": "Invalid file type. Only jpg, jpeg, png, gif, webp allowed"})
		return "", false
	}

	if file.Size > 5*1024*1024 {
		c.JSON(400, gin.H{"success": false, "message": "File size too large. Maximum 5MB"})
		return "", false
	}

	uploadDir := "./uploads/products"
	os.MkdirAll(uploadDir, os.ModePerm)

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	savePath := filepath.Join(uploadDir, filename)

	if err := c.SaveUploadedFile(file, savePath); err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to save image: " + err.Error()})
		return "", false
	}
	return "/uploads/products/" + filename, true
}

// CreateProduct godoc
// @Summary Create product
// @Description Create new product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Product name"
// @Param description formData string false "Product description"
// @Param price formData number true "Product price"
// @Param stock formData int false "Product stock"
// @Param image formData file false "Product image"
// @Success 201 {object} models.Response
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	priceStr := c.PostForm("price")
	stockStr := c.PostForm("stock")

	if name == "" || priceStr == "" {
		c.JSON(400, gin.H{"success": false, "message": "Name and price are required"})
		return
	}

	if len(name) < 3 {
		c.JSON(400, gin.H{"success": false, "message": "Product name must be at least 3 characters"})
		return
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil || price.IsNegative() {
		c.JSON(400, gin.H{"success": false, "message": "Invalid price"})
		return
	}

	stock := 0
	if stockStr != "" {
		stock, err = strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			c.JSON(400, gin.H{"success": false, "message": "Invalid stock"})
			return
		}
	}

	imageURL, ok := saveProductImage(c)
	if !ok {
		return
	}

	now := time.Now()
	var id int
	err = models.DB.QueryRow(context.Background(),
		"INSERT INTO products (name, description, price, stock, image_url, is_active, created_at, updated_at) VALUES ($1,$2,$3::numeric,$4,$5,true,$6,$7) RETURNING id",
		name, description, price.String(), stock, imageURL, now, now).Scan(&id)

	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to create product: " + err.Error()})
		return
	}

	invalidateProductCache()

	c.JSON(201, gin.H{
		"success": true, "message": "Product created successfully",
		"data": gin.H{
			"id": id, "name": name, "description": description,
			"price": price, "stock": stock, "image_url": imageURL, "is_active": true,
		},
	})
}

// UpdateProduct godoc
// @Summary Update product
// @Description Update product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Product ID"
// @Param name formData string false "Product name"
// @Param description formData string false "Product description"
// @Param price formData number false "Product price"
// @Param stock formData int false "Product stock"
// @Param image formData file false "Product image"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	existing, err := scanProduct(models.DB.QueryRow(context.Background(),
		"SELECT "+productColumns+" FROM products WHERE id=$1", id))
	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "Product not found"})
		return
	}

	name := strings.TrimSpace(c.DefaultPostForm("name", existing.Name))
	description := strings.TrimSpace(c.DefaultPostForm("description", existing.Description))
	price, err := decimal.NewFromString(c.DefaultPostForm("price", existing.Price.String()))
	if err != nil || price.IsNegative() {
		c.JSON(400, gin.H{"success": false, "message": "Invalid price"})
		return
	}
	stock, err := strconv.Atoi(c.DefaultPostForm("stock", strconv.Itoa(existing.Stock)))
	if err != nil || stock < 0 {
		c.JSON(400, gin.H{"success": false, "message": "Invalid stock"})
		return
	}

	if len(name) < 3 {
		c.JSON(400, gin.H{"success": false, "message": "Product name must be at least 3 characters"})
		return
	}

	imageURL := existing.ImageURL
	if newURL, ok := saveProductImage(c); !ok {
		return
	} else if newURL != "" {
		if existing.ImageURL != "" {
			os.Remove("." + existing.ImageURL)
		}
		imageURL = newURL
	}

	_, err = models.DB.Exec(context.Background(),
		"UPDATE products SET name=$1, description=$2, price=$3::numeric, stock=$4, image_url=$5, updated_at=$6 WHERE id=$7",
		name, description, price.String(), stock, imageURL, time.Now(), id)

	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to update product"})
		return
	}

	invalidateProductCache()

	c.JSON(200, gin.H{"success": true, "message": "Product updated successfully"})
}

// ToggleProductStatus godoc
// @Summary Toggle product status
// @Description Flip a product between active and inactive (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/status [patch]
func (ctrl *ProductController) ToggleProductStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if id <= 0 {
		c.JSON(400, gin.H{"success": false, "message": "Invalid product ID"})
		return
	}

	var isActive bool
	err := models.DB.QueryRow(context.Background(),
		"UPDATE products SET is_active = NOT is_active, updated_at=$1 WHERE id=$2 RETURNING is_active",
		time.Now(), id).Scan(&isActive)

	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "Product not found"})
		return
	}

	invalidateProductCache()

	c.JSON(200, gin.H{
		"success": true, "message": "Product status updated",
		"data": gin.H{"id": id, "is_active": isActive},
	})
}
