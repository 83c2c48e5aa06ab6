package controllers

import (
	"context"
	"time"

	"storefront/models"
	"storefront/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct{}

// Register godoc
// @Summary Register new user
// @Description Register a new customer account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	var exists int
	models.DB.QueryRow(context.Background(), "SELECT COUNT(*) FROM users WHERE email=$1", req.Email).Scan(&exists)
	if exists > 0 {
		c.JSON(400, gin.H{"success": false, "message": "Email already exists"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	now := time.Now()
	var userID int
	err = models.DB.QueryRow(context.Background(),
		"INSERT INTO users (email, password_hash, full_name, phone, role, is_active, created_at, updated_at) VALUES ($1,$2,$3,$4,'customer',true,$5,$6) RETURNING id",
		req.Email, hash, req.FullName, req.Phone, now, now).Scan(&userID)

	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to register user"})
		return
	}

	c.JSON(201, gin.H{
		"success": true, "message": "User registered successfully",
		"data": gin.H{"id": userID, "email": req.Email, "full_name": req.FullName, "role": "customer"},
	})
}

// Login godoc
// @Summary Login
// @Description Authenticate and receive a JWT
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	var user models.User
	err := models.DB.QueryRow(context.Background(),
		"SELECT id, email, password_hash, full_name, COALESCE(phone,''), role, is_active FROM users WHERE email=$1",
		req.Email).Scan(&user.ID, &user.Email, &user.Password, &user.FullName, &user.Phone, &user.Role, &user.IsActive)

	if err != nil {
		c.JSON(401, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	if !user.IsActive {
		c.JSON(403, gin.H{"success": false, "message": "Account is disabled"})
		return
	}

	if !utils.VerifyPassword(user.Password, req.Password) {
		c.JSON(401, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(200, gin.H{
		"success": true, "message": "Login successful",
		"data": models.LoginResponse{Token: token, User: user},
	})
}

// GetProfile godoc
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/profile [get]
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var user models.User
	err := models.DB.QueryRow(context.Background(),
		"SELECT id, email, full_name, COALESCE(phone,''), role, is_active, created_at, updated_at FROM users WHERE id=$1",
		userID).Scan(&user.ID, &user.Email, &user.FullName, &user.Phone, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		c.JSON(404, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Profile retrieved", "data": user})
}
