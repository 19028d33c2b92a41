package handlers

import (
	"net/http"

	"shop-realtime-api/internal/auth"
	"shop-realtime-api/internal/database"
	"shop-realtime-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=3"`
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=3"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// UserData is the safe subset of a user returned to clients
type UserData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Login handles the login endpoint. The issued token is stored on the user
// row as the current token; the websocket handshake only accepts a credential
// that is still current, so logging in again revokes older tokens.
// POST /api/user/login
func Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found!"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password. please check again!"})
		return
	}

	// Generate JWT token
	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	if err := database.GetDB().Model(&user).Update("current_token", token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"accessToken": token,
		"user":        UserData{ID: user.ID, Username: user.Username},
	})
}

// Signup handles account creation.
// POST /api/user/signup
func Signup(c *gin.Context) {
	var req SignupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	var existing models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exist!"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Password: string(hashed),
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"user":   UserData{ID: user.ID, Username: user.Username},
	})
}
