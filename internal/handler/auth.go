package handler

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"GoGallery/internal/dto"
	"GoGallery/internal/service"
	"GoGallery/utils"
)

// Register creates a user account.
func Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Validation failed"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Name must be between 2 and 50 characters"})
		return
	}
	email, ok := normalizeEmail(req.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Please provide a valid email"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Password must be at least 6 characters long"})
		return
	}

	if err := service.RegisterUser(name, email, req.Password); err != nil {
		if err == service.ErrEmailExists {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "User already exists"})
			return
		}
		utils.FailStatus(c, http.StatusInternalServerError, "Server error", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "User registered successfully!"})
}

// Login authenticates a user and returns a signed token.
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Validation failed"})
		return
	}
	email, ok := normalizeEmail(req.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Please provide a valid email"})
		return
	}

	user, err := service.AuthenticateUser(email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			// Same body for unknown email and wrong password.
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
			return
		}
		utils.FailStatus(c, http.StatusInternalServerError, "Server error", err)
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func normalizeEmail(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}
