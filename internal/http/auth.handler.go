package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/utils"
)

func Signup(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type signupRequest struct {
			Email    string `json:"email" binding:"required,email"`
			Name     string `json:"name"`
			Password string `json:"password" binding:"required,min=8"`
		}

		var request signupRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var existing entity.User
		if err := ctx.DB.Where("email = ?", request.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			ctx.Logger.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		user := entity.User{
			Email:        request.Email,
			Name:         request.Name,
			PasswordHash: string(hash),
			VerifyToken:  randomToken(),
		}
		if err := ctx.DB.Create(&user).Error; err != nil {
			ctx.Logger.Error("Failed to create user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		if err := ctx.Mailer.SendVerificationEmail(user.Email, user.VerifyToken); err != nil {
			ctx.Logger.Warn("Failed to send verification email", zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Account created, check your email to verify"})
	}
}

func Login(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type loginRequest struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		var request loginRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var user entity.User
		if err := ctx.DB.Where("email = ?", request.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		if !user.Verified {
			c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
			return
		}

		tokenString, err := utils.GenerateJWT(user.ID.String())
		if err != nil {
			ctx.Logger.Error("Failed to generate JWT token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate JWT token"})
			return
		}

		c.SetCookie("token", tokenString, int((24 * time.Hour).Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"token": tokenString, "user": user})
	}
}

func Logout(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
	}
}

func VerifyEmail(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type verifyRequest struct {
			Token string `json:"token" binding:"required"`
		}

		var request verifyRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var user entity.User
		if err := ctx.DB.Where("verify_token = ?", request.Token).First(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification token"})
			return
		}

		updates := map[string]interface{}{"verified": true, "verify_token": ""}
		if err := ctx.DB.Model(&user).Updates(updates).Error; err != nil {
			ctx.Logger.Error("Failed to verify user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
	}
}

func ForgotPassword(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type forgotRequest struct {
			Email string `json:"email" binding:"required"`
		}

		var request forgotRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var user entity.User
		if err := ctx.DB.Where("email = ?", request.Email).First(&user).Error; err != nil {
			// Do not reveal whether the address exists.
			c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent"})
			return
		}

		expiry := time.Now().Add(time.Hour)
		token := randomToken()
		updates := map[string]interface{}{"reset_token": token, "reset_token_expiry": expiry}
		if err := ctx.DB.Model(&user).Updates(updates).Error; err != nil {
			ctx.Logger.Error("Failed to store reset token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
			return
		}

		if err := ctx.Mailer.SendResetPasswordEmail(user.Email, token); err != nil {
			ctx.Logger.Warn("Failed to send reset email", zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent"})
	}
}

func ResetPassword(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type resetRequest struct {
			Token    string `json:"token" binding:"required"`
			Password string `json:"password" binding:"required,min=8"`
		}

		var request resetRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var user entity.User
		if err := ctx.DB.Where("reset_token = ?", request.Token).First(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reset token"})
			return
		}
		if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reset token expired"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			ctx.Logger.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
			return
		}

		updates := map[string]interface{}{
			"password_hash":      string(hash),
			"reset_token":        "",
			"reset_token_expiry": nil,
		}
		if err := ctx.DB.Model(&user).Updates(updates).Error; err != nil {
			ctx.Logger.Error("Failed to reset password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

func GetUserInfo(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.GetUserIDFromClaims(c)
		if err != nil {
			ctx.Logger.Error("Failed to get user ID from claims", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var user entity.User
		if err := ctx.DB.First(&user, "id = ?", userID).Error; err != nil {
			ctx.Logger.Error("Failed to find user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
