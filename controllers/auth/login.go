package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/middleware"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdmin"`
	IsApp    *bool  `json:"is_app,omitempty"` // Optional: if true, token expires in 30 days
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check maintenance mode
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "The application is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	db := database.DB
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// check account lockout
	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many login attempts. Please try again later.", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		// record failed login attempt for lockout tracking
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	// on successful login reset failed login counter
	middleware.ResetFailedLogin(user.ID)

	// Admin membership comes from the allow-list and is re-stamped every login
	// so list edits take effect without touching the database by hand.
	isAdmin := utils.IsAdminEmail(user.Email)
	updates := map[string]interface{}{"last_login_at": time.Now()}
	if user.IsAdmin != isAdmin {
		updates["is_admin"] = isAdmin
		user.IsAdmin = isAdmin
	}
	_ = db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}

	tokenExpiry, exp := tokenLifetime(req.IsApp)
	accessToken, err := utils.GenerateAccessTokenWithExpiry(user.ID, role, tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Login failed"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	var setting models.Setting
	err = db.Model(&models.Setting{}).
		Select("name, company, logo, support_email, link_app, auto_claim").
		Take(&setting).Error
	healthy := err == nil

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful! Redirecting to dashboard...",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user":          userPayload(&user),
			"application": map[string]interface{}{
				"name":          setting.Name,
				"company":       setting.Company,
				"logo":          setting.Logo,
				"support_email": setting.SupportEmail,
				"link_app":      setting.LinkApp,
				"auto_claim":    setting.AutoClaim,
				"healthy":       healthy,
			},
		},
	})
}
