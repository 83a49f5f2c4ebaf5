package auth

import (
	"errors"
	"log"
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

type RegisterRequest struct {
	DisplayName          string `json:"display_name" validate:"required,nameok"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	IsApp                *bool  `json:"is_app,omitempty"` // Optional: if true, token expires in 30 days
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check if registration is closed
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("closed_register, name").Take(&appSetting).Error; err == nil && appSetting.ClosedRegister {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Registration is currently closed. Please try again later.",
			Data:    map[string]interface{}{"closed_register": true, "application": appSetting.Name},
		})
		return
	}

	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "The application is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	db := database.DB

	// Ensure unique email
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[register] DB error checking email: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	newUser := models.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    string(hashed),
		Wallet:      0,
		VIPLevel:    1,
		IsAdmin:     utils.IsAdminEmail(req.Email),
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("[register] DB Create user error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed, please try again"})
		return
	}

	role := "user"
	if newUser.IsAdmin {
		role = "admin"
	}

	tokenExpiry, exp := tokenLifetime(req.IsApp)
	accessToken, err := utils.GenerateAccessTokenWithExpiry(newUser.ID, role, tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create token"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful, welcome!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user":          userPayload(&newUser),
		},
	})
}

// tokenLifetime maps the optional is_app flag to the access token lifetime.
func tokenLifetime(isApp *bool) (time.Duration, time.Time) {
	var tokenExpiry time.Duration
	if isApp != nil && *isApp {
		tokenExpiry = 30 * 24 * time.Hour // 30 days
	} else {
		tokenExpiry = 15 * time.Minute // Default 15 minutes
	}
	return tokenExpiry, time.Now().Add(tokenExpiry)
}

func userPayload(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":                    u.ID,
		"email":                 u.Email,
		"display_name":          u.DisplayName,
		"wallet":                u.Wallet,
		"vip_level":             u.VIPLevel,
		"tasks_today":           u.TasksOn(time.Now().Format(time.DateOnly)),
		"total_tasks_completed": u.TotalTasksCompleted,
		"total_credits_earned":  u.TotalCreditsEarned,
		"is_admin":              u.IsAdmin,
	}
}
