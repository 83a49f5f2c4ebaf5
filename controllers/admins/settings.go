package admins

import (
	"net/http"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/middleware"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
)

func GetSettings(w http.ResponseWriter, r *http.Request) {
	var setting models.Setting
	if err := database.DB.Take(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: setting})
}

type SettingsRequest struct {
	Name           string `json:"name" validate:"required"`
	Company        string `json:"company"`
	Logo           string `json:"logo"`
	Maintenance    *bool  `json:"maintenance"`
	ClosedRegister *bool  `json:"closed_register"`
	AutoClaim      *bool  `json:"auto_claim"`
	SupportEmail   string `json:"support_email"`
	LinkApp        string `json:"link_app"`
}

// UpdateSettings saves the single global settings row. The auto_claim switch
// takes effect on the next timer poll of every session.
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var setting models.Setting
	if err := database.DB.Take(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	setting.Name = req.Name
	setting.Company = req.Company
	setting.Logo = req.Logo
	setting.SupportEmail = req.SupportEmail
	setting.LinkApp = req.LinkApp
	if req.Maintenance != nil {
		setting.Maintenance = *req.Maintenance
	}
	if req.ClosedRegister != nil {
		setting.ClosedRegister = *req.ClosedRegister
	}
	if req.AutoClaim != nil {
		setting.AutoClaim = *req.AutoClaim
	}

	if err := database.DB.Save(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Settings updated", Data: setting})
}
